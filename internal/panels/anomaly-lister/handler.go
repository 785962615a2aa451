// internal/panels/anomaly-lister/handler.go
package anomalylister

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"billing-intelligence/internal/common/database"
	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/logger"
	"billing-intelligence/internal/models"
	"billing-intelligence/internal/panels/queries"
)

const (
	PanelName    = "anomaly-lister"
	Title        = "Top anomaly drivers"
	EmptyMessage = "No anomalies detected in the current window."
)

var (
	ErrQueryExecutionFailed = apperrors.NewSentinel(apperrors.ErrCodeQueryExecutionFailed)
	ErrQueryTimeout         = apperrors.NewSentinel(apperrors.ErrCodeQueryTimeout)
)

// Handler lists the highest scoring anomalies across every segment. The
// table is intentionally not filtered by the selected segment.
type Handler struct {
	config    *Config
	warehouse *database.WarehouseClient
	logger    logger.Logger
}

func NewHandler(config *Config, wh *database.WarehouseClient, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		warehouse: wh,
		logger:    log.WithFields(map[string]interface{}{"panel": PanelName}),
	}
}

func (h *Handler) execute(ctx context.Context, _ *Input) (*Output, error) {
	limit := h.config.Limit
	if limit <= 0 || limit > models.MaxAnomalies {
		limit = models.MaxAnomalies
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	data, rowCount, execTime, err := queries.Execute(ctx, h.warehouse, models.QueryTypeTopAnomalies,
		map[string]interface{}{"limit": limit})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: top anomalies", ErrQueryTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	h.logger.Debug("anomalies loaded", map[string]interface{}{
		"rowCount": rowCount,
		"execMs":   execTime,
	})

	records := data.([]models.AnomalyRecord)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AvgAnomalyScore > records[j].AvgAnomalyScore
	})
	if len(records) > limit {
		records = records[:limit]
	}

	out := &Output{Title: Title, Records: records, Expanded: true}
	if len(records) == 0 {
		out.Message = EmptyMessage
	}
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
