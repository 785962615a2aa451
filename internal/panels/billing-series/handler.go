// internal/panels/billing-series/handler.go
package billingseries

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"billing-intelligence/internal/common/database"
	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/format"
	"billing-intelligence/internal/common/logger"
	"billing-intelligence/internal/models"
	"billing-intelligence/internal/panels/queries"
)

const (
	PanelName     = "billing-series"
	HeadlineLabel = "Latest Month Cost"
	EmptyMessage  = "No billing data found for the selected segment yet."
)

var (
	ErrSegmentNotAllowed    = apperrors.NewSentinel(apperrors.ErrCodeSegmentNotAllowed)
	ErrQueryExecutionFailed = apperrors.NewSentinel(apperrors.ErrCodeQueryExecutionFailed)
	ErrQueryTimeout         = apperrors.NewSentinel(apperrors.ErrCodeQueryTimeout)
)

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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	// No segments at all: nothing to query.
	if input.Segment == "" {
		return &Output{Records: []models.BillingRecord{}, Message: EmptyMessage, Skipped: true}, nil
	}

	if !contains(input.Allowed, input.Segment) {
		return nil, fmt.Errorf("%w: %q", ErrSegmentNotAllowed, input.Segment)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	data, rowCount, execTime, err := queries.Execute(ctx, h.warehouse, models.QueryTypeMonthlyBilling,
		map[string]interface{}{"segment": input.Segment})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: monthly billing", ErrQueryTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	h.logger.Debug("billing series loaded", map[string]interface{}{
		"segment":  input.Segment,
		"rowCount": rowCount,
		"execMs":   execTime,
	})

	records := data.([]models.BillingRecord)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].BillingMonth < records[j].BillingMonth
	})

	out := &Output{Segment: input.Segment, Records: records}
	if len(records) == 0 {
		out.Message = EmptyMessage
		return out, nil
	}

	latest := records[len(records)-1]
	out.Headline = &Headline{
		Label:  HeadlineLabel,
		Month:  latest.BillingMonth,
		Amount: latest.TotalCost,
		Value:  format.Currency(latest.TotalCost),
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
