// internal/panels/segment-selector/handler.go
package segmentselector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"billing-intelligence/internal/common/database"
	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/logger"
	"billing-intelligence/internal/common/metrics"
	"billing-intelligence/internal/models"
	"billing-intelligence/internal/panels/queries"

	"github.com/redis/go-redis/v9"
)

const (
	PanelName   = "segment-selector"
	Label       = "Segment"
	cachePrefix = "segments:"
)

var (
	ErrQueryExecutionFailed = apperrors.NewSentinel(apperrors.ErrCodeQueryExecutionFailed)
	ErrQueryTimeout         = apperrors.NewSentinel(apperrors.ErrCodeQueryTimeout)
)

type Handler struct {
	config    *Config
	warehouse *database.WarehouseClient
	redis     *redis.Client
	logger    logger.Logger
}

// NewHandler builds the selector. redisClient may be nil, in which case
// every render queries the warehouse.
func NewHandler(config *Config, wh *database.WarehouseClient, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		warehouse: wh,
		redis:     redisClient,
		logger:    log.WithFields(map[string]interface{}{"panel": PanelName}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		input = &Input{}
	}

	options, fromCache := h.cachedOptions(ctx)
	if !fromCache {
		ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()

		data, _, execTime, err := queries.Execute(ctx, h.warehouse, models.QueryTypeSegmentNames, nil)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: segment list", ErrQueryTimeout)
			}
			return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
		}
		options = data.([]string)

		h.logger.Debug("segments loaded", map[string]interface{}{
			"count":  len(options),
			"execMs": execTime,
		})
		h.storeOptions(ctx, options)
	}

	return &Output{
		Label:     Label,
		Options:   options,
		Selected:  h.resolve(options, input.Requested),
		FromCache: fromCache,
	}, nil
}

// resolve keeps a requested segment that is still listed and otherwise
// falls back to the first option.
func (h *Handler) resolve(options []string, requested string) string {
	if len(options) == 0 {
		return ""
	}
	for _, opt := range options {
		if opt == requested {
			return opt
		}
	}
	if requested != "" {
		h.logger.Warn("requested segment not available, using default", map[string]interface{}{
			"requested": requested,
			"default":   options[0],
		})
	}
	return options[0]
}

func (h *Handler) cacheKey() string {
	return cachePrefix + h.warehouse.BillingView
}

func (h *Handler) cachedOptions(ctx context.Context) ([]string, bool) {
	if h.redis == nil {
		return nil, false
	}

	val, err := h.redis.Get(ctx, h.cacheKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.SegmentCacheLookups.WithLabelValues("miss").Inc()
		} else {
			metrics.SegmentCacheLookups.WithLabelValues("error").Inc()
			h.logger.WithError(err).Warn("segment cache read failed", nil)
		}
		return nil, false
	}

	var options []string
	if err := json.Unmarshal([]byte(val), &options); err != nil {
		metrics.SegmentCacheLookups.WithLabelValues("error").Inc()
		h.logger.WithError(err).Warn("discarding malformed segment cache entry", nil)
		return nil, false
	}

	metrics.SegmentCacheLookups.WithLabelValues("hit").Inc()
	return options, true
}

// storeOptions caches non-empty lists only, so a newly loaded view shows up
// without waiting out the TTL.
func (h *Handler) storeOptions(ctx context.Context, options []string) {
	if h.redis == nil || len(options) == 0 || h.config.CacheTTL <= 0 {
		return
	}
	data, _ := json.Marshal(options)
	if err := h.redis.Set(ctx, h.cacheKey(), data, h.config.CacheTTL).Err(); err != nil {
		h.logger.WithError(err).Warn("segment cache write failed", nil)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
