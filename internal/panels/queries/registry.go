// internal/panels/queries/registry.go
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-intelligence/internal/common/database"
	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/metrics"
	"billing-intelligence/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrMissingColumn    = errors.New("missing result column")
	ErrUnknownQueryType = apperrors.NewSentinel(apperrors.ErrCodeInvalidQueryType)
	ErrNoRows           = errors.New("query returned no rows")
)

// QueryFunc returns: data, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, wh *database.WarehouseClient, params map[string]interface{}) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeSegmentNames:   SegmentNames,
	models.QueryTypeMonthlyBilling: MonthlyBilling,
	models.QueryTypeTopAnomalies:   TopAnomalies,
	models.QueryTypeCortexComplete: CortexComplete,
}

// Execute runs a registered query and records its outcome.
func Execute(ctx context.Context, wh *database.WarehouseClient, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}

	start := time.Now()
	data, rowCount, execTime, err := fn(ctx, wh, params)
	metrics.WarehouseQueryDuration.WithLabelValues(string(queryType)).Observe(time.Since(start).Seconds())

	status := metrics.StatusSuccess
	switch {
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		status = metrics.StatusTimeout
	case err != nil:
		status = metrics.StatusError
	}
	metrics.WarehouseQueries.WithLabelValues(string(queryType), status).Inc()

	return data, rowCount, execTime, err
}
