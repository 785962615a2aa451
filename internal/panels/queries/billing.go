// internal/panels/queries/billing.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"billing-intelligence/internal/common/database"
	"billing-intelligence/internal/models"

	"github.com/shopspring/decimal"
)

// SegmentNames lists the distinct segments in the billing view, ascending.
func SegmentNames(ctx context.Context, wh *database.WarehouseClient, _ map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := wh.Query(ctx, fmt.Sprintf(
		`SELECT DISTINCT segment_name FROM %s ORDER BY segment_name`, wh.BillingView))
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	idx, err := columnIndex(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	results := []string{}
	for rows.Next() {
		var name sql.NullString
		if err := scanNamed(rows, idx, map[string]interface{}{"segment_name": &name}); err != nil {
			return nil, 0, 0, err
		}
		if !name.Valid {
			continue
		}
		results = append(results, name.String)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

// MonthlyBilling sums total_cost per billing month for one segment.
func MonthlyBilling(ctx context.Context, wh *database.WarehouseClient, params map[string]interface{}) (interface{}, int, int64, error) {
	segment, ok := params["segment"].(string)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: segment", ErrMissingParam)
	}

	start := time.Now()

	rows, err := wh.Query(ctx, fmt.Sprintf(`
		SELECT billing_month, SUM(total_cost) AS total_cost
		FROM %s
		WHERE segment_name = ?
		GROUP BY billing_month
		ORDER BY billing_month`, wh.BillingView), segment)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	idx, err := columnIndex(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	results := []models.BillingRecord{}
	for rows.Next() {
		var month interface{}
		var cost decimal.NullDecimal
		if err := scanNamed(rows, idx, map[string]interface{}{
			"billing_month": &month,
			"total_cost":    &cost,
		}); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, models.BillingRecord{
			BillingMonth: monthLabel(month),
			TotalCost:    cost.Decimal,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

// TopAnomalies returns the highest scoring flagged rows across all segments.
func TopAnomalies(ctx context.Context, wh *database.WarehouseClient, params map[string]interface{}) (interface{}, int, int64, error) {
	limit := models.MaxAnomalies
	if l, ok := params["limit"].(int); ok && l > 0 {
		limit = l
	}

	start := time.Now()

	rows, err := wh.Query(ctx, fmt.Sprintf(`
		SELECT customer_name, billing_month, total_cost, avg_anomaly_score, latest_alert
		FROM %s
		WHERE latest_alert = ?
		ORDER BY avg_anomaly_score DESC
		LIMIT %d`, wh.BillingView, limit), models.AnomalyAlertFlag)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	idx, err := columnIndex(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	results := []models.AnomalyRecord{}
	for rows.Next() {
		var (
			customer, alert sql.NullString
			month           interface{}
			cost            decimal.NullDecimal
			score           sql.NullFloat64
		)
		if err := scanNamed(rows, idx, map[string]interface{}{
			"customer_name":     &customer,
			"billing_month":     &month,
			"total_cost":        &cost,
			"avg_anomaly_score": &score,
			"latest_alert":      &alert,
		}); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, models.AnomalyRecord{
			CustomerName:    customer.String,
			BillingMonth:    monthLabel(month),
			TotalCost:       cost.Decimal,
			AvgAnomalyScore: score.Float64,
			LatestAlert:     alert.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

// CortexComplete asks the warehouse-hosted model to complete a prompt and
// returns the answer text.
func CortexComplete(ctx context.Context, wh *database.WarehouseClient, params map[string]interface{}) (interface{}, int, int64, error) {
	model, ok := params["model"].(string)
	if !ok || model == "" {
		return nil, 0, 0, fmt.Errorf("%w: model", ErrMissingParam)
	}
	prompt, ok := params["prompt"].(string)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: prompt", ErrMissingParam)
	}

	start := time.Now()

	var answer sql.NullString
	err := wh.QueryRow(ctx, `SELECT SNOWFLAKE.CORTEX.COMPLETE(?, ?) AS answer`, model, prompt).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, ErrNoRows
	}
	if err != nil {
		return nil, 0, 0, err
	}

	return answer.String, 1, time.Since(start).Milliseconds(), nil
}
