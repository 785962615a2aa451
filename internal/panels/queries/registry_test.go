package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-intelligence/internal/common/config"
	"billing-intelligence/internal/common/database"
	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/models"
)

const testView = "BILLING.ANALYTICS.DT_ACCOUNT_BILLING"

func newMockWarehouse(t *testing.T, driver string) (*database.WarehouseClient, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewWarehouseFromDB(db, driver, testView), mock
}

func TestSegmentNames(t *testing.T) {
	wh, mock := newMockWarehouse(t, config.DriverSnowflake)

	rows := sqlmock.NewRows([]string{"SEGMENT_NAME"}).
		AddRow("Consumer").
		AddRow(nil).
		AddRow("Enterprise")
	mock.ExpectQuery(`SELECT DISTINCT segment_name FROM BILLING\.ANALYTICS\.DT_ACCOUNT_BILLING ORDER BY segment_name`).
		WillReturnRows(rows)

	data, count, _, err := Execute(context.Background(), wh, models.QueryTypeSegmentNames, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Consumer", "Enterprise"}, data)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentNames_Empty(t *testing.T) {
	wh, mock := newMockWarehouse(t, config.DriverSnowflake)
	mock.ExpectQuery(`SELECT DISTINCT segment_name`).
		WillReturnRows(sqlmock.NewRows([]string{"segment_name"}))

	data, count, _, err := Execute(context.Background(), wh, models.QueryTypeSegmentNames, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, data)
	assert.Equal(t, 0, count)
}

func TestMonthlyBilling(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		pattern string
	}{
		{
			name:    "snowflake binds",
			driver:  config.DriverSnowflake,
			pattern: `SELECT billing_month, SUM\(total_cost\) AS total_cost FROM BILLING\.ANALYTICS\.DT_ACCOUNT_BILLING WHERE segment_name = \? GROUP BY billing_month ORDER BY billing_month`,
		},
		{
			name:    "postgres binds",
			driver:  config.DriverPostgres,
			pattern: `WHERE segment_name = \$1 GROUP BY billing_month`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh, mock := newMockWarehouse(t, tt.driver)

			jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			rows := sqlmock.NewRows([]string{"BILLING_MONTH", "TOTAL_COST"}).
				AddRow(jan, "100.00").
				AddRow("2024-02", "150.50")
			mock.ExpectQuery(tt.pattern).WithArgs("Enterprise").WillReturnRows(rows)

			data, count, _, err := Execute(context.Background(), wh, models.QueryTypeMonthlyBilling,
				map[string]interface{}{"segment": "Enterprise"})
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			records := data.([]models.BillingRecord)
			assert.Equal(t, "2024-01-01", records[0].BillingMonth)
			assert.True(t, decimal.RequireFromString("100").Equal(records[0].TotalCost))
			assert.Equal(t, "2024-02", records[1].BillingMonth)
			assert.True(t, decimal.RequireFromString("150.5").Equal(records[1].TotalCost))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMonthlyBilling_MissingSegment(t *testing.T) {
	wh, _ := newMockWarehouse(t, config.DriverSnowflake)
	_, _, _, err := Execute(context.Background(), wh, models.QueryTypeMonthlyBilling, map[string]interface{}{})
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestMonthlyBilling_MissingColumn(t *testing.T) {
	wh, mock := newMockWarehouse(t, config.DriverSnowflake)
	mock.ExpectQuery(`SELECT billing_month`).
		WithArgs("SMB").
		WillReturnRows(sqlmock.NewRows([]string{"billing_month"}).AddRow("2024-01"))

	_, _, _, err := Execute(context.Background(), wh, models.QueryTypeMonthlyBilling,
		map[string]interface{}{"segment": "SMB"})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestTopAnomalies(t *testing.T) {
	wh, mock := newMockWarehouse(t, config.DriverSnowflake)

	rows := sqlmock.NewRows([]string{"customer_name", "billing_month", "total_cost", "avg_anomaly_score", "latest_alert"}).
		AddRow("Acme", "2024-03", "980.10", 0.97, "ANOMALY").
		AddRow("Globex", "2024-02", "120.00", 0.81, "ANOMALY")
	mock.ExpectQuery(`WHERE latest_alert = \? ORDER BY avg_anomaly_score DESC LIMIT 10`).
		WithArgs(models.AnomalyAlertFlag).
		WillReturnRows(rows)

	data, count, _, err := Execute(context.Background(), wh, models.QueryTypeTopAnomalies, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records := data.([]models.AnomalyRecord)
	assert.Equal(t, "Acme", records[0].CustomerName)
	assert.InDelta(t, 0.97, records[0].AvgAnomalyScore, 1e-9)
	assert.Equal(t, "ANOMALY", records[1].LatestAlert)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCortexComplete(t *testing.T) {
	wh, mock := newMockWarehouse(t, config.DriverSnowflake)
	mock.ExpectQuery(`SELECT SNOWFLAKE\.CORTEX\.COMPLETE\(\?, \?\) AS answer`).
		WithArgs("snowflake-arctic", "prompt text").
		WillReturnRows(sqlmock.NewRows([]string{"ANSWER"}).AddRow("Acme exceeded budget."))

	data, count, _, err := Execute(context.Background(), wh, models.QueryTypeCortexComplete,
		map[string]interface{}{"model": "snowflake-arctic", "prompt": "prompt text"})
	require.NoError(t, err)
	assert.Equal(t, "Acme exceeded budget.", data)
	assert.Equal(t, 1, count)
}

func TestCortexComplete_Errors(t *testing.T) {
	wh, mock := newMockWarehouse(t, config.DriverSnowflake)

	_, _, _, err := Execute(context.Background(), wh, models.QueryTypeCortexComplete,
		map[string]interface{}{"prompt": "p"})
	assert.ErrorIs(t, err, ErrMissingParam)

	mock.ExpectQuery(`CORTEX\.COMPLETE`).WillReturnError(errors.New("model unavailable"))
	_, _, _, err = Execute(context.Background(), wh, models.QueryTypeCortexComplete,
		map[string]interface{}{"model": "m", "prompt": "p"})
	assert.EqualError(t, err, "model unavailable")

	mock.ExpectQuery(`CORTEX\.COMPLETE`).WillReturnRows(sqlmock.NewRows([]string{"answer"}))
	_, _, _, err = Execute(context.Background(), wh, models.QueryTypeCortexComplete,
		map[string]interface{}{"model": "m", "prompt": "p"})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestExecute_UnknownQueryType(t *testing.T) {
	wh, _ := newMockWarehouse(t, config.DriverSnowflake)
	_, _, _, err := Execute(context.Background(), wh, models.QueryType("franchise_details"), nil)
	assert.ErrorIs(t, err, ErrUnknownQueryType)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeInvalidQueryType, stdErr.Code)
	assert.Contains(t, stdErr.Details, "franchise_details")
}
