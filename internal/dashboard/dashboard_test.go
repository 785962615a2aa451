package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-intelligence/internal/common/config"
	"billing-intelligence/internal/common/database"
	"billing-intelligence/internal/common/logger"
	anomalylister "billing-intelligence/internal/panels/anomaly-lister"
	billingseries "billing-intelligence/internal/panels/billing-series"
	copilotbridge "billing-intelligence/internal/panels/copilot-bridge"
	segmentselector "billing-intelligence/internal/panels/segment-selector"
)

const view = "ANALYTICS.DT_ACCOUNT_BILLING"

var anomalyColumns = []string{"customer_name", "billing_month", "total_cost", "avg_anomaly_score", "latest_alert"}

func createTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wh := database.NewWarehouseFromDB(db, config.DriverSnowflake, view)
	log := logger.NewTestLogger(t)

	copilot := copilotbridge.NewHandler(
		&copilotbridge.Config{Model: "snowflake-arctic", Timeout: time.Second},
		copilotbridge.NewWarehouseCompleter(wh), log,
	).WithClock(func() time.Time { return time.Date(2024, 11, 2, 12, 0, 0, 0, time.Local) })

	return NewService(
		segmentselector.NewHandler(&segmentselector.Config{Timeout: time.Second}, wh, nil, log),
		billingseries.NewHandler(&billingseries.Config{Timeout: time.Second}, wh, log),
		anomalylister.NewHandler(&anomalylister.Config{Timeout: time.Second, Limit: 10}, wh, log),
		copilot,
		log,
	), mock
}

func expectSegments(mock sqlmock.Sqlmock, names ...string) {
	rows := sqlmock.NewRows([]string{"SEGMENT_NAME"})
	for _, n := range names {
		rows.AddRow(n)
	}
	mock.ExpectQuery(`SELECT DISTINCT segment_name`).WillReturnRows(rows)
}

func TestService_Render_SelectedSegment(t *testing.T) {
	svc, mock := createTestService(t)

	expectSegments(mock, "Enterprise", "SMB")
	mock.ExpectQuery(`SELECT billing_month, SUM\(total_cost\)`).
		WithArgs("SMB").
		WillReturnRows(sqlmock.NewRows([]string{"billing_month", "total_cost"}).
			AddRow("2024-01", "100").
			AddRow("2024-02", "150"))
	mock.ExpectQuery(`WHERE latest_alert = \?`).
		WithArgs("ANOMALY").
		WillReturnRows(sqlmock.NewRows(anomalyColumns))

	page, err := svc.Render(context.Background(), Selection{Segment: "SMB"})
	require.NoError(t, err)

	assert.Equal(t, Title, page.Title)
	assert.Equal(t, Caption, page.Caption)
	assert.Equal(t, "SMB", page.Segments.Selected)
	require.NotNil(t, page.Billing.Headline)
	assert.Equal(t, "$150", page.Billing.Headline.Value)
	assert.Len(t, page.Billing.Records, 2)
	assert.Equal(t, anomalylister.EmptyMessage, page.Anomalies.Message)
	assert.Equal(t, copilotbridge.StateIdle, page.Copilot.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Render_NoSegments(t *testing.T) {
	svc, mock := createTestService(t)

	expectSegments(mock)
	mock.ExpectQuery(`WHERE latest_alert = \?`).
		WithArgs("ANOMALY").
		WillReturnRows(sqlmock.NewRows(anomalyColumns).AddRow("Acme", "2024-01", "10", 0.9, "ANOMALY"))

	page, err := svc.Render(context.Background(), Selection{Segment: "SMB"})
	require.NoError(t, err)
	assert.False(t, page.Segments.HasSelection())
	assert.True(t, page.Billing.Skipped)
	assert.Equal(t, billingseries.EmptyMessage, page.Billing.Message)
	assert.Len(t, page.Anomalies.Records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Render_BlankQuestion(t *testing.T) {
	svc, mock := createTestService(t)

	expectSegments(mock, "Enterprise")
	mock.ExpectQuery(`SELECT billing_month`).WithArgs("Enterprise").
		WillReturnRows(sqlmock.NewRows([]string{"billing_month", "total_cost"}))
	mock.ExpectQuery(`WHERE latest_alert = \?`).WithArgs("ANOMALY").
		WillReturnRows(sqlmock.NewRows(anomalyColumns))

	page, err := svc.Render(context.Background(), Selection{Question: "  ", Submitted: true})
	require.NoError(t, err)
	assert.Equal(t, copilotbridge.StateValidating, page.Copilot.State)
	assert.Equal(t, copilotbridge.EmptyWarning, page.Copilot.Warning)
	assert.Nil(t, page.Copilot.Payload)
	// no completion statement was issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Render_CopilotAnswer(t *testing.T) {
	svc, mock := createTestService(t)

	expectSegments(mock, "Enterprise", "SMB")
	mock.ExpectQuery(`SELECT billing_month`).WithArgs("Enterprise").
		WillReturnRows(sqlmock.NewRows([]string{"billing_month", "total_cost"}).AddRow("2024-10", "5000"))
	mock.ExpectQuery(`WHERE latest_alert = \?`).WithArgs("ANOMALY").
		WillReturnRows(sqlmock.NewRows(anomalyColumns))
	mock.ExpectQuery(`SNOWFLAKE\.CORTEX\.COMPLETE`).
		WithArgs("snowflake-arctic", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"ANSWER"}).AddRow("Two accounts exceeded budget."))

	page, err := svc.Render(context.Background(), Selection{
		Question:  "Which accounts exceeded budget?",
		Submitted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, copilotbridge.StateDisplaying, page.Copilot.State)
	assert.Equal(t, "Two accounts exceeded budget.", page.Copilot.Answer)
	assert.Equal(t, "2024-11-02", page.Copilot.Payload.AsOf)
	require.NotNil(t, page.Copilot.Payload.Segment)
	assert.Equal(t, "Enterprise", *page.Copilot.Payload.Segment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Render_PanelFailureAborts(t *testing.T) {
	svc, mock := createTestService(t)

	expectSegments(mock, "Enterprise")
	mock.ExpectQuery(`SELECT billing_month`).WithArgs("Enterprise").
		WillReturnError(errors.New("warehouse suspended"))

	page, err := svc.Render(context.Background(), Selection{})
	assert.Nil(t, page)
	assert.ErrorIs(t, err, billingseries.ErrQueryExecutionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
