// internal/store/ledger_test.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroscore/internal/common/logger"
	"agroscore/internal/models"
)

func testPayload() *models.DecisionPayload {
	return &models.DecisionPayload{
		RequestID: "req-001",
		Sustainability: models.SustainabilityScore{
			Overall: 72,
			Grade:   models.GradeB,
		},
		LoanRisk: models.LoanRiskAssessment{
			RiskScore:          28,
			ApprovalLikelihood: models.ApprovalHigh,
		},
		Decision: models.Decision{
			Label:      models.DecisionApproved,
			Confidence: 0.82,
		},
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testRequest() *models.AssessmentRequest {
	return &models.AssessmentRequest{
		RequestID:  "req-001",
		Latitude:   -1.29,
		Longitude:  36.82,
		LoanAmount: 1500,
		Purpose:    "drip irrigation upgrade",
	}
}

func newLedgerFixture(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLedger(db, logger.NewTestLogger(t)), mock
}

func TestNewDecisionRecord(t *testing.T) {
	rec, err := NewDecisionRecord(testRequest(), testPayload())
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "req-001", rec.RequestID)
	assert.Equal(t, "APPROVED", rec.Decision)
	assert.Equal(t, 28, rec.RiskScore)
	assert.Equal(t, 72, rec.SustainabilityScore)
	assert.Equal(t, "B", rec.Grade)

	var roundTripped models.DecisionPayload
	require.NoError(t, json.Unmarshal(rec.Payload, &roundTripped))
	assert.Equal(t, "req-001", roundTripped.RequestID)

	other, err := NewDecisionRecord(testRequest(), testPayload())
	require.NoError(t, err)
	assert.NotEqual(t, rec.ID, other.ID, "every record gets a fresh id")
}

func TestLedgerRecord(t *testing.T) {
	ledger, mock := newLedgerFixture(t)
	rec, err := NewDecisionRecord(testRequest(), testPayload())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id FROM loan_decisions").
		WithArgs("req-001").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO loan_decisions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, ledger.Record(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRecordDuplicate(t *testing.T) {
	ledger, mock := newLedgerFixture(t)
	rec, err := NewDecisionRecord(testRequest(), testPayload())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id FROM loan_decisions").
		WithArgs("req-001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	err = ledger.Record(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DUPLICATE_DECISION")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRecordInsertFailure(t *testing.T) {
	ledger, mock := newLedgerFixture(t)
	rec, err := NewDecisionRecord(testRequest(), testPayload())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id FROM loan_decisions").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO loan_decisions").
		WillReturnError(sql.ErrConnDone)

	err = ledger.Record(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEDGER_WRITE_FAILED")
}

func TestLedgerExists(t *testing.T) {
	ledger, mock := newLedgerFixture(t)

	mock.ExpectQuery("SELECT id FROM loan_decisions").
		WithArgs("req-001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("some-id"))

	exists, err := ledger.Exists(context.Background(), "req-001")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT id FROM loan_decisions").
		WithArgs("req-404").
		WillReturnError(sql.ErrNoRows)

	exists, err = ledger.Exists(context.Background(), "req-404")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLedgerGetByRequestID(t *testing.T) {
	ledger, mock := newLedgerFixture(t)

	raw, err := json.Marshal(testPayload())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM loan_decisions").
		WithArgs("req-001").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(raw))

	payload, err := ledger.GetByRequestID(context.Background(), "req-001")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, payload.Decision.Label)
	assert.Equal(t, 72, payload.Sustainability.Overall)

	mock.ExpectQuery("SELECT payload FROM loan_decisions").
		WithArgs("req-404").
		WillReturnError(sql.ErrNoRows)

	_, err = ledger.GetByRequestID(context.Background(), "req-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESOURCE_NOT_FOUND")
}
