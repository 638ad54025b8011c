// internal/store/ledger.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agroscore/internal/common/errors"
	"agroscore/internal/common/logger"
	"agroscore/internal/models"
)

// DecisionRecord is one row of the loan_decisions ledger.
type DecisionRecord struct {
	ID                  string
	RequestID           string
	Latitude            float64
	Longitude           float64
	LoanAmount          float64
	Purpose             string
	Decision            string
	Confidence          float64
	RiskScore           int
	SustainabilityScore int
	Grade               string
	Payload             []byte
	CreatedAt           time.Time
}

// NewDecisionRecord flattens an assessment result into a ledger row. The full
// payload is kept as JSON alongside the queryable columns.
func NewDecisionRecord(req *models.AssessmentRequest, payload *models.DecisionPayload) (*DecisionRecord, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode decision payload: %w", err)
	}
	return &DecisionRecord{
		ID:                  uuid.New().String(),
		RequestID:           payload.RequestID,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		LoanAmount:          req.LoanAmount,
		Purpose:             req.Purpose,
		Decision:            string(payload.Decision.Label),
		Confidence:          payload.Decision.Confidence,
		RiskScore:           payload.LoanRisk.RiskScore,
		SustainabilityScore: payload.Sustainability.Overall,
		Grade:               string(payload.Sustainability.Grade),
		Payload:             raw,
		CreatedAt:           payload.GeneratedAt,
	}, nil
}

// Ledger is the append-only Postgres record of issued decisions.
type Ledger struct {
	db  *sql.DB
	log logger.Logger
}

func NewLedger(db *sql.DB, log logger.Logger) *Ledger {
	return &Ledger{db: db, log: log}
}

// Exists reports whether a decision was already recorded for the request.
func (l *Ledger) Exists(ctx context.Context, requestID string) (bool, error) {
	query := `SELECT id FROM loan_decisions WHERE request_id = $1 LIMIT 1`

	var id string
	err := l.db.QueryRowContext(ctx, query, requestID).Scan(&id)
	if goerrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewLedgerWriteFailedError(err)
	}
	return true, nil
}

// Record appends one decision row. Recording the same request twice is a
// DUPLICATE_DECISION error; the ledger never updates in place.
func (l *Ledger) Record(ctx context.Context, rec *DecisionRecord) error {
	exists, err := l.Exists(ctx, rec.RequestID)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewDuplicateDecisionError(rec.RequestID)
	}

	query := `
		INSERT INTO loan_decisions (
			id, request_id, latitude, longitude, loan_amount, purpose,
			decision, confidence, risk_score, sustainability_score, grade,
			payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = l.db.ExecContext(ctx, query,
		rec.ID, rec.RequestID, rec.Latitude, rec.Longitude, rec.LoanAmount, rec.Purpose,
		rec.Decision, rec.Confidence, rec.RiskScore, rec.SustainabilityScore, rec.Grade,
		rec.Payload, rec.CreatedAt,
	)
	if err != nil {
		return errors.NewLedgerWriteFailedError(err)
	}

	l.log.Info("decision recorded", map[string]interface{}{
		"decision_id": rec.ID,
		"request_id":  rec.RequestID,
		"decision":    rec.Decision,
	})
	return nil
}

// GetByRequestID loads a previously recorded decision payload.
func (l *Ledger) GetByRequestID(ctx context.Context, requestID string) (*models.DecisionPayload, error) {
	query := `SELECT payload FROM loan_decisions WHERE request_id = $1 LIMIT 1`

	var raw []byte
	err := l.db.QueryRowContext(ctx, query, requestID).Scan(&raw)
	if goerrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewResourceNotFoundError("ledger", fmt.Sprintf("no decision for request %s", requestID))
	}
	if err != nil {
		return nil, errors.NewLedgerWriteFailedError(err)
	}

	var payload models.DecisionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode decision payload: %w", err)
	}
	return &payload, nil
}
