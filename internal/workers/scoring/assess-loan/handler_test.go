// internal/workers/scoring/assess-loan/handler_test.go
package assessloan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroscore/internal/collect"
	"agroscore/internal/common/logger"
	"agroscore/internal/pipeline"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	orchestrator := pipeline.NewOrchestrator(
		collect.NewSyntheticImagery(42),
		collect.NewSyntheticWeather(42),
		log,
	)
	return NewHandler(LoadConfig(), orchestrator, log, nil)
}

func TestExecute(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RequestID:  "req-001",
		Latitude:   -1.2921,
		Longitude:  36.8219,
		RadiusKm:   2.5,
		LoanAmount: 1500,
		Purpose:    "drip irrigation upgrade",
	})
	require.NoError(t, err)

	require.NotNil(t, output.Assessment)
	assert.Equal(t, "req-001", output.Assessment.RequestID)
	assert.Contains(t, []string{"APPROVED", "CONDITIONAL", "REJECTED"}, output.Decision)
	assert.Equal(t, string(output.Assessment.Decision.Label), output.Decision)
	assert.GreaterOrEqual(t, output.Confidence, 0.6)
	assert.LessOrEqual(t, output.Confidence, 0.95)
	assert.Equal(t, []string{"field_scout", "risk_analyst", "loan_officer"}, output.Assessment.AgentTrace)
}

func TestExecuteGeneratesRequestID(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Latitude:   10.0,
		Longitude:  20.0,
		LoanAmount: 800,
		Purpose:    "seed stock",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, output.Assessment.RequestID)
}

func TestExecuteDeterministicForSameFarm(t *testing.T) {
	handler := newTestHandler(t)
	input := &Input{
		RequestID:  "req-002",
		Latitude:   -1.2921,
		Longitude:  36.8219,
		LoanAmount: 1500,
		Purpose:    "drip irrigation upgrade",
	}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Decision, second.Decision)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Assessment.RiskScores, second.Assessment.RiskScores)
}

func TestExecuteInvalidRequest(t *testing.T) {
	handler := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		Latitude:   200,
		Longitude:  20.0,
		LoanAmount: 800,
		Purpose:    "seed stock",
	})
	require.Error(t, err)
}
