// internal/workers/scoring/assess-loan/handler.go
package assessloan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agroscore/internal/common/logger"
	"agroscore/internal/common/metrics"
	"agroscore/internal/common/observability"
	"agroscore/internal/common/validation"
	"agroscore/internal/models"
	"agroscore/internal/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "assess-farm-loan"
)

type Handler struct {
	config       *Config
	orchestrator *pipeline.Orchestrator
	logger       logger.Logger
	obs          *observability.Observability
}

func NewHandler(config *Config, orchestrator *pipeline.Orchestrator, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config:       config,
		orchestrator: orchestrator,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		obs:          obs,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if err := validation.ValidateAssessmentRequest([]byte(job.Variables)); err != nil {
		h.failJob(client, job, "REQUEST_VALIDATION_FAILED", err.Error())
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "ASSESSMENT_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	req := &models.AssessmentRequest{
		RequestID:      input.RequestID,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		RadiusKm:       input.RadiusKm,
		Polygon:        input.Polygon,
		LookbackMonths: input.LookbackMonths,
		BaselineYears:  input.BaselineYears,
		LoanAmount:     input.LoanAmount,
		Purpose:        input.Purpose,
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	started := time.Now()
	payload, err := h.orchestrator.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	if h.obs != nil {
		h.obs.RecordAssessment(ctx, string(payload.Decision.Label))
		h.obs.RecordAssessmentDuration(ctx, time.Since(started), string(payload.Decision.Label))
	}

	return &Output{
		Assessment:          payload,
		Decision:            string(payload.Decision.Label),
		Confidence:          payload.Decision.Confidence,
		CertificateEligible: payload.Decision.CertificateEligible,
		Degraded:            len(payload.Degraded) > 0,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Execute exposes the core logic for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
