// internal/workers/scoring/record-decision/handler.go
package recorddecision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	agroerrors "agroscore/internal/common/errors"
	"agroscore/internal/common/logger"
	"agroscore/internal/common/metrics"
	"agroscore/internal/models"
	"agroscore/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-decision"
)

var (
	ErrMissingAssessment = errors.New("MISSING_ASSESSMENT")
)

// DecisionLedger records decisions; satisfied by store.Ledger.
type DecisionLedger interface {
	Record(ctx context.Context, rec *store.DecisionRecord) error
}

// DecisionIndexer pushes decisions to search; satisfied by store.Indexer.
type DecisionIndexer interface {
	IndexDecision(ctx context.Context, decisionID string, payload *models.DecisionPayload) error
}

// Interfaces for mocking the AWS clients
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	ledger    DecisionLedger
	indexer   DecisionIndexer
	logger    logger.Logger
	errs      *agroerrors.ErrorHandler
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, ledger DecisionLedger, indexer DecisionIndexer, log logger.Logger) (*Handler, error) {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:  config,
		ledger:  ledger,
		indexer: indexer,
		logger:  workerLog,
		errs:    agroerrors.NewErrorHandler(workerLog),
	}

	if config.EmailEnabled || config.SMSEnabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(config.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		h.sesClient = ses.NewFromConfig(awsCfg)
		h.snsClient = sns.NewFromConfig(awsCfg)
	}

	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// Standard errors carry their own retry policy: a transient ledger
		// write failure gets retried, a duplicate decision raises a BPMN
		// error for the process to route.
		var stdErr *agroerrors.StandardError
		if errors.As(err, &stdErr) {
			metrics.WorkerJobsFailed.WithLabelValues(TaskType).Inc()
			h.errs.HandleJobError(context.Background(), client, job, stdErr)
			return
		}
		errorCode := "LEDGER_WRITE_FAILED"
		if errors.Is(err, ErrMissingAssessment) {
			errorCode = "MISSING_ASSESSMENT"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Assessment == nil {
		return nil, ErrMissingAssessment
	}

	req := &models.AssessmentRequest{
		RequestID:  input.Assessment.RequestID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		LoanAmount: input.LoanAmount,
		Purpose:    input.Purpose,
	}

	rec, err := store.NewDecisionRecord(req, input.Assessment)
	if err != nil {
		return nil, err
	}

	// The ledger row is the authoritative record; a write failure fails the
	// job. Indexing and notification are best effort.
	if err := h.ledger.Record(ctx, rec); err != nil {
		return nil, err
	}

	output := &Output{DecisionID: rec.ID, Recorded: true}

	if err := h.indexer.IndexDecision(ctx, rec.ID, input.Assessment); err != nil {
		h.logger.Error("decision indexing failed", map[string]interface{}{
			"decisionId": rec.ID,
			"error":      err.Error(),
		})
	} else {
		output.Indexed = true
	}

	output.Notified = h.notify(ctx, input)
	return output, nil
}

// notify sends the decision to the farmer over the configured channels.
// Failures are logged, never fatal: the decision stands either way.
func (h *Handler) notify(ctx context.Context, input *Input) bool {
	notified := false

	if h.config.EmailEnabled && input.FarmerEmail != "" && h.sesClient != nil {
		if err := h.sendEmail(ctx, input); err != nil {
			h.logger.Error("decision email failed", map[string]interface{}{
				"email": input.FarmerEmail,
				"error": err.Error(),
			})
		} else {
			notified = true
		}
	}

	if h.config.SMSEnabled && input.FarmerPhone != "" && h.snsClient != nil {
		if err := h.sendSMS(ctx, input); err != nil {
			h.logger.Error("decision SMS failed", map[string]interface{}{
				"phone": input.FarmerPhone,
				"error": err.Error(),
			})
		} else {
			notified = true
		}
	}

	return notified
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	decision := input.Assessment.Decision
	subject := fmt.Sprintf("Loan application %s: %s", input.Assessment.RequestID, decision.Label)

	body := &strings.Builder{}
	fmt.Fprintf(body, "Decision: %s (confidence %.0f%%)\n\n", decision.Label, decision.Confidence*100)
	fmt.Fprintf(body, "%s\n", decision.Reasoning)
	if len(decision.Recommendations) > 0 {
		fmt.Fprintf(body, "\nRecommendations:\n")
		for _, rec := range decision.Recommendations {
			fmt.Fprintf(body, "- %s\n", rec)
		}
	}

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{input.FarmerEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body.String())},
			},
		},
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	decision := input.Assessment.Decision
	message := fmt.Sprintf("AgroScore loan decision for %s: %s (confidence %.0f%%)",
		input.Assessment.RequestID, decision.Label, decision.Confidence*100)

	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.FarmerPhone),
		Message:     aws.String(message),
	})
	return err
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
