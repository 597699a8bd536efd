// internal/stages/notify/handler.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

const StageName = "notify"

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute sends the run summary over the enabled channels. Channel failures
// are logged but never fail the run.
func (h *Handler) Execute(ctx context.Context, report *models.RunReport) *Output {
	out := &Output{}
	failed := report.Outcome != "success"

	if h.config.EmailEnabled && h.sesClient != nil && len(h.config.To) > 0 {
		if err := h.sendEmail(ctx, report); err != nil {
			h.logger.Error("run summary email failed", map[string]interface{}{
				"runId": report.RunID,
				"error": err.Error(),
			})
		} else {
			out.EmailSent = true
		}
	}

	if h.config.AlertEnabled && h.snsClient != nil && (failed || !h.config.OnlyOnError) {
		if err := h.publishAlert(ctx, report); err != nil {
			h.logger.Error("run alert publish failed", map[string]interface{}{
				"runId": report.RunID,
				"error": err.Error(),
			})
		} else {
			out.AlertSent = true
		}
	}

	return out
}

func (h *Handler) sendEmail(ctx context.Context, report *models.RunReport) error {
	subject := fmt.Sprintf("Training pipeline run %s: %s", report.RunID, report.Outcome)
	body := h.summary(report)

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: h.config.To,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

func (h *Handler) publishAlert(ctx context.Context, report *models.RunReport) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(fmt.Sprintf("pipeline run %s", report.Outcome)),
		Message:  aws.String(h.summary(report)),
	})
	return err
}

func (h *Handler) summary(report *models.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s finished with outcome %s.\n", report.RunID, report.Outcome)
	fmt.Fprintf(&b, "Ingested records: %d\n", report.IngestedCount)
	if report.Metrics != nil {
		fmt.Fprintf(&b, "Test metrics: accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f\n",
			report.Metrics.Accuracy, report.Metrics.Precision, report.Metrics.Recall, report.Metrics.F1)
	}
	fmt.Fprintf(&b, "Model accepted: %t, pushed: %t\n", report.ModelAccepted, report.ModelPushed)
	if report.FailureMessage != "" {
		fmt.Fprintf(&b, "Failure: %s\n", report.FailureMessage)
	}
	for _, s := range report.Stages {
		fmt.Fprintf(&b, "  %-16s %-8s %dms\n", s.Stage, s.Status, s.DurationMS)
	}
	return b.String()
}
