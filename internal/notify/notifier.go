// internal/notify/notifier.go

// Package notify delivers candidate-facing stage change notifications over
// SES email and SNS SMS. Delivery is best-effort: failures are logged and
// never surfaced to the pipeline write path.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	cfg "recruiting-pipeline/internal/common/config"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

// Contact is the candidate contact record resolved for a notification.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// ContactDirectory resolves a seeker ID to their contact details. A missing
// contact is (nil, nil).
type ContactDirectory interface {
	FindContact(ctx context.Context, seekerID string) (*Contact, error)
}

// Notifier sends stage change notifications for the milestones candidates
// care about: reaching the offer stage and the two terminal outcomes.
type Notifier struct {
	email     EmailSender
	sms       SMSPublisher
	directory ContactDirectory
	config    cfg.NotificationConfig
	logger    logger.Logger
}

func New(email EmailSender, sms SMSPublisher, directory ContactDirectory, config cfg.NotificationConfig, log logger.Logger) *Notifier {
	return &Notifier{
		email:     email,
		sms:       sms,
		directory: directory,
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// StageChanged notifies the candidate when their application reaches the
// offer stage or a terminal outcome. Other transitions are silent.
func (n *Notifier) StageChanged(ctx context.Context, app *models.Application, from, to models.Stage) {
	subject, body, ok := stageMessage(to)
	if !ok {
		return
	}

	contact, err := n.directory.FindContact(ctx, app.SeekerID)
	if err != nil {
		n.logger.Error("contact lookup failed", map[string]interface{}{
			"applicationId": app.ID,
			"seekerId":      app.SeekerID,
			"error":         err.Error(),
		})
		return
	}
	if contact == nil {
		n.logger.Warn("no contact on record, skipping notification", map[string]interface{}{
			"applicationId": app.ID,
			"seekerId":      app.SeekerID,
		})
		return
	}

	if n.config.Email.Enabled && contact.Email != "" {
		n.sendEmail(ctx, app, contact, subject, body)
	}
	if n.config.SMS.Enabled && contact.Phone != "" && isTerminalMilestone(to) {
		n.sendSMS(ctx, app, contact, subject)
	}
}

func (n *Notifier) sendEmail(ctx context.Context, app *models.Application, contact *Contact, subject, body string) {
	greeting := "Hello"
	if contact.Name != "" {
		greeting = "Hello " + contact.Name
	}

	input := &ses.SendEmailInput{
		Source: aws.String(n.config.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{contact.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &sestypes.Body{
				Text: &sestypes.Content{
					Data:    aws.String(fmt.Sprintf("%s,\n\n%s\n", greeting, body)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := n.email.SendEmail(ctx, input); err != nil {
		n.logger.Error("email notification failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
		return
	}
	n.logger.Info("email notification sent", map[string]interface{}{
		"applicationId": app.ID,
		"stage":         string(app.Stage),
	})
}

func (n *Notifier) sendSMS(ctx context.Context, app *models.Application, contact *Contact, message string) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(contact.Phone),
		Message:     aws.String(message),
	}

	if _, err := n.sms.Publish(ctx, input); err != nil {
		n.logger.Error("sms notification failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
		return
	}
	n.logger.Info("sms notification sent", map[string]interface{}{
		"applicationId": app.ID,
		"stage":         string(app.Stage),
	})
}

func stageMessage(to models.Stage) (subject, body string, ok bool) {
	switch to {
	case models.StageOffer:
		return "Your application has an offer",
			"Good news: an offer has been prepared for your application. You will receive the offer document shortly.",
			true
	case models.StageHired:
		return "Welcome aboard",
			"Congratulations, your application has been completed and you have been hired. The team will reach out with onboarding details.",
			true
	case models.StageRejected:
		return "Update on your application",
			"Thank you for your interest. After careful consideration we have decided not to move forward with your application.",
			true
	default:
		return "", "", false
	}
}

func isTerminalMilestone(to models.Stage) bool {
	return to == models.StageHired || to == models.StageRejected
}
