// internal/workers/application/send-notification/models.go
package sendnotification

import (
	"context"

	"application-intake/internal/models"
	emailsend "application-intake/internal/workers/communication/email-send"
)

// Input is the body of both notification functions and the variables of both job types.
type Input struct {
	FormData models.ApplicationRecord `json:"formData"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Recipient      string `json:"recipient"` // "hr" or "candidate"
	Status         string `json:"status"`
	MessageID      string `json:"messageId,omitempty"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Recipients
const (
	RecipientHR        = "hr"
	RecipientCandidate = "candidate"
)

// StatusSent is the only status reported; failures are returned as errors.
const StatusSent = "sent"

// Attachment file names
const (
	SummaryFilename     = "application-summary.pdf"
	ResumeFilename      = "resume.pdf"
	CoverLetterFilename = "cover-letter.pdf"
)

// Sender delivers one message through the email transport.
type Sender interface {
	Execute(ctx context.Context, msg *emailsend.Message) (*emailsend.Output, error)
}

// DocumentFetcher reads stored documents back for attachment.
type DocumentFetcher interface {
	Download(ctx context.Context, path string) ([]byte, error)
}
