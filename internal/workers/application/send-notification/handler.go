// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"path"
	"strings"
	"time"

	"application-intake/internal/common/camunda"
	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
	"application-intake/internal/models"
	emailsend "application-intake/internal/workers/communication/email-send"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	TaskTypeApplicationEmail  = "send-application-email"
	TaskTypeConfirmationEmail = "send-confirmation-email"
)

// Handler formats and sends the HR notification and the candidate confirmation.
// A send is attempted once; failures are returned to the caller, who decides
// whether they are fatal.
type Handler struct {
	config       *Config
	sender       Sender
	documents    DocumentFetcher
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, sender Sender, documents DocumentFetcher, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"component": "send-notification"})
	return &Handler{
		config:       config,
		sender:       sender,
		documents:    documents,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
	}
}

// NotifyHR sends the application to HR with the stored documents and a PDF
// summary attached.
func (h *Handler) NotifyHR(ctx context.Context, record *models.ApplicationRecord, refs models.DocumentRefs) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	body, err := RenderHRBody(record)
	if err != nil {
		return h.failed(RecipientHR, record, err)
	}

	attachments, err := h.buildAttachments(ctx, record, refs)
	if err != nil {
		return h.failed(RecipientHR, record, err)
	}

	return h.send(ctx, RecipientHR, record, &emailsend.Message{
		To:          []emailsend.Address{{Email: h.config.HRRecipient}},
		Subject:     HRSubject(record),
		Text:        body,
		Attachments: attachments,
	})
}

// NotifyCandidate sends the bilingual confirmation to the applicant.
func (h *Handler) NotifyCandidate(ctx context.Context, record *models.ApplicationRecord) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	body, err := h.config.RenderCandidateBody(record)
	if err != nil {
		return h.failed(RecipientCandidate, record, err)
	}

	return h.send(ctx, RecipientCandidate, record, &emailsend.Message{
		To:      []emailsend.Address{{Email: record.Email, Name: record.FullName()}},
		Subject: CandidateSubject(record),
		HTML:    body,
	})
}

func (h *Handler) buildAttachments(ctx context.Context, record *models.ApplicationRecord, refs models.DocumentRefs) ([]emailsend.Attachment, error) {
	attachments := make([]emailsend.Attachment, 0, 3)

	docs := []struct {
		path     string
		fallback string
	}{
		{refs.ResumePath, ResumeFilename},
		{refs.CoverLetterPath, CoverLetterFilename},
	}
	for _, doc := range docs {
		if doc.path == "" {
			continue
		}
		data, err := h.documents.Download(ctx, doc.path)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", doc.path, err)
		}
		attachments = append(attachments, newAttachment(AttachmentName(doc.path, doc.fallback), data))
	}

	summary, err := RenderSummaryPDF(record)
	if err != nil {
		return nil, err
	}
	attachments = append(attachments, newAttachment(SummaryFilename, summary))
	return attachments, nil
}

func newAttachment(filename string, data []byte) emailsend.Attachment {
	return emailsend.Attachment{
		Content:     base64.StdEncoding.EncodeToString(data),
		Filename:    filename,
		MimeType:    mimetype.Detect(data).String(),
		Disposition: emailsend.DispositionAttachment,
	}
}

// AttachmentName recovers the uploaded file name from a storage path of the
// form <prefix>/<epoch-ms>-<name>.
func AttachmentName(storagePath, fallback string) string {
	base := path.Base(storagePath)
	if i := strings.IndexByte(base, '-'); i > 0 {
		base = base[i+1:]
	}
	if base == "" || base == "." || base == "/" {
		return fallback
	}
	return base
}

func (h *Handler) send(ctx context.Context, recipient string, record *models.ApplicationRecord, msg *emailsend.Message) (*Output, error) {
	out, err := h.sender.Execute(ctx, msg)
	if err != nil {
		return h.failed(recipient, record, err)
	}

	metrics.NotificationsTotal.WithLabelValues(recipient, "ok").Inc()
	h.logger.Info("notification sent", map[string]interface{}{
		"recipient":     recipient,
		"applicationId": record.ID,
		"messageId":     out.MessageID,
	})

	return &Output{
		NotificationID: uuid.New().String(),
		Recipient:      recipient,
		Status:         StatusSent,
		MessageID:      out.MessageID,
		SentAt:         out.SentAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) failed(recipient string, record *models.ApplicationRecord, err error) (*Output, error) {
	metrics.NotificationsTotal.WithLabelValues(recipient, "error").Inc()
	h.logger.Warn("notification failed", map[string]interface{}{
		"recipient":     recipient,
		"applicationId": record.ID,
		"error":         err,
	})
	var std *apperrors.StandardError
	if stderrors.As(err, &std) && std.Code == apperrors.ErrCodeNotificationSendFailed {
		return nil, std
	}
	return nil, apperrors.NewNotificationSendFailedError(recipient, err)
}

// HandleApplicationEmail is the job handler for send-application-email.
func (h *Handler) HandleApplicationEmail(client worker.JobClient, job entities.Job) {
	h.handle(client, job, func(ctx context.Context, in *Input) (*Output, error) {
		return h.NotifyHR(ctx, &in.FormData, in.FormData.Refs())
	})
}

// HandleConfirmationEmail is the job handler for send-confirmation-email.
func (h *Handler) HandleConfirmationEmail(client worker.JobClient, job entities.Job) {
	h.handle(client, job, func(ctx context.Context, in *Input) (*Output, error) {
		return h.NotifyCandidate(ctx, &in.FormData)
	})
}

func (h *Handler) handle(client worker.JobClient, job entities.Job, run func(context.Context, *Input) (*Output, error)) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"jobType":     job.Type,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	if err := ValidateRequest(job.Type, &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	output, err := run(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(apperrors.Normalize(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err, "jobKey": job.Key})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
}
