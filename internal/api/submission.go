// internal/api/submission.go
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/models"
	submitapplication "application-intake/internal/workers/application/submit-application"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers the form fields and part headers around the two files.
const multipartOverhead = 1 << 20

func (h *handlers) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.opts.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.opts.MaxUploadBytes+multipartOverhead)
		}
		c.Next()
	}
}

func (h *handlers) submitApplication(c *gin.Context) {
	var bundle models.CandidateBundle
	if err := c.ShouldBind(&bundle); err != nil {
		h.writeSubmissionError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	resume, err := h.readDocument(c, submitapplication.FieldResume)
	if err != nil {
		h.writeSubmissionError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	coverLetter, err := h.readDocument(c, submitapplication.FieldCoverLetter)
	if err != nil {
		h.writeSubmissionError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	result, err := h.submitter.Submit(c.Request.Context(), &submitapplication.Input{
		Candidate:        bundle,
		AvailabilityDate: c.PostForm(submitapplication.FieldAvailabilityDate),
		Resume:           resume,
		CoverLetter:      coverLetter,
	})
	if err != nil {
		h.writeSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":             apperrors.MessageSubmitted,
		"applicationId":       result.ApplicationID,
		"notificationWarning": result.NotificationWarning,
	})
}

// readDocument returns nil when the part is absent. One byte past the limit is
// read so the orchestrator can report the file as too large.
func (h *handlers) readDocument(c *gin.Context, field string) (*models.DocumentBlob, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.opts.MaxUploadBytes > 0 {
		r = io.LimitReader(f, h.opts.MaxUploadBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}

	return &models.DocumentBlob{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// writeSubmissionError maps an error onto the bilingual response. Only field
// errors are passed through; everything else is the single generic message.
func (h *handlers) writeSubmissionError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	status := stdErr.HTTPStatus()

	switch status {
	case http.StatusUnprocessableEntity:
		c.JSON(status, gin.H{
			"error":  apperrors.MessageInvalidInput,
			"code":   stdErr.Code,
			"fields": stdErr.FieldErrors(),
		})
	case http.StatusConflict:
		c.JSON(status, gin.H{
			"error": apperrors.MessageSubmissionFailed,
			"code":  stdErr.Code,
		})
	default:
		h.logger.Error("submission failed", map[string]interface{}{
			"code":    stdErr.Code,
			"details": stdErr.Details,
		})
		c.JSON(status, gin.H{"error": apperrors.MessageSubmissionFailed})
	}
}
