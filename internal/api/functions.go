// internal/api/functions.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "application-intake/internal/common/errors"
	sendnotification "application-intake/internal/workers/application/send-notification"

	"github.com/gin-gonic/gin"
)

func (h *handlers) sendApplicationEmail(c *gin.Context) {
	h.runFunction(c, sendnotification.TaskTypeApplicationEmail, func(ctx context.Context, in *sendnotification.Input) error {
		_, err := h.notifier.NotifyHR(ctx, &in.FormData, in.FormData.Refs())
		return err
	})
}

func (h *handlers) sendConfirmationEmail(c *gin.Context) {
	h.runFunction(c, sendnotification.TaskTypeConfirmationEmail, func(ctx context.Context, in *sendnotification.Input) error {
		_, err := h.notifier.NotifyCandidate(ctx, &in.FormData)
		return err
	})
}

// runFunction decodes {"formData": ...}, checks it against the request schema
// and runs send. Every failure is reported as 500 with a generic message.
func (h *handlers) runFunction(c *gin.Context, taskType string, send func(context.Context, *sendnotification.Input) error) {
	body, err := c.GetRawData()
	if err != nil {
		h.writeFunctionError(c, taskType, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	var document map[string]interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		h.writeFunctionError(c, taskType, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	if err := sendnotification.ValidateRequest(taskType, document); err != nil {
		h.writeFunctionError(c, taskType, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	var input sendnotification.Input
	if err := json.Unmarshal(body, &input); err != nil {
		h.writeFunctionError(c, taskType, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	if err := send(c.Request.Context(), &input); err != nil {
		h.writeFunctionError(c, taskType, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}

func (h *handlers) writeFunctionError(c *gin.Context, taskType string, err error) {
	stdErr := apperrors.Normalize(err)
	h.logger.Error("notification function failed", map[string]interface{}{
		"function": taskType,
		"code":     stdErr.Code,
		"details":  stdErr.Details,
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": stdErr.Message})
}
