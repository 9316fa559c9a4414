// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"

	"application-intake/internal/common/camunda"
	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-application-data"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}

// execute validates the bundle. An invalid bundle is reported as an
// APPLICATION_VALIDATION_FAILED StandardError carrying the field messages.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	fields := Validate(input.Candidate, h.config.MinMotivationLength)
	if len(fields) > 0 {
		h.logger.Warn("validation failed", map[string]interface{}{
			"invalidFields": len(fields),
		})
		return nil, apperrors.NewApplicationValidationFailedError(fields)
	}

	return &Output{
		IsValid:          true,
		ValidatedData:    Sanitize(input.Candidate),
		ValidationErrors: []ValidationError{},
	}, nil
}
