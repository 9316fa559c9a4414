// Package errors provides standardized error handling for the intake HTTP API and Zeebe jobs.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeAvailabilityDateRequired    ErrorCode = "AVAILABILITY_DATE_REQUIRED"
	ErrCodeMissingDocument             ErrorCode = "MISSING_DOCUMENT"
	ErrCodeInvalidRequest              ErrorCode = "INVALID_REQUEST"

	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeDocumentUploadFailed ErrorCode = "DOCUMENT_UPLOAD_FAILED"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Bilingual messages shown to the candidate. Internal details never reach the browser.
const (
	MessageSubmissionFailed = "Could not submit your application, please retry. / تعذر إرسال طلبك، يرجى المحاولة مرة أخرى."
	MessageInvalidInput     = "Please correct the highlighted fields. / يرجى تصحيح الحقول المحددة."
	MessageSubmitted        = "Application submitted! We will contact you soon. / تم إرسال الطلب! سنتواصل معك قريباً."
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// FieldErrors returns the string-valued metadata, which the precondition and
// validation constructors use for field -> message pairs.
func (e *StandardError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Metadata))
	for k, v := range e.Metadata {
		if msg, ok := v.(string); ok {
			out[k] = msg
		}
	}
	return out
}

// HTTPStatus maps the error code to the status returned by the intake API.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatusFor(e.Code)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Zeebe workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewApplicationValidationFailedError creates a non-retryable validation error.
// fields carries the field -> message mapping in Metadata.
func NewApplicationValidationFailedError(fields map[string]string) *StandardError {
	meta := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		meta[k] = v
	}
	return &StandardError{
		Code:      ErrCodeApplicationValidationFailed,
		Message:   "Application data validation failed",
		Details:   fmt.Sprintf("%d invalid fields", len(fields)),
		Retryable: false,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// NewAvailabilityDateRequiredError creates the precondition error raised before any I/O.
// message is reported against field.
func NewAvailabilityDateRequiredError(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAvailabilityDateRequired,
		Message:   "Availability date is required",
		Retryable: false,
		Metadata:  map[string]interface{}{field: message},
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingDocumentError creates a non-retryable precondition error for an
// absent or unacceptable document.
func NewMissingDocumentError(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingDocument,
		Message:   "Required document is missing",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Metadata:  map[string]interface{}{field: message},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable malformed request error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable duplicate application error.
func NewDuplicateApplicationError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Application already exists",
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentUploadFailedError creates a retryable upload error.
func NewDocumentUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentUploadFailed,
		Message:   "Document upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a notification error. Sends are not retried.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion
// ==========================

// GetRetryCount returns the engine retry count for a code. Notification sends
// deliberately get none: a failed send is reported, not redelivered.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentUploadFailed,
		ErrCodeDatabaseInsertFailed:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Zeebe.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// HTTPStatusFor maps an error code to the status returned by the intake API.
func HTTPStatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeApplicationValidationFailed,
		ErrCodeAvailabilityDateRequired,
		ErrCodeMissingDocument:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeDuplicateApplication:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "REQUIRED") ||
		strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DUPLICATE"):
		return "BUSINESS_RULE"
	case strings.Contains(codeStr, "UPLOAD"):
		return "STORAGE"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
