// internal/workers/application/send-notification/schema.go
package sendnotification

import (
	"fmt"
	"strings"

	"application-intake/internal/common/validation"
)

func nonEmpty() validation.Property {
	return validation.Property{Type: "string", MinLength: validation.IntPtr(1)}
}

func requestSchema(required []string) validation.JSONSchema {
	props := make(map[string]validation.Property, len(required))
	for _, field := range required {
		props[field] = nonEmpty()
	}
	props["email"] = validation.Property{Type: "string", Format: "email"}

	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"formData"},
		Properties: map[string]validation.Property{
			"formData": {
				Type:       "object",
				Required:   required,
				Properties: props,
			},
		},
	}
}

// GetApplicationEmailSchema describes the body accepted for the HR notification.
func GetApplicationEmailSchema() validation.JSONSchema {
	return requestSchema([]string{
		"first_name", "last_name", "first_name_ar", "last_name_ar",
		"email", "phone", "position_applied_for",
	})
}

// GetConfirmationEmailSchema describes the body accepted for the candidate confirmation.
func GetConfirmationEmailSchema() validation.JSONSchema {
	return requestSchema([]string{
		"first_name", "last_name", "email", "position_applied_for",
	})
}

// ValidateRequest checks a decoded request body or job input for the given task type.
func ValidateRequest(taskType string, document interface{}) error {
	var schema validation.JSONSchema
	switch taskType {
	case TaskTypeApplicationEmail:
		schema = GetApplicationEmailSchema()
	case TaskTypeConfirmationEmail:
		schema = GetConfirmationEmailSchema()
	default:
		return fmt.Errorf("unknown notification type %q", taskType)
	}

	result, err := schema.Validate(document)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("invalid request: %s", strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}
