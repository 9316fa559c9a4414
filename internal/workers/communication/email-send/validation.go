package emailsend

import "application-intake/internal/common/validation"

func addressSchema() validation.Property {
	return validation.Property{
		Type:     "object",
		Required: []string{"email"},
		Properties: map[string]validation.Property{
			"email": {Type: "string", Format: "email", MaxLength: validation.IntPtr(255)},
			"name":  {Type: "string", MaxLength: validation.IntPtr(255)},
		},
	}
}

// GetMessageSchema describes a Message that may be handed to a transport.
func GetMessageSchema() validation.JSONSchema {
	addr := addressSchema()
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"from", "to", "subject"},
		Properties: map[string]validation.Property{
			"from": addr,
			"to": {
				Type:     "array",
				MinItems: validation.IntPtr(1),
				Items:    &addr,
			},
			"subject": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(500),
			},
			"text": {Type: "string", MaxLength: validation.IntPtr(100000)},
			"html": {Type: "string", MaxLength: validation.IntPtr(200000)},
			"attachments": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"content", "filename", "mimeType", "disposition"},
					Properties: map[string]validation.Property{
						"content":     {Type: "string", MinLength: validation.IntPtr(1)},
						"filename":    {Type: "string", MinLength: validation.IntPtr(1)},
						"mimeType":    {Type: "string", MinLength: validation.IntPtr(3)},
						"disposition": {Type: "string", Enum: []string{"attachment", "inline"}},
					},
				},
			},
		},
		AdditionalProperties: validation.BoolPtr(false),
	}
}
