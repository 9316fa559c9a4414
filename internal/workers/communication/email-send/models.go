package emailsend

import (
	"context"
	"time"

	"application-intake/internal/common/logger"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is one outbound email. Exactly one of Text and HTML is normally set.
type Message struct {
	From        Address      `json:"from"`
	To          []Address    `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text,omitempty"`
	HTML        string       `json:"html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment carries base64 content, as the email API expects.
type Attachment struct {
	Content     string `json:"content"`
	Filename    string `json:"filename"`
	MimeType    string `json:"mimeType"`
	Disposition string `json:"disposition"`
}

const DispositionAttachment = "attachment"

type Output struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}

// Transport delivers a Message through one provider.
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
	Name() string
}

type ServiceDependencies struct {
	Logger    logger.Logger
	Transport Transport
}
