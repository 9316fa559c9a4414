package emailsend

import (
	"context"
	"strings"

	apphttp "application-intake/internal/common/http"
	"application-intake/internal/common/logger"

	"github.com/google/uuid"
)

const sendGridPath = "/v3/mail/send"

// SendGridTransport posts to the SendGrid v3 mail API with a bearer token.
type SendGridTransport struct {
	url    string
	apiKey string
	client *apphttp.Client
	logger logger.Logger
}

func NewSendGridTransport(config *Config, log logger.Logger) *SendGridTransport {
	return &SendGridTransport{
		url:    strings.TrimRight(config.APIURL, "/") + sendGridPath,
		apiKey: config.APIKey,
		client: apphttp.NewClient(config.Timeout),
		logger: log,
	}
}

func (t *SendGridTransport) Name() string { return ProviderSendGrid }

type sgPersonalization struct {
	To []Address `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgAttachment struct {
	Content     string `json:"content"`
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Disposition string `json:"disposition"`
}

type sgPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             Address             `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
	Attachments      []sgAttachment      `json:"attachments,omitempty"`
	CustomArgs       map[string]string   `json:"custom_args,omitempty"`
}

// Send returns a locally generated id, also passed as a custom arg so it can
// be matched against provider events.
func (t *SendGridTransport) Send(ctx context.Context, msg *Message) (string, error) {
	messageID := uuid.New().String()

	payload := sgPayload{
		Personalizations: []sgPersonalization{{To: msg.To}},
		From:             msg.From,
		Subject:          msg.Subject,
		CustomArgs:       map[string]string{"message_id": messageID},
	}
	if msg.Text != "" {
		payload.Content = append(payload.Content, sgContent{Type: "text/plain", Value: msg.Text})
	}
	if msg.HTML != "" {
		payload.Content = append(payload.Content, sgContent{Type: "text/html", Value: msg.HTML})
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, sgAttachment{
			Content:     a.Content,
			Filename:    a.Filename,
			Type:        a.MimeType,
			Disposition: a.Disposition,
		})
	}

	err := t.client.PostJSON(ctx, t.url, map[string]string{
		"Authorization": "Bearer " + t.apiKey,
	}, payload)
	if err != nil {
		return "", err
	}
	return messageID, nil
}
