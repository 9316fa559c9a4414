package emailsend

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"

	"application-intake/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is satisfied by the common SES client.
type SESAPI interface {
	SendRawEmail(ctx context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error)
}

// SESTransport sends through Amazon SES. Attachments need the raw API, so the
// MIME message is assembled here.
type SESTransport struct {
	client SESAPI
	logger logger.Logger
}

func NewSESTransport(client SESAPI, log logger.Logger) *SESTransport {
	return &SESTransport{client: client, logger: log}
}

func (t *SESTransport) Name() string { return ProviderSES }

func (t *SESTransport) Send(ctx context.Context, msg *Message) (string, error) {
	raw, err := BuildMIME(msg)
	if err != nil {
		return "", err
	}

	out, err := t.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{Data: raw},
	})
	if err != nil {
		return "", fmt.Errorf("ses send raw email: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

// BuildMIME renders msg as a multipart/mixed message with base64 parts.
func BuildMIME(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	to := make([]string, len(msg.To))
	for i, a := range msg.To {
		to[i] = formatAddress(a)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", formatAddress(msg.From))
	for _, addr := range to {
		fmt.Fprintf(&buf, "To: %s\r\n", addr)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	if msg.Text != "" {
		if err := writeBase64Part(mw, "text/plain; charset=UTF-8", "", []byte(msg.Text)); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writeBase64Part(mw, "text/html; charset=UTF-8", "", []byte(msg.HTML)); err != nil {
			return nil, err
		}
	}
	for _, a := range msg.Attachments {
		content, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", a.Filename, err)
		}
		disposition := mime.FormatMediaType(a.Disposition, map[string]string{"filename": a.Filename})
		if err := writeBase64Part(mw, a.MimeType, disposition, content); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAddress(a Address) string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

func writeBase64Part(mw *multipart.Writer, contentType, disposition string, data []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "base64")
	if disposition != "" {
		header.Set("Content-Disposition", disposition)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}
