package emailsend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
)

// Service validates messages and hands them to the configured transport.
type Service struct {
	config    *Config
	transport Transport
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		transport: deps.Transport,
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": "email-send"}),
	}
}

// Execute sends msg once. The call is bounded by the configured timeout and
// is never retried here.
func (s *Service) Execute(ctx context.Context, msg *Message) (*Output, error) {
	if msg.From.Email == "" {
		msg.From = Address{Email: s.config.FromEmail, Name: s.config.FromName}
	}

	if err := s.validate(msg); err != nil {
		return nil, errors.NewInvalidRequestError(err.Error())
	}

	s.logger.Info("sending email", map[string]interface{}{
		"to":          recipients(msg),
		"subject":     msg.Subject,
		"attachments": len(msg.Attachments),
		"provider":    s.transport.Name(),
	})

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	messageID, err := s.transport.Send(ctx, msg)
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(s.transport.Name(), err)
	}

	s.logger.Info("email sent successfully", map[string]interface{}{
		"to":        recipients(msg),
		"messageId": messageID,
	})

	return &Output{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: messageID,
		Provider:  s.transport.Name(),
		SentAt:    time.Now().UTC(),
	}, nil
}

func (s *Service) validate(msg *Message) error {
	result, err := GetMessageSchema().Validate(msg)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("invalid message: %s", strings.Join(result.GetErrorMessages(), "; "))
	}
	if msg.Text == "" && msg.HTML == "" {
		return fmt.Errorf("invalid message: body is empty")
	}
	return nil
}

func recipients(msg *Message) string {
	emails := make([]string, len(msg.To))
	for i, to := range msg.To {
		emails[i] = to.Email
	}
	return strings.Join(emails, ",")
}

// NewTransport builds the transport named by config.Provider. ses is required
// only for the SES provider.
func NewTransport(config *Config, ses SESAPI, log logger.Logger) (Transport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Provider {
	case ProviderSES:
		if ses == nil {
			return nil, fmt.Errorf("ses client is required for provider %s", ProviderSES)
		}
		return NewSESTransport(ses, log), nil
	default:
		return NewSendGridTransport(config, log), nil
	}
}
