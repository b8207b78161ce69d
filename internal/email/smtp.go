package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rishtahub/rishta-backend/pkg/config"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

// SMTPProvider delivers mail through a plain SMTP relay. When the email
// feature flag is disabled it logs the message instead of sending it, so
// local environments never need a working relay.
type SMTPProvider struct {
	cfg  config.EmailConfig
	auth smtp.Auth
	logg *logger.Logger
}

// NewSMTPProvider builds a provider from the environment config.
func NewSMTPProvider(cfg config.EmailConfig, logg *logger.Logger) (*SMTPProvider, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp host required when email is enabled")
	}
	var auth smtp.Auth
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return &SMTPProvider{cfg: cfg, auth: auth, logg: logg}, nil
}

// Send delivers a single plain-text message.
func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient required")
	}

	if !p.cfg.Enabled {
		if p.logg != nil {
			logCtx := p.logg.WithFields(ctx, map[string]any{
				"to":      msg.To,
				"subject": msg.Subject,
			})
			p.logg.Info(logCtx, "email delivery disabled, dropping message")
		}
		return nil
	}

	addr := fmt.Sprintf("%s:%d", p.cfg.SMTPHost, p.cfg.SMTPPort)
	payload := buildMessage(p.cfg.FromAddress, msg)
	if err := smtp.SendMail(addr, p.auth, p.cfg.FromAddress, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func buildMessage(from string, msg Message) []byte {
	builder := &strings.Builder{}
	builder.WriteString(fmt.Sprintf("From: %s\r\n", from))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	builder.WriteString(msg.Body)
	return []byte(builder.String())
}
