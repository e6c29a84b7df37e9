package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/smallbiznis/referra/internal/config"
	"go.uber.org/zap"
)

// Provider delivers transactional mail. Implementations must be safe for
// concurrent use.
type Provider interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

type smtpProvider struct {
	host string
	port int
	user string
	pass string
	from string
	log  *zap.Logger
}

func NewSMTP(cfg config.Config, log *zap.Logger) Provider {
	return &smtpProvider{
		host: cfg.Email.SMTPHost,
		port: cfg.Email.SMTPPort,
		user: cfg.Email.SMTPUsername,
		pass: cfg.Email.SMTPPassword,
		from: cfg.Email.SMTPFrom,
		log:  log.Named("email.smtp"),
	}
}

func (p *smtpProvider) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("email: no recipients")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", p.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	var auth smtp.Auth
	if p.user != "" {
		auth = smtp.PlainAuth("", p.user, p.pass, p.host)
	}
	if err := smtp.SendMail(addr, auth, p.from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}

	p.log.Debug("mail sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

type noopProvider struct {
	log *zap.Logger
}

// NewNoop returns a provider that only logs. Used when SMTP is not configured
// so flows that send mail still succeed in development.
func NewNoop(log *zap.Logger) Provider {
	return &noopProvider{log: log.Named("email.noop")}
}

func (p *noopProvider) Send(_ context.Context, to []string, subject, _ string) error {
	p.log.Info("mail skipped, smtp not configured",
		zap.Strings("to", to),
		zap.String("subject", subject),
	)
	return nil
}
