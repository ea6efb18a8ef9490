package email

import (
	"context"
	stderrors "errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/carewatch-api/internal/model"
)

// ErrNotConfigured is returned for every send when no SMTP host is set.
var ErrNotConfigured = stderrors.New("email service not configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type transport interface {
	Send(ctx context.Context, from string, to []string, m *gomail.Message) error
}

// Sender delivers alert emails over SMTP.
type Sender struct {
	from      string
	transport transport
}

func NewSender(cfg Config) *Sender {
	s := &Sender{from: cfg.From}
	if cfg.Host == "" {
		return s
	}
	s.transport = &smtpTransport{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
	}
	if s.from == "" {
		s.from = cfg.Username
	}
	return s
}

// Send returns once the SMTP exchange finishes or ctx is done. The connection
// is torn down with ctx, so nothing outlives the call.
func (s *Sender) Send(ctx context.Context, to string, msg model.RenderedAlert) error {
	if s.transport == nil {
		return ErrNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := s.transport.Send(ctx, s.from, []string{to}, m); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !stderrors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
