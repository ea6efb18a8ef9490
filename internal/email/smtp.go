package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

const implicitTLSPort = 465

// RecipientError is an SMTP refusal of one recipient address. The server
// itself is healthy.
type RecipientError struct {
	Err *textproto.Error
}

func (e *RecipientError) Error() string {
	return fmt.Sprintf("recipient rejected: %v", e.Err)
}

func (e *RecipientError) Unwrap() error { return e.Err }

func (e *RecipientError) Rejected() bool { return true }

// smtpTransport runs one SMTP session per message on a connection whose
// deadline follows the caller's context.
type smtpTransport struct {
	host     string
	port     int
	username string
	password string
}

func (t *smtpTransport) Send(ctx context.Context, from string, to []string, m *gomail.Message) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer raw.Close()

	// Expiring the deadline unblocks any pending read or write once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = raw.SetDeadline(time.Now())
	})
	defer stop()

	conn := raw
	tlsConfig := &tls.Config{ServerName: t.host}
	if t.port == implicitTLSPort {
		conn = tls.Client(raw, tlsConfig)
	}

	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if t.port != implicitTLSPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if t.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return recipientError(err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// recipientError marks permanent mailbox failures (550 to 553) on RCPT.
func recipientError(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 550 && tpErr.Code <= 553 {
		return &RecipientError{Err: tpErr}
	}
	return err
}
