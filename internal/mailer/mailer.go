// Package mailer delivers transactional e-mail. A Sink does the actual
// sending; the Dispatcher decides whether the caller waits for it.
package mailer

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
	"github.com/samber/oops"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
)

// Message is one outbound HTML e-mail.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sink sends a message or reports why it could not.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Email    string
	Password string
	FromName string
}

// SMTPSink sends through an authenticated SMTP relay. The whole exchange,
// dial included, is bounded by the context deadline, or DefaultSendTimeout
// when the context has none.
type SMTPSink struct {
	cfg SMTPConfig
}

func NewSMTPSink(cfg SMTPConfig) *SMTPSink {
	return &SMTPSink{cfg: cfg}
}

func (s *SMTPSink) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return oops.Code(apperr.CodeDeliveryFailed).Wrap(err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultSendTimeout)
		defer cancel()
	}

	e := email.NewEmail()
	e.From = s.cfg.Email
	if s.cfg.FromName != "" {
		e.From = s.cfg.FromName + " <" + s.cfg.Email + ">"
	}
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTMLBody)

	raw, err := e.Bytes()
	if err != nil {
		return oops.Code(apperr.CodeDeliveryFailed).With("operation", "build message").Wrap(err)
	}

	if err := s.transmit(ctx, msg.To, raw); err != nil {
		return oops.Code(apperr.CodeDeliveryFailed).With("smtp_host", s.cfg.Host).Wrap(err)
	}
	return nil
}

// transmit runs one SMTP session for raw on a connection whose deadline
// follows ctx. Cancelling ctx unblocks any pending read or write.
func (s *SMTPSink) transmit(ctx context.Context, to string, raw []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return err
		}
	}
	if ok, _ := c.Extension("AUTH"); ok && s.cfg.Password != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.Email, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}

	if err := c.Mail(s.cfg.Email); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// LogSink writes messages to the log instead of sending them. Used when no
// SMTP credentials are configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email not sent, no SMTP credentials configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body_bytes", len(msg.HTMLBody),
	)
	return nil
}
