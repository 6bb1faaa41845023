// Package mailer delivers transactional email such as password reset links.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"employee-management-system/internal/config"
	"employee-management-system/internal/logging"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends a single message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var resetTemplate = template.Must(template.New("reset").Parse(`
<h1>You have requested a password reset</h1>
<p>Please go to this link to reset your password:</p>
<a href="{{.}}" clicktracking="off">{{.}}</a>
<p>If you did not request this, please ignore this email.</p>
`))

// PasswordResetMessage builds the email carrying resetURL to addr.
func PasswordResetMessage(addr, resetURL string) (Message, error) {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, resetURL); err != nil {
		return Message{}, err
	}
	return Message{To: addr, Subject: "Password Reset Request", HTML: body.String()}, nil
}

// SMTPMailer sends through an SMTP relay with STARTTLS and PLAIN auth.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, timeout: 15 * time.Second}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("could not connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(m.timeout))
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("could not create SMTP client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("could not start TLS: %w", err)
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("could not authenticate: %w", err)
		}
	}

	from := m.from()
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("could not set sender: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("could not set recipient: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("could not send data: %w", err)
	}
	if _, err := w.Write(m.render(msg)); err != nil {
		return fmt.Errorf("could not write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("could not finish message: %w", err)
	}
	return c.Quit()
}

func (m *SMTPMailer) from() string {
	if m.cfg.FromAddress != "" {
		return m.cfg.FromAddress
	}
	return m.cfg.Username
}

func (m *SMTPMailer) render(msg Message) []byte {
	from := m.from()
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.cfg.FromName), from)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them. Used in
// development when no SMTP relay is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info(ctx, "email not sent, SMTP disabled", "to", msg.To, "subject", msg.Subject, "body", msg.HTML)
	return nil
}

// New picks the SMTP mailer when configured and the log mailer otherwise.
func New(cfg config.SMTPConfig, log logging.Logger) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(log)
}
