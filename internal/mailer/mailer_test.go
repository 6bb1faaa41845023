package mailer

import (
	"bytes"
	"context"
	"testing"

	"employee-management-system/internal/config"
	"employee-management-system/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetMessage(t *testing.T) {
	msg, err := PasswordResetMessage("ann@x.com", "http://localhost:5173/reset-password/abc123")
	require.NoError(t, err)

	assert.Equal(t, "ann@x.com", msg.To)
	assert.Equal(t, "Password Reset Request", msg.Subject)
	assert.Contains(t, msg.HTML, `href="http://localhost:5173/reset-password/abc123"`)
}

func TestSMTPMailer_Render(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, FromName: "HR", FromAddress: "hr@example.com"})

	out := string(m.render(Message{To: "ann@x.com", Subject: "Hi", HTML: "<p>hello</p>"}))

	assert.Contains(t, out, "From: HR <hr@example.com>\r\n")
	assert.Contains(t, out, "To: ann@x.com\r\n")
	assert.Contains(t, out, "Content-Type: text/html")
	assert.Contains(t, out, "\r\n\r\n<p>hello</p>")
}

func TestSMTPMailer_FromFallsBackToUsername(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "h", Username: "me@example.com"})
	assert.Equal(t, "me@example.com", m.from())
}

func TestSMTPMailer_UnreachableServer(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: 1})

	err := m.Send(context.Background(), Message{To: "a@x.com", Subject: "s", HTML: "b"})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "info", false)

	_, isLog := New(config.SMTPConfig{}, log).(*LogMailer)
	assert.True(t, isLog)
	_, isSMTP := New(config.SMTPConfig{Host: "smtp.example.com"}, log).(*SMTPMailer)
	assert.True(t, isSMTP)

	require.NoError(t, NewLogMailer(log).Send(context.Background(), Message{To: "a@x.com", Subject: "s"}))
	assert.Contains(t, buf.String(), "to=a@x.com")
}
