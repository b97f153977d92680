package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/tours-service/internal/config"
)

func newTestMailer() *Mailer {
	return NewMailer(config.MailConfig{Host: "127.0.0.1", Port: 1, From: "Natours <hello@tours.local>"}, zap.NewNop())
}

func TestSend_NoRecipients(t *testing.T) {
	err := newTestMailer().Send(context.Background(), Email{Subject: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestMailer().Send(ctx, Email{To: []string{"amy@x.com"}, Subject: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSend_UnreachableServer(t *testing.T) {
	err := newTestMailer().Send(context.Background(), Email{To: []string{"amy@x.com"}, Subject: "hi", Body: "body"})
	assert.Error(t, err)
}

func TestSetEmailMessage(t *testing.T) {
	m := newTestMailer()
	msg := gomail.NewMessage()
	m.setEmailMessage(msg, Email{
		To:       []string{"amy@x.com"},
		Subject:  "Your password reset token (valid for 10 min)",
		Body:     "plain",
		HTMLBody: "<p>html</p>",
	})

	assert.Equal(t, []string{"amy@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your password reset token (valid for 10 min)"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
	assert.Contains(t, buf.String(), "text/plain")
}
