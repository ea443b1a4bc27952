package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func testConfig() Config {
	return Config{Host: "smtp.example.com", From: "noreply@example.com", FromName: "Compliance", To: "inbox@example.com"}
}

func TestNewSMTPMailerRequiresAddresses(t *testing.T) {
	_, err := NewSMTPMailer(Config{Host: "smtp.example.com"}, nil)
	assert.Error(t, err)
}

func TestSendBuildsMessage(t *testing.T) {
	m, err := NewSMTPMailer(testConfig(), nil)
	require.NoError(t, err)
	dialer := &recordingDialer{}
	m.WithDialer(dialer)

	err = m.Send(context.Background(), Message{
		ReplyTo:  "ada@example.com",
		Subject:  "Contact: demo",
		TextBody: "hello",
	})
	require.NoError(t, err)
	require.Len(t, dialer.sent, 1)

	msg := dialer.sent[0]
	assert.Equal(t, []string{"inbox@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("Reply-To"))
	assert.Equal(t, []string{"Contact: demo"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "hello")
}

func TestSendWrapsDialError(t *testing.T) {
	m, err := NewSMTPMailer(testConfig(), nil)
	require.NoError(t, err)
	m.WithDialer(&recordingDialer{err: errors.New("connection refused")})

	err = m.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendHonoursCancelledContext(t *testing.T) {
	m, err := NewSMTPMailer(testConfig(), nil)
	require.NoError(t, err)
	dialer := &recordingDialer{}
	m.WithDialer(dialer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{Subject: "x"}), context.Canceled)
	assert.Empty(t, dialer.sent)
}
