package mail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	To       string
}

// Message is a single outbound mail addressed to the configured inbox.
type Message struct {
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// Dialer abstracts gomail.Dialer so delivery can be faked.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	cfg    Config
	dialer Dialer
	logger *zap.Logger
}

func NewSMTPMailer(cfg Config, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" || cfg.To == "" {
		return nil, errors.New("mail: host, from and to are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}, nil
}

// WithDialer swaps the SMTP transport.
func (m *SMTPMailer) WithDialer(d Dialer) *SMTPMailer {
	m.dialer = d
	return m
}

// Build renders msg into a gomail message.
func (m *SMTPMailer) Build(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", gm.FormatAddress(m.cfg.From, m.cfg.FromName))
	gm.SetHeader("To", m.cfg.To)
	gm.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}
	return gm
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.Build(msg)); err != nil {
		m.logger.Error("smtp delivery failed", zap.String("host", m.cfg.Host), zap.Error(err))
		return fmt.Errorf("mail: send: %w", err)
	}
	m.logger.Info("mail delivered", zap.String("subject", msg.Subject))
	return nil
}
