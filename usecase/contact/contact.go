package contact

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/internal/infrastructure/mail"
	"github.com/fastygo/compliance/pkg/validation"
)

const SuccessMessage = "Thank you for contacting us. We'll get back to you within 24 hours."

// Request is the marketing site contact form.
type Request struct {
	Name    string `json:"name" validate:"notblank,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"max=200"`
	Inquiry string `json:"inquiry" validate:"omitempty,oneof=sales demo support partnership other"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

type UseCase struct {
	mailer Mailer
	logger *zap.Logger
}

func New(mailer Mailer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{mailer: mailer, logger: logger}
}

// Submit validates the form and forwards it to the sales inbox.
func (uc *UseCase) Submit(ctx context.Context, req Request) (domain.Notification, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return domain.Notification{}, err
	}
	if uc.mailer == nil {
		return domain.Notification{}, domain.ErrNotConfigured
	}

	inquiry := req.Inquiry
	if inquiry == "" {
		inquiry = "other"
	}
	msg := mail.Message{
		ReplyTo:  req.Email,
		Subject:  fmt.Sprintf("Contact request (%s) from %s", inquiry, strings.TrimSpace(req.Name)),
		TextBody: render(req, inquiry),
	}
	if err := uc.mailer.Send(ctx, msg); err != nil {
		return domain.Notification{}, domain.WrapError(domain.ErrCodeTransport, "could not deliver message", err)
	}

	uc.logger.Info("contact request forwarded", zap.String("inquiry", inquiry))
	return domain.Notification{
		Kind:    domain.NotificationSuccess,
		Title:   "Message Sent!",
		Message: SuccessMessage,
	}, nil
}

func render(req Request, inquiry string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", strings.TrimSpace(req.Name))
	fmt.Fprintf(&b, "Email: %s\n", req.Email)
	if c := strings.TrimSpace(req.Company); c != "" {
		fmt.Fprintf(&b, "Company: %s\n", c)
	}
	fmt.Fprintf(&b, "Inquiry: %s\n\n", inquiry)
	b.WriteString(req.Message)
	b.WriteString("\n")
	return b.String()
}
