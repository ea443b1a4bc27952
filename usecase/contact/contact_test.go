package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/internal/infrastructure/mail"
)

type MockMailer struct{ mock.Mock }

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func validRequest() Request {
	return Request{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Company: "Engines Ltd",
		Inquiry: "demo",
		Message: "We would like a walkthrough.",
	}
}

func TestSubmitSendsMail(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
		return msg.ReplyTo == "ada@example.com" &&
			msg.Subject == "Contact request (demo) from Ada Lovelace" &&
			msg.TextBody != ""
	})).Return(nil)

	n, err := New(mailer, nil).Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationSuccess, n.Kind)
	assert.Equal(t, SuccessMessage, n.Message)
	mailer.AssertExpectations(t)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Request)
		field string
	}{
		{"missing name", func(r *Request) { r.Name = "  " }, "name"},
		{"bad email", func(r *Request) { r.Email = "ada" }, "email"},
		{"unknown inquiry", func(r *Request) { r.Inquiry = "spam" }, "inquiry"},
		{"missing message", func(r *Request) { r.Message = "" }, "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := new(MockMailer)
			req := validRequest()
			tt.edit(&req)

			_, err := New(mailer, nil).Submit(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, domain.FieldsOf(err), tt.field)
			mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitDeliveryFailure(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := New(mailer, nil).Submit(context.Background(), validRequest())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
}

func TestSubmitWithoutMailer(t *testing.T) {
	_, err := New(nil, nil).Submit(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
