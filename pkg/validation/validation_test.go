package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
)

type form struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Inquiry  string `json:"inquiry" validate:"omitempty,oneof=sales demo"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(form{Name: "Ada", Email: "ada@example.com", Inquiry: "demo"}))
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(form{Name: "   ", Email: "nope", Inquiry: "gossip", Password: "abc"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))

	fields := domain.FieldsOf(err)
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Equal(t, "inquiry must be one of: sales, demo", fields["inquiry"])
	assert.Equal(t, "password must be at least 6 characters", fields["password"])
}

func TestStructValidatesDomainRecords(t *testing.T) {
	err := Struct(domain.Task{ClientID: "c1", Title: "File VAT", Status: "done", Priority: domain.PriorityLow})
	require.Error(t, err)
	assert.Contains(t, domain.FieldsOf(err), "status")
}
