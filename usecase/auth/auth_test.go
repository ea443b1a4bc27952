package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
)

type MockProvider struct{ mock.Mock }

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*domain.Grant, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Grant), args.Error(1)
}

func (m *MockProvider) Refresh(ctx context.Context, refreshToken string) (*domain.Grant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Grant), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

type memorySessions struct {
	rows map[string]domain.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{rows: map[string]domain.Session{}}
}

func (m *memorySessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memorySessions) Save(_ context.Context, s *domain.Session) error {
	m.rows[s.ID] = *s
	return nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func grant(access, refresh string) *domain.Grant {
	return &domain.Grant{
		Identity:     domain.Identity{UserID: "u1", Email: "ada@example.com", AccessToken: access},
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(time.Hour),
	}
}

func newUseCase() (*UseCase, *MockProvider, *memorySessions) {
	provider := new(MockProvider)
	sessions := newMemorySessions()
	uc := New(provider, sessions, nil)
	uc.now = func() time.Time { return now }
	return uc, provider, sessions
}

func TestLoginAcquiresSession(t *testing.T) {
	uc, provider, sessions := newUseCase()
	provider.On("SignIn", mock.Anything, "ada@example.com", "secret1").Return(grant("at-1", "rt-1"), nil)

	session, err := uc.Login(context.Background(), Credentials{Email: " ada@example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "u1", session.Identity.UserID)
	assert.Empty(t, session.Identity.AccessToken)
	assert.Equal(t, "at-1", session.Caller().AccessToken)
	assert.Contains(t, sessions.rows, session.ID)

	resolved, err := uc.Resolve(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resolved.ID)
}

func TestLoginValidation(t *testing.T) {
	uc, provider, _ := newUseCase()

	_, err := uc.Login(context.Background(), Credentials{Email: "nope", Password: "123"})
	require.Error(t, err)
	fields := domain.FieldsOf(err)
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Contains(t, fields, "password")
	provider.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginRejected(t *testing.T) {
	uc, provider, sessions := newUseCase()
	provider.On("SignIn", mock.Anything, "ada@example.com", "wrongpw").
		Return(nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid login credentials"))

	_, err := uc.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "wrongpw"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Empty(t, sessions.rows)
}

func TestRefreshRotatesTokens(t *testing.T) {
	uc, provider, sessions := newUseCase()
	sessions.rows["s1"] = domain.Session{ID: "s1", Identity: domain.Identity{UserID: "u1"}, AccessToken: "old", RefreshToken: "rt-1", ExpiresAt: now.Add(-time.Minute)}
	provider.On("Refresh", mock.Anything, "rt-1").Return(grant("new", "rt-2"), nil)

	_, err := uc.Resolve(context.Background(), "s1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	session, err := uc.Refresh(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "new", session.AccessToken)
	assert.Equal(t, "rt-2", sessions.rows["s1"].RefreshToken)

	_, err = uc.Resolve(context.Background(), "s1")
	assert.NoError(t, err)
}

func TestRefreshRevokedDropsSession(t *testing.T) {
	uc, provider, sessions := newUseCase()
	sessions.rows["s1"] = domain.Session{ID: "s1", RefreshToken: "rt-1"}
	provider.On("Refresh", mock.Anything, "rt-1").Return(nil, domain.ErrUnauthorized)

	_, err := uc.Refresh(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NotContains(t, sessions.rows, "s1")
}

func TestLogoutClearsSession(t *testing.T) {
	uc, provider, sessions := newUseCase()
	sessions.rows["s1"] = domain.Session{ID: "s1", AccessToken: "at"}
	provider.On("SignOut", mock.Anything, "at").Return(nil)

	require.NoError(t, uc.Logout(context.Background(), "s1"))
	assert.Empty(t, sessions.rows)
	require.NoError(t, uc.Logout(context.Background(), "s1"))

	_, err := uc.Resolve(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestWithoutProviderIsNotConfigured(t *testing.T) {
	uc := New(nil, newMemorySessions(), nil)
	_, err := uc.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
