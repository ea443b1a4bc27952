package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/validation"
	"github.com/fastygo/compliance/repository"
)

// IdentityProvider is the hosted auth service that issues access tokens.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Grant, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Grant, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UseCase struct {
	provider IdentityProvider
	sessions repository.SessionRepository
	now      func() time.Time
	logger   *zap.Logger
}

func New(provider IdentityProvider, sessions repository.SessionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		provider: provider,
		sessions: sessions,
		now:      time.Now,
		logger:   logger,
	}
}

// Login acquires a session for the credentials.
func (uc *UseCase) Login(ctx context.Context, creds Credentials) (*domain.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validation.Struct(creds); err != nil {
		return nil, err
	}
	if !uc.configured() {
		return nil, domain.ErrNotConfigured
	}

	grant, err := uc.provider.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		uc.logger.Warn("sign in failed", zap.String("email", creds.Email), zap.Error(err))
		return nil, err
	}

	identity := grant.Identity
	identity.AccessToken = ""
	session := &domain.Session{
		ID:           uuid.NewString(),
		Identity:     identity,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    grant.ExpiresAt,
		CreatedAt:    uc.now(),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	uc.logger.Info("session acquired", zap.String("user_id", identity.UserID), zap.String("session_id", session.ID))
	return session, nil
}

// Refresh exchanges the session's refresh token for a new access token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*domain.Session, error) {
	if !uc.configured() {
		return nil, domain.ErrNotConfigured
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RefreshToken == "" {
		return nil, domain.ErrUnauthorized
	}

	grant, err := uc.provider.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			_ = uc.sessions.Delete(ctx, sessionID)
		}
		return nil, err
	}

	session.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		session.RefreshToken = grant.RefreshToken
	}
	session.ExpiresAt = grant.ExpiresAt
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resolve returns the live session. An expired access token requires Refresh first.
func (uc *UseCase) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	if uc.sessions == nil {
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "session expired")
	}
	return session, nil
}

// Logout clears the session locally and revokes it at the provider.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if !uc.configured() {
		return domain.ErrNotConfigured
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		return err
	}
	if err := uc.provider.SignOut(ctx, session.AccessToken); err != nil {
		uc.logger.Warn("provider sign out failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// configured is false when the server runs without an identity provider or session store.
func (uc *UseCase) configured() bool {
	return uc.provider != nil && uc.sessions != nil
}
