package supabase

import (
	"context"
	"net/http"
	"time"

	"github.com/fastygo/compliance/domain"
)

// TokenResponse is the GoTrue grant response.
type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

type AuthUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

// SignIn exchanges an email and password for a session grant.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Grant, error) {
	body := map[string]string{"email": email, "password": password}
	return c.grant(ctx, "password", body)
}

// Refresh exchanges a refresh token for a new grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.Grant, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.grant(ctx, "refresh_token", body)
}

// SignOut revokes the refresh tokens bound to accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	err := c.do(ctx, http.MethodPost, c.baseURL+authPath+"logout", accessToken, nil, nil, nil)
	if domain.IsDomainError(err, domain.ErrCodeUnauthorized) || domain.IsDomainError(err, domain.ErrCodeNotFound) {
		// already signed out on the provider side
		return nil
	}
	return err
}

func (c *Client) grant(ctx context.Context, grantType string, body interface{}) (*domain.Grant, error) {
	var token TokenResponse
	target := c.baseURL + authPath + "token?grant_type=" + grantType
	if err := c.do(ctx, http.MethodPost, target, c.anonKey, nil, body, &token); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeValidation) {
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid login credentials", err)
		}
		return nil, err
	}
	if token.AccessToken == "" || token.User.ID == "" {
		return nil, domain.NewError(domain.ErrCodeTransport, "malformed auth response")
	}

	expiresIn := time.Duration(token.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return &domain.Grant{
		Identity: domain.Identity{
			UserID:      token.User.ID,
			Email:       token.User.Email,
			FullName:    token.User.UserMetadata.FullName,
			AvatarURL:   token.User.UserMetadata.AvatarURL,
			AccessToken: token.AccessToken,
		},
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(expiresIn),
	}, nil
}
