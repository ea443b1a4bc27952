package domain

import "time"

// Identity is the authenticated caller. It is passed explicitly to every
// gateway and mutation call; UserID scopes all reads and writes.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	AccessToken string `json:"-"`
}

func (i Identity) Valid() bool {
	return i.UserID != ""
}

// Session represents an acquired login stored server-side until logout or expiry.
type Session struct {
	ID           string    `json:"id"`
	Identity     Identity  `json:"identity"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Caller returns the identity bound to the session's current access token.
func (s *Session) Caller() Identity {
	if s == nil {
		return Identity{}
	}
	id := s.Identity
	id.AccessToken = s.AccessToken
	return id
}

// Grant is what the identity provider returns for a successful sign-in or refresh.
type Grant struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
