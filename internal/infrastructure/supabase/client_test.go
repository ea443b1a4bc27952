package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{URL: server.URL, AnonKey: "anon-key", Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	return client
}

func TestNewRequiresURLAndKey(t *testing.T) {
	_, err := New(Config{URL: "https://x.supabase.co"}, nil)
	assert.Error(t, err)
}

func TestRestSendsHeadersAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/clients", r.URL.Path)
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, PreferRepresentation, r.Header.Get("Prefer"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "c1"}})
	})

	var rows []struct {
		ID string `json:"id"`
	}
	err := client.Rest(context.Background(), Request{
		Method: http.MethodGet,
		Table:  domain.EntityClients,
		Query:  map[string][]string{"user_id": {"eq.user-1"}},
		Token:  "user-token",
		Prefer: PreferRepresentation,
	}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0].ID)
}

func TestRestFallsBackToAnonKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, client.Ping(context.Background()))
}

func TestRestClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   domain.ErrorCode
	}{
		{"expired jwt", http.StatusUnauthorized, `{"code":"PGRST301","message":"JWT expired"}`, domain.ErrCodeUnauthorized},
		{"row level security", http.StatusBadRequest, `{"code":"42501","message":"new row violates row-level security policy"}`, domain.ErrCodeUnauthorized},
		{"check constraint", http.StatusBadRequest, `{"code":"23514","message":"violates check constraint"}`, domain.ErrCodeValidation},
		{"bad enum", http.StatusBadRequest, `{"code":"22P02","message":"invalid input value"}`, domain.ErrCodeValidation},
		{"not acceptable", http.StatusNotAcceptable, `{"code":"PGRST116"}`, domain.ErrCodeNotFound},
		{"server error", http.StatusBadGateway, `upstream down`, domain.ErrCodeTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := client.Rest(context.Background(), Request{Method: http.MethodGet, Table: domain.EntityTasks}, nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}
}

func TestRestUnreachable(t *testing.T) {
	client, err := New(Config{URL: "http://127.0.0.1:1", AnonKey: "anon", Timeout: 200 * time.Millisecond}, nil)
	require.NoError(t, err)

	err = client.Rest(context.Background(), Request{Method: http.MethodGet, Table: domain.EntityTasks}, nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
}

func TestRestCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Rest(ctx, Request{Method: http.MethodGet, Table: domain.EntityTasks}, nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
}

func TestSignInBuildsGrant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])

		_, _ = w.Write([]byte(`{
			"access_token": "at-1",
			"refresh_token": "rt-1",
			"expires_in": 3600,
			"user": {"id": "user-1", "email": "ada@example.com", "user_metadata": {"full_name": "Ada Lovelace"}}
		}`))
	})

	grant, err := client.SignIn(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", grant.Identity.UserID)
	assert.Equal(t, "Ada Lovelace", grant.Identity.FullName)
	assert.Equal(t, "rt-1", grant.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), grant.ExpiresAt, 5*time.Second)
}

func TestSignInRejectedCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignIn(context.Background(), "ada@example.com", "wrong")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestSignOutIgnoresExpiredToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.NoError(t, client.SignOut(context.Background(), "stale"))
}
