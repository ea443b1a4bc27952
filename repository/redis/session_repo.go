package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

const sessionPrefix = "compliance:session:"

// sessionRepository keeps login sessions as JSON strings. Reads slide the
// key TTL so a session in use survives past its access-token expiry and can
// still be refreshed; idle sessions disappear after ttl.
type sessionRepository struct {
	client redislib.UniversalClient
	ttl    time.Duration
}

func NewSessionRepository(client redislib.UniversalClient, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionRepository{client: client, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	raw, err := r.client.GetEx(ctx, sessionPrefix+id, r.ttl).Bytes()
	switch {
	case errors.Is(err, redislib.Nil):
		return nil, domain.ErrSessionNotFound
	case err != nil:
		return nil, unavailable(err)
	}

	session := new(domain.Session)
	if err := json.Unmarshal(raw, session); err != nil {
		// unreadable entries are dropped so the caller signs in again
		_ = r.client.Del(ctx, sessionPrefix+id).Err()
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "encode session", err)
	}
	if err := r.client.Set(ctx, sessionPrefix+session.ID, payload, r.ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := r.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return domain.WrapError(domain.ErrCodeTransport, "session store unavailable", err)
}
