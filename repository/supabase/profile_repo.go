package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fastygo/compliance/domain"
	sb "github.com/fastygo/compliance/internal/infrastructure/supabase"
	"github.com/fastygo/compliance/repository"
)

type profileRepository struct {
	rows table[domain.Profile]
}

// NewProfileRepository returns a PostgREST-backed ProfileRepository. Profiles are keyed by id = owner.
func NewProfileRepository(client *sb.Client) repository.ProfileRepository {
	return &profileRepository{rows: table[domain.Profile]{
		client:   client,
		entity:   domain.EntityProfiles,
		columns:  "*",
		ownerCol: "id",
		notFound: domain.ErrProfileNotFound,
	}}
}

func (r *profileRepository) Get(ctx context.Context, owner domain.Identity) (*domain.Profile, error) {
	rows, err := r.rows.list(ctx, owner, nil, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return &rows[0], nil
}

func (r *profileRepository) Upsert(ctx context.Context, owner domain.Identity, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidPayload
	}
	if err := requireOwner(owner); err != nil {
		return err
	}
	profile.ID = owner.UserID

	var rows []domain.Profile
	err := r.rows.client.Rest(ctx, sb.Request{
		Method: http.MethodPost,
		Table:  domain.EntityProfiles,
		Query:  url.Values{"on_conflict": {"id"}, "select": {"*"}},
		Body:   profile.Columns(),
		Token:  owner.AccessToken,
		Prefer: "resolution=merge-duplicates," + sb.PreferRepresentation,
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		*profile = rows[0]
	}
	return nil
}
