package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates a Postgres-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Get(ctx context.Context, owner domain.Identity) (*domain.Profile, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	const query = `
		SELECT id, full_name, company_name, avatar_url, role, website, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var (
		profile                                  domain.Profile
		fullName, company, avatar, role, website *string
	)
	err := r.pool.QueryRow(ctx, query, owner.UserID).Scan(
		&profile.ID, &fullName, &company, &avatar, &role, &website, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, mapError(err, domain.ErrProfileNotFound)
	}
	profile.FullName = text(fullName)
	profile.CompanyName = text(company)
	profile.AvatarURL = text(avatar)
	profile.Role = text(role)
	profile.Website = text(website)
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, owner domain.Identity, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidPayload
	}
	if !owner.Valid() {
		return domain.ErrUnauthorized
	}
	profile.ID = owner.UserID

	const query = `
	INSERT INTO profiles (id, full_name, company_name, avatar_url, role, website, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE
	SET full_name = EXCLUDED.full_name,
		company_name = EXCLUDED.company_name,
		avatar_url = EXCLUDED.avatar_url,
		role = EXCLUDED.role,
		website = EXCLUDED.website,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`
	cols := profile.Columns()
	err := r.pool.QueryRow(ctx, query,
		profile.ID,
		cols["full_name"],
		cols["company_name"],
		cols["avatar_url"],
		cols["role"],
		cols["website"],
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	return mapError(err, domain.ErrProfileNotFound)
}
