package repository

import (
	"context"

	"github.com/fastygo/compliance/domain"
)

// ProfileRepository reads and writes the caller's own profile row.
type ProfileRepository interface {
	Get(ctx context.Context, owner domain.Identity) (*domain.Profile, error)
	Upsert(ctx context.Context, owner domain.Identity, profile *domain.Profile) error
}
