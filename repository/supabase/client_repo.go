package supabase

import (
	"context"
	"net/url"

	"github.com/fastygo/compliance/domain"
	sb "github.com/fastygo/compliance/internal/infrastructure/supabase"
	"github.com/fastygo/compliance/repository"
)

type clientRepository struct {
	rows table[domain.Client]
}

// NewClientRepository returns a PostgREST-backed ClientRepository.
func NewClientRepository(client *sb.Client) repository.ClientRepository {
	return &clientRepository{rows: table[domain.Client]{
		client:   client,
		entity:   domain.EntityClients,
		columns:  "*",
		ownerCol: "user_id",
		notFound: domain.ErrClientNotFound,
	}}
}

func (r *clientRepository) List(ctx context.Context, owner domain.Identity, filter repository.ClientFilter) ([]domain.Client, error) {
	q := url.Values{}
	if filter.Status != "" && filter.Status != domain.StatusAll {
		q.Set("status", eq(filter.Status))
	}
	if filter.OrderBy == repository.OrderNameAsc {
		q.Set("order", "name.asc")
	} else {
		q.Set("order", "created_at.desc")
	}
	return r.rows.list(ctx, owner, q, filter.Limit, filter.Offset)
}

func (r *clientRepository) GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Client, error) {
	return r.rows.get(ctx, owner, id)
}

func (r *clientRepository) Create(ctx context.Context, owner domain.Identity, client *domain.Client) (*domain.Client, error) {
	if client == nil {
		return nil, domain.ErrInvalidPayload
	}
	return r.rows.insert(ctx, owner, client.Columns())
}

func (r *clientRepository) Update(ctx context.Context, owner domain.Identity, id string, patch domain.ClientPatch) (*domain.Client, error) {
	return r.rows.update(ctx, owner, id, patch.Columns())
}

func (r *clientRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	return r.rows.delete(ctx, owner, id)
}
