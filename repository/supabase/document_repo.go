package supabase

import (
	"context"
	"net/url"

	"github.com/fastygo/compliance/domain"
	sb "github.com/fastygo/compliance/internal/infrastructure/supabase"
	"github.com/fastygo/compliance/repository"
)

type documentRepository struct {
	rows table[domain.Document]
}

// NewDocumentRepository returns a PostgREST-backed DocumentRepository.
func NewDocumentRepository(client *sb.Client) repository.DocumentRepository {
	return &documentRepository{rows: table[domain.Document]{
		client:   client,
		entity:   domain.EntityDocuments,
		columns:  "*",
		ownerCol: "user_id",
		notFound: domain.ErrDocumentNotFound,
	}}
}

func (r *documentRepository) List(ctx context.Context, owner domain.Identity, filter repository.DocumentFilter) ([]domain.Document, error) {
	q := url.Values{}
	if filter.ClientID != "" {
		q.Set("client_id", eq(filter.ClientID))
	}
	if filter.TaskID != "" {
		q.Set("task_id", eq(filter.TaskID))
	}
	q.Set("order", "created_at.desc")
	return r.rows.list(ctx, owner, q, filter.Limit, filter.Offset)
}

func (r *documentRepository) GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Document, error) {
	return r.rows.get(ctx, owner, id)
}

func (r *documentRepository) Create(ctx context.Context, owner domain.Identity, doc *domain.Document) (*domain.Document, error) {
	if doc == nil {
		return nil, domain.ErrInvalidPayload
	}
	return r.rows.insert(ctx, owner, doc.Columns())
}

func (r *documentRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	return r.rows.delete(ctx, owner, id)
}
