package repository

import (
	"context"

	"github.com/fastygo/compliance/domain"
)

type DocumentFilter struct {
	ClientID string
	TaskID   string
	Limit    int
	Offset   int
}

type DocumentRepository interface {
	List(ctx context.Context, owner domain.Identity, filter DocumentFilter) ([]domain.Document, error)
	GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Document, error)
	Create(ctx context.Context, owner domain.Identity, doc *domain.Document) (*domain.Document, error)
	Delete(ctx context.Context, owner domain.Identity, id string) error
}
