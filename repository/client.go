package repository

import (
	"context"

	"github.com/fastygo/compliance/domain"
)

const OrderNameAsc = "name"

type ClientFilter struct {
	Status  string
	OrderBy string
	Limit   int
	Offset  int
}

type ClientRepository interface {
	List(ctx context.Context, owner domain.Identity, filter ClientFilter) ([]domain.Client, error)
	GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Client, error)
	Create(ctx context.Context, owner domain.Identity, client *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, owner domain.Identity, id string, patch domain.ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, owner domain.Identity, id string) error
}
