package repository

import (
	"context"

	"github.com/fastygo/compliance/domain"
)

const (
	OrderCreatedDesc = "created_at"
	OrderDueDateAsc  = "due_date"
)

type TaskFilter struct {
	Status   string
	ClientID string
	OrderBy  string
	Limit    int
	Offset   int
}

type TaskRepository interface {
	List(ctx context.Context, owner domain.Identity, filter TaskFilter) ([]domain.Task, error)
	GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Task, error)
	Create(ctx context.Context, owner domain.Identity, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, owner domain.Identity, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, owner domain.Identity, id string) error
}
