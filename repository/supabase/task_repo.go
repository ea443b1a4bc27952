package supabase

import (
	"context"
	"net/url"

	"github.com/fastygo/compliance/domain"
	sb "github.com/fastygo/compliance/internal/infrastructure/supabase"
	"github.com/fastygo/compliance/repository"
)

// taskColumns embeds the related client name used by search and listings.
const taskColumns = "*,clients(name)"

type taskRepository struct {
	rows table[domain.Task]
}

// NewTaskRepository returns a PostgREST-backed TaskRepository.
func NewTaskRepository(client *sb.Client) repository.TaskRepository {
	return &taskRepository{rows: table[domain.Task]{
		client:   client,
		entity:   domain.EntityTasks,
		columns:  taskColumns,
		ownerCol: "user_id",
		notFound: domain.ErrTaskNotFound,
	}}
}

func (r *taskRepository) List(ctx context.Context, owner domain.Identity, filter repository.TaskFilter) ([]domain.Task, error) {
	q := url.Values{}
	if filter.Status != "" && filter.Status != domain.StatusAll {
		q.Set("status", eq(filter.Status))
	}
	if filter.ClientID != "" {
		q.Set("client_id", eq(filter.ClientID))
	}
	if filter.OrderBy == repository.OrderDueDateAsc {
		q.Set("order", "due_date.asc.nullslast")
	} else {
		q.Set("order", "created_at.desc")
	}
	return r.rows.list(ctx, owner, q, filter.Limit, filter.Offset)
}

func (r *taskRepository) GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Task, error) {
	return r.rows.get(ctx, owner, id)
}

func (r *taskRepository) Create(ctx context.Context, owner domain.Identity, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	return r.rows.insert(ctx, owner, task.Columns())
}

func (r *taskRepository) Update(ctx context.Context, owner domain.Identity, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return r.rows.update(ctx, owner, id, patch.Columns())
}

func (r *taskRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	return r.rows.delete(ctx, owner, id)
}
