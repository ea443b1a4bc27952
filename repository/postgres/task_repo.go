package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

const taskColumns = `t.id, t.user_id, t.client_id, t.title, t.description, t.due_date, t.status, t.priority,
	t.notes, t.completed_at, t.assigned_to, t.created_at, t.updated_at, c.name`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Task, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	query := `
	SELECT ` + taskColumns + `
	FROM tasks t
	LEFT JOIN clients c ON c.id = t.client_id
	WHERE t.id = $1 AND t.user_id = $2
	`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id, owner.UserID))
	return task, mapError(err, domain.ErrTaskNotFound)
}

func (r *taskRepository) List(ctx context.Context, owner domain.Identity, filter repository.TaskFilter) ([]domain.Task, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	order := "t.created_at DESC"
	if filter.OrderBy == repository.OrderDueDateAsc {
		order = "t.due_date ASC NULLS LAST"
	}
	status := filter.Status
	if status == domain.StatusAll {
		status = ""
	}

	query := fmt.Sprintf(`
	SELECT %s
	FROM tasks t
	LEFT JOIN clients c ON c.id = t.client_id
	WHERE t.user_id = $1
	  AND ($2 = '' OR t.status = $2)
	  AND ($3 = '' OR t.client_id::text = $3)
	ORDER BY %s
	LIMIT $4 OFFSET $5
	`, taskColumns, order)

	rows, err := r.pool.Query(ctx, query, owner.UserID, status, filter.ClientID, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, mapError(err, domain.ErrTaskNotFound)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, mapError(err, domain.ErrTaskNotFound)
		}
		tasks = append(tasks, *task)
	}
	return tasks, mapError(rows.Err(), domain.ErrTaskNotFound)
}

func (r *taskRepository) Create(ctx context.Context, owner domain.Identity, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if err := ensureProfile(ctx, r.pool, owner); err != nil {
		return nil, err
	}
	cols := task.Columns()
	cols["user_id"] = owner.UserID

	values, args := insertClause(cols)
	query := `
	WITH t AS (INSERT INTO tasks ` + values + ` RETURNING *)
	SELECT ` + taskColumns + `
	FROM t
	LEFT JOIN clients c ON c.id = t.client_id
	`
	created, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	return created, mapError(err, domain.ErrTaskNotFound)
}

func (r *taskRepository) Update(ctx context.Context, owner domain.Identity, id string, patch domain.TaskPatch) (*domain.Task, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return r.GetByID(ctx, owner, id)
	}
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	delete(cols, "user_id")

	set, args := setClause(cols, 3)
	query := `
	WITH t AS (
		UPDATE tasks SET ` + set + `, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING *
	)
	SELECT ` + taskColumns + `
	FROM t
	LEFT JOIN clients c ON c.id = t.client_id
	`
	updated, err := scanTask(r.pool.QueryRow(ctx, query, append([]interface{}{id, owner.UserID}, args...)...))
	return updated, mapError(err, domain.ErrTaskNotFound)
}

func (r *taskRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	if !owner.Valid() {
		return domain.ErrUnauthorized
	}
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, owner.UserID)
	if err != nil {
		return mapError(err, domain.ErrTaskNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task                                             domain.Task
		description, notes, assigned, clientName, status *string
		priority                                         *string
		due, completed                                   *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.ClientID,
		&task.Title,
		&description,
		&due,
		&status,
		&priority,
		&notes,
		&completed,
		&assigned,
		&task.CreatedAt,
		&task.UpdatedAt,
		&clientName,
	); err != nil {
		return nil, err
	}

	task.Description = text(description)
	task.Notes = text(notes)
	task.AssignedTo = text(assigned)
	task.Status = domain.TaskStatus(text(status))
	task.Priority = domain.TaskPriority(text(priority))
	task.DueDate = due
	task.CompletedAt = completed
	if clientName != nil {
		task.Client = &domain.ClientRef{Name: *clientName}
	}
	return &task, nil
}
