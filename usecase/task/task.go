package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/validation"
	"github.com/fastygo/compliance/repository"
	"github.com/fastygo/compliance/usecase/mutation"
	"github.com/fastygo/compliance/usecase/search"
)

type UseCase struct {
	tasks    repository.TaskRepository
	clients  repository.ClientRepository
	pipeline *mutation.Pipeline
	now      func() time.Time
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, clients repository.ClientRepository, pipeline *mutation.Pipeline, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipeline == nil {
		pipeline = mutation.New(nil, nil, logger)
	}
	return &UseCase{
		tasks:    tasks,
		clients:  clients,
		pipeline: pipeline,
		now:      time.Now,
		logger:   logger,
	}
}

// ListQuery narrows the owner's tasks.
type ListQuery struct {
	Search   string
	Status   string
	ClientID string
}

// All returns every task of owner with its client name embedded, newest first.
func (uc *UseCase) All(ctx context.Context, owner domain.Identity) ([]domain.Task, error) {
	return mutation.Load(ctx, uc.pipeline, owner, domain.EntityTasks, func(ctx context.Context) ([]domain.Task, error) {
		return uc.tasks.List(ctx, owner, repository.TaskFilter{OrderBy: repository.OrderCreatedDesc})
	})
}

func (uc *UseCase) List(ctx context.Context, owner domain.Identity, q ListQuery) ([]domain.Task, error) {
	rows, err := uc.All(ctx, owner)
	if err != nil {
		return nil, err
	}
	rows = search.Filter(rows, search.Query{Term: q.Search, Status: q.Status})
	if q.ClientID == "" {
		return rows, nil
	}
	out := rows[:0]
	for _, t := range rows {
		if t.ClientID == q.ClientID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (uc *UseCase) Get(ctx context.Context, owner domain.Identity, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, owner, id)
}

func (uc *UseCase) Create(ctx context.Context, owner domain.Identity, submissionID string, task *domain.Task) (mutation.Outcome[*domain.Task], error) {
	if task == nil {
		return mutation.Outcome[*domain.Task]{}, domain.ErrInvalidPayload
	}
	task.Title = strings.TrimSpace(task.Title)
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Status == domain.TaskCompleted && task.CompletedAt == nil {
		done := uc.now().UTC()
		task.CompletedAt = &done
	} else if task.Status != domain.TaskCompleted {
		task.CompletedAt = nil
	}

	op := mutation.Op{Entity: domain.EntityTasks, Operation: domain.OperationCreate, SubmissionID: submissionID}
	return mutation.Execute(ctx, uc.pipeline, owner, op,
		func() error {
			if err := validation.Struct(task); err != nil {
				return err
			}
			return uc.requireClient(ctx, owner, task.ClientID)
		},
		func(ctx context.Context) (*domain.Task, error) {
			return uc.tasks.Create(ctx, owner, task)
		})
}

// Update applies patch. Moving into completed stamps completed_at and moving
// out of it clears the stamp.
func (uc *UseCase) Update(ctx context.Context, owner domain.Identity, id string, patch domain.TaskPatch) (mutation.Outcome[*domain.Task], error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	patch.CompletedAt, patch.ClearCompletedAt = nil, false

	op := mutation.Op{Entity: domain.EntityTasks, Operation: domain.OperationUpdate, RecordID: id}
	return mutation.Execute(ctx, uc.pipeline, owner, op,
		func() error {
			if err := validation.Struct(patch); err != nil {
				return err
			}
			if patch.ClientID != nil {
				if err := uc.requireClient(ctx, owner, *patch.ClientID); err != nil {
					return err
				}
			}
			if patch.Status == nil {
				return nil
			}
			current, err := uc.tasks.GetByID(ctx, owner, id)
			if err != nil {
				return err
			}
			uc.stampCompletion(current, &patch)
			return nil
		},
		func(ctx context.Context) (*domain.Task, error) {
			return uc.tasks.Update(ctx, owner, id, patch)
		})
}

func (uc *UseCase) Delete(ctx context.Context, owner domain.Identity, id string) (mutation.Outcome[string], error) {
	op := mutation.Op{Entity: domain.EntityTasks, Operation: domain.OperationDelete, RecordID: id}
	return mutation.Execute(ctx, uc.pipeline, owner, op, nil,
		func(ctx context.Context) (string, error) {
			if err := uc.tasks.Delete(ctx, owner, id); err != nil {
				return "", err
			}
			return id, nil
		})
}

func (uc *UseCase) stampCompletion(current *domain.Task, patch *domain.TaskPatch) {
	next := *patch.Status
	switch {
	case next == domain.TaskCompleted && !current.IsCompleted():
		done := uc.now().UTC()
		patch.CompletedAt = &done
	case next != domain.TaskCompleted && current.IsCompleted():
		patch.ClearCompletedAt = true
	}
}

// requireClient checks that clientID names a client owned by the caller.
func (uc *UseCase) requireClient(ctx context.Context, owner domain.Identity, clientID string) error {
	if _, err := uc.clients.GetByID(ctx, owner, clientID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return &domain.Error{
				Code:    domain.ErrCodeNotFound,
				Message: "client not found",
				Err:     err,
				Fields:  map[string]string{"client_id": "Select one of your clients"},
			}
		}
		return err
	}
	return nil
}
