package client

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/validation"
	"github.com/fastygo/compliance/repository"
	"github.com/fastygo/compliance/usecase/mutation"
	"github.com/fastygo/compliance/usecase/search"
)

type UseCase struct {
	clients  repository.ClientRepository
	pipeline *mutation.Pipeline
	logger   *zap.Logger
}

func New(clients repository.ClientRepository, pipeline *mutation.Pipeline, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipeline == nil {
		pipeline = mutation.New(nil, nil, logger)
	}
	return &UseCase{
		clients:  clients,
		pipeline: pipeline,
		logger:   logger,
	}
}

// ListQuery narrows the owner's clients.
type ListQuery struct {
	Search string
	Status string
}

// All returns every client of owner, newest first.
func (uc *UseCase) All(ctx context.Context, owner domain.Identity) ([]domain.Client, error) {
	return mutation.Load(ctx, uc.pipeline, owner, domain.EntityClients, func(ctx context.Context) ([]domain.Client, error) {
		return uc.clients.List(ctx, owner, repository.ClientFilter{OrderBy: repository.OrderCreatedDesc})
	})
}

func (uc *UseCase) List(ctx context.Context, owner domain.Identity, q ListQuery) ([]domain.Client, error) {
	rows, err := uc.All(ctx, owner)
	if err != nil {
		return nil, err
	}
	return search.Filter(rows, search.Query{Term: q.Search, Status: q.Status}), nil
}

// ListActive returns the active clients ordered by name, as offered when assigning a task.
func (uc *UseCase) ListActive(ctx context.Context, owner domain.Identity) ([]domain.Client, error) {
	rows, err := uc.All(ctx, owner)
	if err != nil {
		return nil, err
	}
	active := search.Filter(rows, search.Query{Status: string(domain.ClientActive)})
	sort.SliceStable(active, func(i, j int) bool {
		return strings.ToLower(active[i].Name) < strings.ToLower(active[j].Name)
	})
	return active, nil
}

func (uc *UseCase) Get(ctx context.Context, owner domain.Identity, id string) (*domain.Client, error) {
	return uc.clients.GetByID(ctx, owner, id)
}

func (uc *UseCase) Create(ctx context.Context, owner domain.Identity, submissionID string, client *domain.Client) (mutation.Outcome[*domain.Client], error) {
	if client == nil {
		return mutation.Outcome[*domain.Client]{}, domain.ErrInvalidPayload
	}
	client.Name = strings.TrimSpace(client.Name)
	if client.Status == "" {
		client.Status = domain.ClientActive
	}

	op := mutation.Op{Entity: domain.EntityClients, Operation: domain.OperationCreate, SubmissionID: submissionID}
	return mutation.Execute(ctx, uc.pipeline, owner, op,
		func() error { return validation.Struct(client) },
		func(ctx context.Context) (*domain.Client, error) {
			return uc.clients.Create(ctx, owner, client)
		})
}

func (uc *UseCase) Update(ctx context.Context, owner domain.Identity, id string, patch domain.ClientPatch) (mutation.Outcome[*domain.Client], error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}

	op := mutation.Op{Entity: domain.EntityClients, Operation: domain.OperationUpdate, RecordID: id}
	return mutation.Execute(ctx, uc.pipeline, owner, op,
		func() error { return validation.Struct(patch) },
		func(ctx context.Context) (*domain.Client, error) {
			return uc.clients.Update(ctx, owner, id, patch)
		})
}

// Delete removes the client; the store cascades to its tasks and documents.
func (uc *UseCase) Delete(ctx context.Context, owner domain.Identity, id string) (mutation.Outcome[string], error) {
	op := mutation.Op{Entity: domain.EntityClients, Operation: domain.OperationDelete, RecordID: id}
	return mutation.Execute(ctx, uc.pipeline, owner, op, nil,
		func(ctx context.Context) (string, error) {
			if err := uc.clients.Delete(ctx, owner, id); err != nil {
				return "", err
			}
			return id, nil
		})
}
