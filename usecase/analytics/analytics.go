// Package analytics derives dashboard and analytics summaries from an owner's rows.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/compliance/domain"
)

type TaskSource interface {
	All(ctx context.Context, owner domain.Identity) ([]domain.Task, error)
}

type ClientSource interface {
	All(ctx context.Context, owner domain.Identity) ([]domain.Client, error)
}

type DocumentSource interface {
	All(ctx context.Context, owner domain.Identity) ([]domain.Document, error)
}

type UseCase struct {
	tasks     TaskSource
	clients   ClientSource
	documents DocumentSource
	now       func() time.Time
	logger    *zap.Logger
}

func New(tasks TaskSource, clients ClientSource, documents DocumentSource, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		clients:   clients,
		documents: documents,
		now:       time.Now,
		logger:    logger,
	}
}

// Summary fetches the inputs of the requested view concurrently and aggregates
// once all of them have arrived.
func (uc *UseCase) Summary(ctx context.Context, owner domain.Identity, variant Variant) (*Summary, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if variant == "" {
		variant = VariantDashboard
	}
	cfg, ok := ConfigFor(variant)
	if !ok {
		return nil, domain.ValidationError(map[string]string{"view": "view must be one of: dashboard, analytics"})
	}

	var in Input
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, err := uc.tasks.All(gctx, owner)
		in.Tasks = tasks
		return err
	})
	g.Go(func() error {
		clients, err := uc.clients.All(gctx, owner)
		in.Clients = clients
		return err
	})
	if cfg.IncludeDocuments && uc.documents != nil {
		g.Go(func() error {
			docs, err := uc.documents.All(gctx, owner)
			in.Documents = docs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Warn("analytics inputs unavailable", zap.String("user_id", owner.UserID), zap.Error(err))
		return nil, err
	}

	summary := Compute(in, uc.now(), cfg)
	if summary.Skipped > 0 {
		uc.logger.Warn("tasks with unknown status or priority skipped",
			zap.String("user_id", owner.UserID),
			zap.Int("skipped", summary.Skipped))
	}
	return &summary, nil
}
