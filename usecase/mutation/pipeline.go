// Package mutation coordinates writes through a gateway with list cache
// invalidation and user notifications.
package mutation

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/compliance/domain"
	appLogger "github.com/fastygo/compliance/pkg/logger"
	"github.com/fastygo/compliance/repository"
)

// Op describes one write.
type Op struct {
	Entity    domain.Entity
	Operation domain.Operation
	// RecordID is the target row of an update or delete.
	RecordID string
	// SubmissionID identifies a client form submission; repeated submissions
	// with the same id while one is in flight share its result.
	SubmissionID string
}

// formKey returns the in-flight dedupe key, empty when the op cannot be keyed.
func (o Op) formKey(owner domain.Identity) string {
	id := o.SubmissionID
	if id == "" && o.Operation != domain.OperationCreate {
		id = o.RecordID
	}
	if id == "" {
		return ""
	}
	return strings.Join([]string{owner.UserID, string(o.Entity), string(o.Operation), id}, "|")
}

// Outcome is what the submitting form receives.
type Outcome[T any] struct {
	Value        T                    `json:"value"`
	Notification *domain.Notification `json:"notification,omitempty"`
	// ResetForm tells the caller to close and clear the form.
	ResetForm bool `json:"reset_form"`
}

// Pipeline runs mutations and owns the list cache they invalidate.
type Pipeline struct {
	cache    repository.ListCache
	notifier Notifier
	logger   *zap.Logger
	inflight singleflight.Group
}

func New(cache repository.ListCache, notifier Notifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = repository.NopListCache{}
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Pipeline{cache: cache, notifier: notifier, logger: logger}
}

// Cache exposes the list cache for read-through loaders.
func (p *Pipeline) Cache() repository.ListCache {
	return p.cache
}

// Dependents lists the entity lists that embed or cascade from entity and go
// stale after op.
func Dependents(entity domain.Entity, op domain.Operation) []domain.Entity {
	switch entity {
	case domain.EntityClients:
		switch op {
		case domain.OperationUpdate:
			// task rows embed the client name
			return []domain.Entity{domain.EntityTasks}
		case domain.OperationDelete:
			return []domain.Entity{domain.EntityTasks, domain.EntityDocuments}
		}
	case domain.EntityTasks:
		if op == domain.OperationDelete {
			return []domain.Entity{domain.EntityDocuments}
		}
	}
	return nil
}

// Execute validates locally, issues call and applies the success or failure
// policy. validate may be nil. A ValidationRejected error from validate only
// carries inline field messages; any other error from it (a remote lookup
// made while validating) is handled like a failed call.
func Execute[T any](ctx context.Context, p *Pipeline, owner domain.Identity, op Op, validate func() error, call func(context.Context) (T, error)) (Outcome[T], error) {
	var zero Outcome[T]
	if !owner.Valid() {
		return zero, domain.ErrUnauthorized
	}

	log := appLogger.FromContext(ctx, p.logger).With(
		zap.String("user_id", owner.UserID),
		zap.String("entity", string(op.Entity)),
		zap.String("operation", string(op.Operation)),
	)

	if validate != nil {
		if err := validate(); err != nil {
			if domain.IsDomainError(err, domain.ErrCodeValidation) {
				// the gateway is never reached
				return zero, err
			}
			return failed[T](ctx, p, log, owner, op, true, err)
		}
	}

	var (
		value  T
		err    error
		leader = true
	)
	if key := op.formKey(owner); key != "" {
		leader = false
		var v interface{}
		v, err, _ = p.inflight.Do(key, func() (interface{}, error) {
			leader = true
			return call(ctx)
		})
		value, _ = v.(T)
	} else {
		value, err = call(ctx)
	}

	if err != nil {
		return failed[T](ctx, p, log, owner, op, leader, err)
	}

	if leader {
		p.invalidate(ctx, log, owner, op)
	}

	out := Outcome[T]{Value: value, ResetForm: true}
	if ctx.Err() != nil {
		// the caller is gone; nobody is left to show the notification
		log.Debug("mutation completed after cancellation")
		return out, nil
	}
	note := domain.SuccessNotification(op.Entity, op.Operation)
	out.Notification = &note
	if leader {
		p.notify(ctx, log, owner, note)
	}
	return out, nil
}

// failed applies the failure policy: the form keeps its input and the caller
// gets a failure notification, published once by the leader.
func failed[T any](ctx context.Context, p *Pipeline, log *zap.Logger, owner domain.Identity, op Op, leader bool, err error) (Outcome[T], error) {
	log.Warn("mutation failed", zap.Error(err))
	if ctx.Err() != nil {
		return Outcome[T]{}, err
	}
	note := domain.FailureNotification(op.Entity, op.Operation)
	if leader {
		p.notify(ctx, log, owner, note)
	}
	return Outcome[T]{Notification: &note}, err
}

func (p *Pipeline) invalidate(ctx context.Context, log *zap.Logger, owner domain.Identity, op Op) {
	keys := []repository.CacheKey{{Entity: op.Entity, OwnerID: owner.UserID}}
	for _, dep := range Dependents(op.Entity, op.Operation) {
		keys = append(keys, repository.CacheKey{Entity: dep, OwnerID: owner.UserID})
	}
	if err := p.cache.Invalidate(context.WithoutCancel(ctx), keys...); err != nil {
		log.Error("list cache invalidation failed", zap.Error(err))
	}
}

func (p *Pipeline) notify(ctx context.Context, log *zap.Logger, owner domain.Identity, note domain.Notification) {
	if err := p.notifier.Notify(ctx, owner, note); err != nil {
		log.Warn("notification delivery failed", zap.Error(err))
	}
}
