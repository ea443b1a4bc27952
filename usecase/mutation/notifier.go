package mutation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	appLogger "github.com/fastygo/compliance/pkg/logger"
)

// Notifier delivers mutation outcomes to the owner.
type Notifier interface {
	Notify(ctx context.Context, owner domain.Identity, n domain.Notification) error
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, owner domain.Identity, note domain.Notification) error {
	fields := []zap.Field{
		zap.String("user_id", owner.UserID),
		zap.String("entity", string(note.Entity)),
		zap.String("operation", string(note.Operation)),
		zap.String("message", note.Message),
	}
	log := appLogger.FromContext(ctx, n.logger)
	if note.Kind == domain.NotificationError {
		log.Warn("mutation notification", fields...)
		return nil
	}
	log.Info("mutation notification", fields...)
	return nil
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, owner domain.Identity, n domain.Notification) error {
	var errs []error
	for _, notifier := range f {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, owner, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
