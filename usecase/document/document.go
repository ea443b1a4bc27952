package document

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/validation"
	"github.com/fastygo/compliance/repository"
	"github.com/fastygo/compliance/usecase/mutation"
	"github.com/fastygo/compliance/usecase/search"
)

// ObjectStore keeps uploaded file bodies.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

// KeyFunc derives the object key of a new upload.
type KeyFunc func(ownerID, fileName string) (string, error)

type UseCase struct {
	documents repository.DocumentRepository
	clients   repository.ClientRepository
	tasks     repository.TaskRepository
	objects   ObjectStore
	objectKey KeyFunc
	maxUpload int64
	pipeline  *mutation.Pipeline
	logger    *zap.Logger
}

type Options struct {
	Objects   ObjectStore
	ObjectKey KeyFunc
	MaxUpload int64
}

func New(documents repository.DocumentRepository, clients repository.ClientRepository, tasks repository.TaskRepository, pipeline *mutation.Pipeline, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipeline == nil {
		pipeline = mutation.New(nil, nil, logger)
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 25 << 20
	}
	return &UseCase{
		documents: documents,
		clients:   clients,
		tasks:     tasks,
		objects:   opts.Objects,
		objectKey: opts.ObjectKey,
		maxUpload: opts.MaxUpload,
		pipeline:  pipeline,
		logger:    logger,
	}
}

// ListQuery narrows the owner's documents.
type ListQuery struct {
	Search   string
	ClientID string
	TaskID   string
}

// Upload is a file body with the metadata to record for it.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	ClientID    *string
	TaskID      *string
	Description string
}

// Link is a time-limited download URL.
type Link struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (uc *UseCase) All(ctx context.Context, owner domain.Identity) ([]domain.Document, error) {
	return mutation.Load(ctx, uc.pipeline, owner, domain.EntityDocuments, func(ctx context.Context) ([]domain.Document, error) {
		return uc.documents.List(ctx, owner, repository.DocumentFilter{})
	})
}

func (uc *UseCase) List(ctx context.Context, owner domain.Identity, q ListQuery) ([]domain.Document, error) {
	rows, err := uc.All(ctx, owner)
	if err != nil {
		return nil, err
	}
	rows = search.Filter(rows, search.Query{Term: q.Search})
	out := rows[:0]
	for _, d := range rows {
		if q.ClientID != "" && (d.ClientID == nil || *d.ClientID != q.ClientID) {
			continue
		}
		if q.TaskID != "" && (d.TaskID == nil || *d.TaskID != q.TaskID) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (uc *UseCase) Get(ctx context.Context, owner domain.Identity, id string) (*domain.Document, error) {
	return uc.documents.GetByID(ctx, owner, id)
}

// Create records metadata for a file stored elsewhere.
func (uc *UseCase) Create(ctx context.Context, owner domain.Identity, submissionID string, doc *domain.Document) (mutation.Outcome[*domain.Document], error) {
	if doc == nil {
		return mutation.Outcome[*domain.Document]{}, domain.ErrInvalidPayload
	}
	doc.FileName = strings.TrimSpace(doc.FileName)
	doc.UploadedBy = owner.UserID

	op := mutation.Op{Entity: domain.EntityDocuments, Operation: domain.OperationCreate, SubmissionID: submissionID}
	return mutation.Execute(ctx, uc.pipeline, owner, op,
		func() error { return uc.validate(ctx, owner, doc) },
		func(ctx context.Context) (*domain.Document, error) {
			return uc.documents.Create(ctx, owner, doc)
		})
}

// Upload stores the body then records the row. The object is removed again
// when the row cannot be written.
func (uc *UseCase) Upload(ctx context.Context, owner domain.Identity, submissionID string, up Upload) (mutation.Outcome[*domain.Document], error) {
	var zero mutation.Outcome[*domain.Document]
	if uc.objects == nil || uc.objectKey == nil {
		return zero, domain.ErrNotConfigured
	}
	if up.Body == nil {
		return zero, domain.ValidationError(map[string]string{"file": "file is required"})
	}
	if up.Size > uc.maxUpload {
		return zero, domain.ValidationError(map[string]string{"file": "file is too large"})
	}

	size := up.Size
	doc := &domain.Document{
		ClientID:    up.ClientID,
		TaskID:      up.TaskID,
		FileName:    strings.TrimSpace(up.FileName),
		FileType:    up.ContentType,
		FileSize:    &size,
		Description: up.Description,
		UploadedBy:  owner.UserID,
		// placeholder so metadata validation passes before the object exists
		FileURL: "https://pending.invalid/upload",
	}

	op := mutation.Op{Entity: domain.EntityDocuments, Operation: domain.OperationCreate, SubmissionID: submissionID}
	return mutation.Execute(ctx, uc.pipeline, owner, op,
		func() error { return uc.validate(ctx, owner, doc) },
		func(ctx context.Context) (*domain.Document, error) {
			key, err := uc.objectKey(owner.UserID, doc.FileName)
			if err != nil {
				return nil, domain.WrapError(domain.ErrCodeInternal, "object key", err)
			}
			url, err := uc.objects.Put(ctx, key, up.Body, up.Size, up.ContentType)
			if err != nil {
				return nil, err
			}
			doc.FileURL = url
			doc.StorageKey = key

			created, err := uc.documents.Create(ctx, owner, doc)
			if err != nil {
				if delErr := uc.objects.Delete(context.WithoutCancel(ctx), key); delErr != nil {
					uc.logger.Error("orphaned upload", zap.String("key", key), zap.Error(delErr))
				}
				return nil, err
			}
			created.StorageKey = key
			return created, nil
		})
}

// Link returns a download link. Files outside the bucket keep their stored URL.
func (uc *UseCase) Link(ctx context.Context, owner domain.Identity, id string) (*Link, error) {
	doc, err := uc.documents.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if uc.objects == nil {
		return &Link{URL: doc.FileURL}, nil
	}
	key, ok := uc.objects.KeyFromURL(doc.FileURL)
	if !ok {
		return &Link{URL: doc.FileURL}, nil
	}
	url, expires, err := uc.objects.PresignGet(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Link{URL: url, ExpiresAt: expires}, nil
}

// Delete removes the row, then its stored object when the file lives in the bucket.
func (uc *UseCase) Delete(ctx context.Context, owner domain.Identity, id string) (mutation.Outcome[string], error) {
	op := mutation.Op{Entity: domain.EntityDocuments, Operation: domain.OperationDelete, RecordID: id}
	return mutation.Execute(ctx, uc.pipeline, owner, op, nil,
		func(ctx context.Context) (string, error) {
			doc, err := uc.documents.GetByID(ctx, owner, id)
			if err != nil {
				return "", err
			}
			if err := uc.documents.Delete(ctx, owner, id); err != nil {
				return "", err
			}
			if uc.objects != nil {
				if key, ok := uc.objects.KeyFromURL(doc.FileURL); ok {
					if err := uc.objects.Delete(context.WithoutCancel(ctx), key); err != nil {
						uc.logger.Warn("stored object not removed", zap.String("key", key), zap.Error(err))
					}
				}
			}
			return id, nil
		})
}

func (uc *UseCase) validate(ctx context.Context, owner domain.Identity, doc *domain.Document) error {
	if err := validation.Struct(doc); err != nil {
		return err
	}
	if doc.ClientID != nil && *doc.ClientID != "" {
		if _, err := uc.clients.GetByID(ctx, owner, *doc.ClientID); err != nil {
			return referenceError(err, "client_id", "Select one of your clients")
		}
	}
	if doc.TaskID != nil && *doc.TaskID != "" {
		if _, err := uc.tasks.GetByID(ctx, owner, *doc.TaskID); err != nil {
			return referenceError(err, "task_id", "Select one of your tasks")
		}
	}
	return nil
}

func referenceError(err error, field, msg string) error {
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return err
	}
	return &domain.Error{
		Code:    domain.ErrCodeNotFound,
		Message: strings.TrimSuffix(field, "_id") + " not found",
		Err:     err,
		Fields:  map[string]string{field: msg},
	}
}
