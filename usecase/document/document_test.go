package document

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

type MockDocumentRepository struct{ mock.Mock }

func (m *MockDocumentRepository) List(ctx context.Context, owner domain.Identity, filter repository.DocumentFilter) ([]domain.Document, error) {
	args := m.Called(ctx, owner, filter)
	rows, _ := args.Get(0).([]domain.Document)
	return rows, args.Error(1)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Document, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, owner domain.Identity, doc *domain.Document) (*domain.Document, error) {
	args := m.Called(ctx, owner, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	return m.Called(ctx, owner, id).Error(0)
}

type MockObjectStore struct{ mock.Mock }

func (m *MockObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStore) KeyFromURL(rawURL string) (string, bool) {
	if strings.HasPrefix(rawURL, "https://bucket.test/") {
		return strings.TrimPrefix(rawURL, "https://bucket.test/"), true
	}
	return "", false
}

var owner = domain.Identity{UserID: "owner-1"}

func fixedKey(ownerID, name string) (string, error) {
	return "documents/" + ownerID + "/k1/" + name, nil
}

func newUseCase(docs *MockDocumentRepository, objects *MockObjectStore) *UseCase {
	return New(docs, nil, nil, nil, Options{Objects: objects, ObjectKey: fixedKey, MaxUpload: 1024}, nil)
}

func TestUploadStoresObjectThenRow(t *testing.T) {
	docs, objects := new(MockDocumentRepository), new(MockObjectStore)
	key := "documents/owner-1/k1/report.pdf"
	objects.On("Put", mock.Anything, key, mock.Anything, int64(4), "application/pdf").Return("https://bucket.test/"+key, nil)
	docs.On("Create", mock.Anything, owner, mock.MatchedBy(func(d *domain.Document) bool {
		return d.FileURL == "https://bucket.test/"+key && d.UploadedBy == owner.UserID && *d.FileSize == 4
	})).Return(&domain.Document{ID: "d1", FileName: "report.pdf", FileURL: "https://bucket.test/" + key}, nil)

	out, err := newUseCase(docs, objects).Upload(context.Background(), owner, "", Upload{
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Size:        4,
		Body:        strings.NewReader("%PDF"),
	})

	require.NoError(t, err)
	assert.Equal(t, "d1", out.Value.ID)
	assert.Equal(t, key, out.Value.StorageKey)
	assert.Equal(t, "Document created successfully!", out.Notification.Message)
	objects.AssertExpectations(t)
	docs.AssertExpectations(t)
}

func TestUploadRemovesObjectWhenRowFails(t *testing.T) {
	docs, objects := new(MockDocumentRepository), new(MockObjectStore)
	key := "documents/owner-1/k1/a.txt"
	objects.On("Put", mock.Anything, key, mock.Anything, int64(1), "text/plain").Return("https://bucket.test/"+key, nil)
	objects.On("Delete", mock.Anything, key).Return(nil)
	docs.On("Create", mock.Anything, owner, mock.Anything).
		Return(nil, domain.WrapError(domain.ErrCodeTransport, "remote service unavailable", errors.New("eof")))

	out, err := newUseCase(docs, objects).Upload(context.Background(), owner, "", Upload{
		FileName: "a.txt", ContentType: "text/plain", Size: 1, Body: strings.NewReader("x"),
	})

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
	assert.False(t, out.ResetForm)
	objects.AssertCalled(t, "Delete", mock.Anything, key)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	docs, objects := new(MockDocumentRepository), new(MockObjectStore)
	_, err := newUseCase(docs, objects).Upload(context.Background(), owner, "", Upload{
		FileName: "big.bin", Size: 4096, Body: strings.NewReader(""),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	objects.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateMetadataValidation(t *testing.T) {
	docs := new(MockDocumentRepository)
	_, err := newUseCase(docs, nil).Create(context.Background(), owner, "", &domain.Document{FileName: "", FileURL: "nope"})
	require.Error(t, err)
	fields := domain.FieldsOf(err)
	assert.Contains(t, fields, "file_name")
	assert.Contains(t, fields, "file_url")
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestLink(t *testing.T) {
	docs, objects := new(MockDocumentRepository), new(MockObjectStore)
	expires := time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC)
	docs.On("GetByID", mock.Anything, owner, "ours").Return(&domain.Document{ID: "ours", FileURL: "https://bucket.test/documents/o/k/a.pdf"}, nil)
	docs.On("GetByID", mock.Anything, owner, "external").Return(&domain.Document{ID: "external", FileURL: "https://drive.example.com/a.pdf"}, nil)
	objects.On("PresignGet", mock.Anything, "documents/o/k/a.pdf").Return("https://bucket.test/signed", expires, nil)

	uc := newUseCase(docs, objects)

	link, err := uc.Link(context.Background(), owner, "ours")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.test/signed", link.URL)
	assert.Equal(t, expires, link.ExpiresAt)

	link, err = uc.Link(context.Background(), owner, "external")
	require.NoError(t, err)
	assert.Equal(t, "https://drive.example.com/a.pdf", link.URL)
	assert.True(t, link.ExpiresAt.IsZero())
}

func TestDeleteRemovesStoredObject(t *testing.T) {
	docs, objects := new(MockDocumentRepository), new(MockObjectStore)
	docs.On("GetByID", mock.Anything, owner, "d1").Return(&domain.Document{ID: "d1", FileURL: "https://bucket.test/documents/o/k/a.pdf"}, nil)
	docs.On("Delete", mock.Anything, owner, "d1").Return(nil)
	objects.On("Delete", mock.Anything, "documents/o/k/a.pdf").Return(nil)

	out, err := newUseCase(docs, objects).Delete(context.Background(), owner, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", out.Value)
	objects.AssertExpectations(t)
}

func TestListFilters(t *testing.T) {
	docs := new(MockDocumentRepository)
	c1, t1 := "c1", "t1"
	docs.On("List", mock.Anything, owner, repository.DocumentFilter{}).Return([]domain.Document{
		{ID: "a", FileName: "Contract.pdf", ClientID: &c1},
		{ID: "b", FileName: "contract-v2.pdf", TaskID: &t1},
		{ID: "c", FileName: "invoice.pdf", ClientID: &c1},
	}, nil)

	uc := newUseCase(docs, nil)
	rows, err := uc.List(context.Background(), owner, ListQuery{Search: "contract", ClientID: "c1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].ID)
}
