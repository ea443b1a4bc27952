package client

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/internal/infrastructure/boltstore"
	"github.com/fastygo/compliance/repository"
	boltcache "github.com/fastygo/compliance/repository/bolt"
	"github.com/fastygo/compliance/usecase/mutation"
)

type memoryClients struct {
	mu      sync.Mutex
	rows    []domain.Client
	seq     int
	creates int
}

func (m *memoryClients) List(_ context.Context, owner domain.Identity, _ repository.ClientFilter) ([]domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Client{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == owner.UserID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memoryClients) GetByID(_ context.Context, owner domain.Identity, id string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.ID == id && c.UserID == owner.UserID {
			c := c
			return &c, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (m *memoryClients) Create(_ context.Context, owner domain.Identity, client *domain.Client) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.creates++
	row := *client
	row.ID = fmt.Sprintf("c%d", m.seq)
	row.UserID = owner.UserID
	row.CreatedAt = time.Now()
	m.rows = append(m.rows, row)
	return &row, nil
}

func (m *memoryClients) Update(_ context.Context, owner domain.Identity, id string, patch domain.ClientPatch) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == owner.UserID {
			patch.Apply(&m.rows[i])
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (m *memoryClients) Delete(_ context.Context, owner domain.Identity, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == owner.UserID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrClientNotFound
}

var (
	alice = domain.Identity{UserID: "alice"}
	bob   = domain.Identity{UserID: "bob"}
)

func newUseCase(t *testing.T) (*UseCase, *memoryClients) {
	t.Helper()
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "cache.db"), "lists")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo := &memoryClients{}
	pipeline := mutation.New(boltcache.NewListCache(store, time.Minute), nil, nil)
	return New(repo, pipeline, nil), repo
}

func str(s string) *string { return &s }

func TestCreateThenListRoundTrip(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	// warm the cache so the create has something to invalidate
	rows, err := uc.List(ctx, alice, ListQuery{Status: domain.StatusAll})
	require.NoError(t, err)
	assert.Empty(t, rows)

	out, err := uc.Create(ctx, alice, "", &domain.Client{Name: "Acme", Status: domain.ClientActive})
	require.NoError(t, err)
	assert.True(t, out.ResetForm)
	require.NotNil(t, out.Notification)
	assert.Equal(t, "Client created successfully!", out.Notification.Message)

	rows, err = uc.List(ctx, alice, ListQuery{Status: domain.StatusAll})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Name)
	assert.Equal(t, domain.ClientActive, rows[0].Status)

	others, err := uc.List(ctx, bob, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestCreateDefaultsStatusToActive(t *testing.T) {
	uc, _ := newUseCase(t)
	out, err := uc.Create(context.Background(), alice, "", &domain.Client{Name: "  Initech  "})
	require.NoError(t, err)
	assert.Equal(t, domain.ClientActive, out.Value.Status)
	assert.Equal(t, "Initech", out.Value.Name)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		client domain.Client
		field  string
	}{
		{name: "empty name", client: domain.Client{Name: "", Status: domain.ClientActive}, field: "name"},
		{name: "blank name", client: domain.Client{Name: "   ", Status: domain.ClientActive}, field: "name"},
		{name: "unknown status", client: domain.Client{Name: "Acme", Status: "archived"}, field: "status"},
		{name: "bad email", client: domain.Client{Name: "Acme", Email: "not-an-email"}, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo := newUseCase(t)
			client := tt.client
			out, err := uc.Create(context.Background(), alice, "", &client)

			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
			assert.Contains(t, domain.FieldsOf(err), tt.field)
			assert.False(t, out.ResetForm)
			assert.Zero(t, repo.creates)
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, alice, "", &domain.Client{Name: "Globex"})
	require.NoError(t, err)
	id := created.Value.ID

	_, err = uc.List(ctx, alice, ListQuery{})
	require.NoError(t, err)

	status := domain.ClientInactive
	updated, err := uc.Update(ctx, alice, id, domain.ClientPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.ClientInactive, updated.Value.Status)

	rows, err := uc.List(ctx, alice, ListQuery{Status: string(domain.ClientInactive)})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = uc.Update(ctx, alice, id, domain.ClientPatch{Name: str(" ")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))

	_, err = uc.Delete(ctx, bob, id)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)

	deleted, err := uc.Delete(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Client deleted successfully!", deleted.Notification.Message)

	rows, err = uc.List(ctx, alice, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListActiveSortedByName(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	for _, c := range []domain.Client{
		{Name: "zeta", Status: domain.ClientActive},
		{Name: "Alpha", Status: domain.ClientActive},
		{Name: "Mid", Status: domain.ClientPending},
		{Name: "beta", Status: domain.ClientActive},
	} {
		c := c
		_, err := uc.Create(ctx, alice, "", &c)
		require.NoError(t, err)
	}

	rows, err := uc.ListActive(ctx, alice)
	require.NoError(t, err)
	var names []string
	for _, c := range rows {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, names)
}
