package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fastygo/compliance/domain"
	sb "github.com/fastygo/compliance/internal/infrastructure/supabase"
)

// table issues owner-scoped PostgREST calls against one remote table.
type table[T any] struct {
	client   *sb.Client
	entity   domain.Entity
	columns  string
	ownerCol string
	notFound error
}

func eq(value string) string {
	return "eq." + value
}

func requireOwner(owner domain.Identity) error {
	if !owner.Valid() {
		return domain.ErrUnauthorized
	}
	return nil
}

func (t table[T]) scoped(owner domain.Identity) url.Values {
	q := url.Values{}
	q.Set(t.ownerCol, eq(owner.UserID))
	q.Set("select", t.columns)
	return q
}

func (t table[T]) list(ctx context.Context, owner domain.Identity, q url.Values, limit, offset int) ([]T, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	query := t.scoped(owner)
	for k, vs := range q {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	rows := make([]T, 0)
	err := t.client.Rest(ctx, sb.Request{
		Method: http.MethodGet,
		Table:  t.entity,
		Query:  query,
		Token:  owner.AccessToken,
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t table[T]) get(ctx context.Context, owner domain.Identity, id string) (*T, error) {
	if id == "" {
		return nil, t.notFound
	}
	rows, err := t.list(ctx, owner, url.Values{"id": {eq(id)}}, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, t.notFound
	}
	return &rows[0], nil
}

func (t table[T]) insert(ctx context.Context, owner domain.Identity, cols map[string]interface{}) (*T, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	cols[t.ownerCol] = owner.UserID

	var rows []T
	err := t.client.Rest(ctx, sb.Request{
		Method: http.MethodPost,
		Table:  t.entity,
		Query:  url.Values{"select": {t.columns}},
		Body:   cols,
		Token:  owner.AccessToken,
		Prefer: sb.PreferRepresentation,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NewError(domain.ErrCodeTransport, "insert returned no representation")
	}
	return &rows[0], nil
}

func (t table[T]) update(ctx context.Context, owner domain.Identity, id string, cols map[string]interface{}) (*T, error) {
	if len(cols) == 0 {
		return t.get(ctx, owner, id)
	}
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	// the owner column can never be reassigned through a patch
	delete(cols, t.ownerCol)
	cols["updated_at"] = time.Now().UTC()

	query := t.scoped(owner)
	query.Set("id", eq(id))

	var rows []T
	err := t.client.Rest(ctx, sb.Request{
		Method: http.MethodPatch,
		Table:  t.entity,
		Query:  query,
		Body:   cols,
		Token:  owner.AccessToken,
		Prefer: sb.PreferRepresentation,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, t.notFound
	}
	return &rows[0], nil
}

func (t table[T]) delete(ctx context.Context, owner domain.Identity, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	query := url.Values{}
	query.Set(t.ownerCol, eq(owner.UserID))
	query.Set("id", eq(id))
	query.Set("select", "id")

	var rows []struct {
		ID string `json:"id"`
	}
	err := t.client.Rest(ctx, sb.Request{
		Method: http.MethodDelete,
		Table:  t.entity,
		Query:  query,
		Token:  owner.AccessToken,
		Prefer: sb.PreferRepresentation,
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return t.notFound
	}
	return nil
}
