package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
)

func TestInsertClause_SortsColumnsAndLowersEnums(t *testing.T) {
	client := &domain.Client{Name: "Acme", Email: "ops@acme.test", Status: domain.ClientPending}
	cols := client.Columns()
	cols["user_id"] = "owner-1"

	clause, args := insertClause(cols)

	assert.Equal(t,
		"(address, contact_person, email, name, phone, status, user_id) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		clause)
	assert.Equal(t, []interface{}{nil, nil, "ops@acme.test", "Acme", nil, "pending", "owner-1"}, args)
}

func TestSetClause_NumbersAfterOwnerScope(t *testing.T) {
	name := "Beta"
	status := domain.ClientInactive
	cols := domain.ClientPatch{Name: &name, Status: &status}.Columns()

	set, args := setClause(cols, 3)

	// $1 and $2 are reserved for the record id and the owner
	assert.Equal(t, "name = $3, status = $4", set)
	assert.Equal(t, []interface{}{"Beta", "inactive"}, args)

	query := `UPDATE clients SET ` + set + ` WHERE id = $1 AND user_id = $2`
	all := append([]interface{}{"c1", "owner-1"}, args...)
	assert.Equal(t, 4, len(all))
	for i := range all {
		assert.Contains(t, query, fmt.Sprintf("$%d", i+1))
	}
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-5))
	assert.Equal(t, 25, limitArg(25))
	assert.Equal(t, 1000, limitArg(5000))
}

func TestMapError(t *testing.T) {
	notFound := domain.ErrClientNotFound

	tests := []struct {
		name string
		err  error
		code domain.ErrorCode
	}{
		{name: "no rows", err: pgx.ErrNoRows, code: domain.ErrCodeNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, code: domain.ErrCodeConflict},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, code: domain.ErrCodeValidation},
		{name: "bad uuid", err: &pgconn.PgError{Code: "22P02"}, code: domain.ErrCodeValidation},
		{name: "rls", err: &pgconn.PgError{Code: "42501"}, code: domain.ErrCodeUnauthorized},
		{name: "network", err: errors.New("connection reset"), code: domain.ErrCodeTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err, notFound)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, tt.code), "got %v", err)
		})
	}

	assert.NoError(t, mapError(nil, notFound))
	assert.Same(t, notFound, mapError(pgx.ErrNoRows, notFound))
}

type recordingExecer struct {
	sql  string
	args []interface{}
	err  error
}

func (e *recordingExecer) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	e.sql = sql
	e.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), e.err
}

func TestEnsureProfile_InsertsOwnerWithoutOverwriting(t *testing.T) {
	db := &recordingExecer{}
	owner := domain.Identity{UserID: "owner-1", FullName: "Ada", Email: "ada@example.test"}

	require.NoError(t, ensureProfile(context.Background(), db, owner))

	assert.Contains(t, db.sql, "INSERT INTO profiles")
	assert.Contains(t, db.sql, "ON CONFLICT (id) DO NOTHING")
	assert.Equal(t, []interface{}{"owner-1", "Ada", ""}, db.args)
}

func TestEnsureProfile_RejectsAnonymousAndMapsErrors(t *testing.T) {
	db := &recordingExecer{}
	err := ensureProfile(context.Background(), db, domain.Identity{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Empty(t, db.sql)

	db.err = errors.New("connection refused")
	err = ensureProfile(context.Background(), db, domain.Identity{UserID: "owner-1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
}
