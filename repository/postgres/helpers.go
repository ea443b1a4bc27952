package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/compliance/domain"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

const ensureProfileQuery = `
	INSERT INTO profiles (id, full_name, avatar_url)
	VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
	ON CONFLICT (id) DO NOTHING
	`

// ensureProfile creates the owner's profile row on first write so the
// user_id foreign keys hold. Existing profiles are left untouched.
func ensureProfile(ctx context.Context, db execer, owner domain.Identity) error {
	if !owner.Valid() {
		return domain.ErrUnauthorized
	}
	_, err := db.Exec(ctx, ensureProfileQuery, owner.UserID, owner.FullName, owner.AvatarURL)
	return mapError(err, domain.ErrProfileNotFound)
}

// limitArg returns nil (LIMIT ALL) for non-positive limits and caps the rest.
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// dbValue lowers typed domain values to their wire form.
func dbValue(v interface{}) interface{} {
	switch val := v.(type) {
	case domain.ClientStatus:
		return string(val)
	case domain.TaskStatus:
		return string(val)
	case domain.TaskPriority:
		return string(val)
	default:
		return v
	}
}

func sortedColumns(cols map[string]interface{}) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// insertClause renders "(a, b) VALUES ($1, $2)" for cols.
func insertClause(cols map[string]interface{}) (string, []interface{}) {
	names := sortedColumns(cols)
	holders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		holders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = dbValue(cols[name])
	}
	return fmt.Sprintf("(%s) VALUES (%s)", strings.Join(names, ", "), strings.Join(holders, ", ")), args
}

// setClause renders "a = $n, b = $n+1" starting at placeholder start.
func setClause(cols map[string]interface{}, start int) (string, []interface{}) {
	names := sortedColumns(cols)
	parts := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s = $%d", name, start+i)
		args[i] = dbValue(cols[name])
	}
	return strings.Join(parts, ", "), args
}

// mapError classifies driver errors; notFound is returned for pgx.ErrNoRows.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.WrapError(domain.ErrCodeConflict, "record already exists", err)
		case "23502", "23503", "23514", "22P02", "22007", "22008":
			return domain.WrapError(domain.ErrCodeValidation, "rejected by database", err)
		case "42501":
			return domain.WrapError(domain.ErrCodeUnauthorized, "not authorized", err)
		}
	}
	return domain.WrapError(domain.ErrCodeTransport, "database error", err)
}
