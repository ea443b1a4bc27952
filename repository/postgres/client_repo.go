package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

const clientColumns = `id, user_id, name, contact_person, email, phone, address, status, created_at, updated_at`

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a Postgres-backed implementation of ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) repository.ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Client, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND user_id = $2`
	client, err := scanClient(r.pool.QueryRow(ctx, query, id, owner.UserID))
	return client, mapError(err, domain.ErrClientNotFound)
}

func (r *clientRepository) List(ctx context.Context, owner domain.Identity, filter repository.ClientFilter) ([]domain.Client, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	order := "created_at DESC"
	if filter.OrderBy == repository.OrderNameAsc {
		order = "name ASC"
	}
	status := filter.Status
	if status == domain.StatusAll {
		status = ""
	}

	query := fmt.Sprintf(`
	SELECT %s
	FROM clients
	WHERE user_id = $1
	  AND ($2 = '' OR status = $2)
	ORDER BY %s
	LIMIT $3 OFFSET $4
	`, clientColumns, order)

	rows, err := r.pool.Query(ctx, query, owner.UserID, status, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, mapError(err, domain.ErrClientNotFound)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, mapError(err, domain.ErrClientNotFound)
		}
		clients = append(clients, *client)
	}
	return clients, mapError(rows.Err(), domain.ErrClientNotFound)
}

func (r *clientRepository) Create(ctx context.Context, owner domain.Identity, client *domain.Client) (*domain.Client, error) {
	if client == nil {
		return nil, domain.ErrInvalidPayload
	}
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if err := ensureProfile(ctx, r.pool, owner); err != nil {
		return nil, err
	}
	cols := client.Columns()
	cols["user_id"] = owner.UserID

	values, args := insertClause(cols)
	query := `INSERT INTO clients ` + values + ` RETURNING ` + clientColumns
	created, err := scanClient(r.pool.QueryRow(ctx, query, args...))
	return created, mapError(err, domain.ErrClientNotFound)
}

func (r *clientRepository) Update(ctx context.Context, owner domain.Identity, id string, patch domain.ClientPatch) (*domain.Client, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return r.GetByID(ctx, owner, id)
	}
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	delete(cols, "user_id")

	set, args := setClause(cols, 3)
	query := `UPDATE clients SET ` + set + `, updated_at = NOW() WHERE id = $1 AND user_id = $2 RETURNING ` + clientColumns
	updated, err := scanClient(r.pool.QueryRow(ctx, query, append([]interface{}{id, owner.UserID}, args...)...))
	return updated, mapError(err, domain.ErrClientNotFound)
}

func (r *clientRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	if !owner.Valid() {
		return domain.ErrUnauthorized
	}
	const query = `DELETE FROM clients WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, owner.UserID)
	if err != nil {
		return mapError(err, domain.ErrClientNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func scanClient(row scanner) (*domain.Client, error) {
	var (
		client                                 domain.Client
		contact, email, phone, address, status *string
	)
	if err := row.Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&contact,
		&email,
		&phone,
		&address,
		&status,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	client.ContactPerson = text(contact)
	client.Email = text(email)
	client.Phone = text(phone)
	client.Address = text(address)
	client.Status = domain.ClientStatus(text(status))
	return &client, nil
}
