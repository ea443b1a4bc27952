package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

const documentColumns = `id, user_id, client_id, task_id, file_name, file_url, file_size, file_type, description, uploaded_by, created_at`

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository returns a Postgres-backed implementation of DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool) repository.DocumentRepository {
	return &documentRepository{pool: pool}
}

func (r *documentRepository) GetByID(ctx context.Context, owner domain.Identity, id string) (*domain.Document, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2`
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, id, owner.UserID))
	return doc, mapError(err, domain.ErrDocumentNotFound)
}

func (r *documentRepository) List(ctx context.Context, owner domain.Identity, filter repository.DocumentFilter) ([]domain.Document, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	query := `
	SELECT ` + documentColumns + `
	FROM documents
	WHERE user_id = $1
	  AND ($2 = '' OR client_id::text = $2)
	  AND ($3 = '' OR task_id::text = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, owner.UserID, filter.ClientID, filter.TaskID, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, mapError(err, domain.ErrDocumentNotFound)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, mapError(err, domain.ErrDocumentNotFound)
		}
		docs = append(docs, *doc)
	}
	return docs, mapError(rows.Err(), domain.ErrDocumentNotFound)
}

func (r *documentRepository) Create(ctx context.Context, owner domain.Identity, doc *domain.Document) (*domain.Document, error) {
	if doc == nil {
		return nil, domain.ErrInvalidPayload
	}
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if err := ensureProfile(ctx, r.pool, owner); err != nil {
		return nil, err
	}
	cols := doc.Columns()
	cols["user_id"] = owner.UserID

	values, args := insertClause(cols)
	query := `INSERT INTO documents ` + values + ` RETURNING ` + documentColumns
	created, err := scanDocument(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, domain.ErrDocumentNotFound)
	}
	created.StorageKey = doc.StorageKey
	return created, nil
}

func (r *documentRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	if !owner.Valid() {
		return domain.ErrUnauthorized
	}
	const query = `DELETE FROM documents WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, owner.UserID)
	if err != nil {
		return mapError(err, domain.ErrDocumentNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row scanner) (*domain.Document, error) {
	var (
		doc                   domain.Document
		fileType, description *string
	)
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.ClientID,
		&doc.TaskID,
		&doc.FileName,
		&doc.FileURL,
		&doc.FileSize,
		&fileType,
		&description,
		&doc.UploadedBy,
		&doc.CreatedAt,
	); err != nil {
		return nil, err
	}
	doc.FileType = text(fileType)
	doc.Description = text(description)
	return &doc, nil
}
