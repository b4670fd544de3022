package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries is the hand-written query layer over the pool. Method shapes
// follow the params-struct convention so call sites stay table-driven.
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Document struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Snapshot struct {
	ID         string
	DocumentID string
	Version    int32
	Document   []byte
	CreatedAt  time.Time
}

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, display_name, created_at`,
		arg.ID, arg.Email, arg.Password, arg.DisplayName)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

type CreateDocumentParams struct {
	ID      string
	Name    string
	OwnerID string
}

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO documents (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, owner_id, created_at, updated_at`,
		arg.ID, arg.Name, arg.OwnerID)
	return scanDocument(row)
}

func (q *Queries) GetDocument(ctx context.Context, id string) (Document, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (q *Queries) ListDocumentsForUser(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM documents WHERE owner_id = $1
		ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (q *Queries) DeleteDocument(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

func (q *Queries) TouchDocument(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `UPDATE documents SET updated_at = now() WHERE id = $1`, id)
	return err
}

type CreateSnapshotParams struct {
	ID         string
	DocumentID string
	Version    int32
	Document   []byte
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, document_id, version, document)
		VALUES ($1, $2, $3, $4)
		RETURNING id, document_id, version, document, created_at`,
		arg.ID, arg.DocumentID, arg.Version, arg.Document)
	return scanSnapshot(row)
}

func (q *Queries) GetLatestSnapshot(ctx context.Context, documentID string) (Snapshot, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT id, document_id, version, document, created_at
		FROM snapshots WHERE document_id = $1
		ORDER BY version DESC LIMIT 1`, documentID)
	return scanSnapshot(row)
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.DocumentID, &s.Version, &s.Document, &s.CreatedAt)
	return s, err
}
