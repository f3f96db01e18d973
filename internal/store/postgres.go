package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/harborline/shipdocs/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements it
// for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	filenames  JSONB NOT NULL,
	raw_text   TEXT NOT NULL DEFAULT '',
	record     JSONB NOT NULL,
	accuracy   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveDocument(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	filenamesJSON, recordJSON, accuracyJSON, err := marshalDocument(doc)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, filenames, raw_text, record, accuracy, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, filenamesJSON, doc.RawText, recordJSON, nullableString(accuracyJSON), now, now,
	)
	return eris.Wrap(err, "postgres: insert document")
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, filenames, raw_text, record, accuracy, created_at, updated_at
		 FROM documents WHERE id = $1`, id)
	return scanPgDocument(row)
}

func (s *PostgresStore) ListDocuments(ctx context.Context, filter DocumentFilter) ([]model.Document, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, filenames, raw_text, record, accuracy, created_at, updated_at
		 FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		d, err := scanPgDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}

func (s *PostgresStore) UpdateDocumentField(ctx context.Context, id, field string, value any) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	applyFieldUpdate(doc.Record, field, value)

	recordJSON, err := json.Marshal(doc.Record)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET record = $1, updated_at = $2 WHERE id = $3`,
		string(recordJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update document field %s", id)
	}
	return checkTag(tag, id)
}

func (s *PostgresStore) SaveAccuracy(ctx context.Context, id string, acc *model.DocumentAccuracy) error {
	accJSON, err := json.Marshal(acc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal accuracy")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET accuracy = $1, updated_at = $2 WHERE id = $3`,
		string(accJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save accuracy %s", id)
	}
	return checkTag(tag, id)
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete document %s", id)
	}
	return checkTag(tag, id)
}

func checkTag(tag pgconn.CommandTag, id string) error {
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s", id)
	}
	return nil
}

func nullableString(s sql.NullString) any {
	if s.Valid {
		return s.String
	}
	return nil
}

func scanPgDocument(row pgx.Row) (*model.Document, error) {
	var d model.Document
	var filenamesJSON, recordJSON string
	var accuracyJSON *string

	err := row.Scan(&d.ID, &filenamesJSON, &d.RawText, &recordJSON, &accuracyJSON, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan document")
	}

	if err := json.Unmarshal([]byte(filenamesJSON), &d.Filenames); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal filenames")
	}
	d.Record = &model.ExtractionRecord{}
	if err := json.Unmarshal([]byte(recordJSON), d.Record); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal record")
	}
	if accuracyJSON != nil {
		d.Accuracy = &model.DocumentAccuracy{}
		if err := json.Unmarshal([]byte(*accuracyJSON), d.Accuracy); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal accuracy")
		}
	}
	return &d, nil
}
