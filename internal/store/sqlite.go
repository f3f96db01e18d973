package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/harborline/shipdocs/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	filenames  TEXT NOT NULL,
	raw_text   TEXT NOT NULL DEFAULT '',
	record     TEXT NOT NULL,
	accuracy   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *model.Document) error {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filenames, raw_text, record, accuracy, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, filenamesJSON, doc.RawText, recordJSON, accuracyJSON, now, now,
	)
	return eris.Wrap(err, "sqlite: insert document")
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filenames, raw_text, record, accuracy, created_at, updated_at
		 FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, filter DocumentFilter) ([]model.Document, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, filenames, raw_text, record, accuracy, created_at, updated_at
	          FROM documents ORDER BY created_at DESC LIMIT ?`
	args := []any{limit}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}

func (s *SQLiteStore) UpdateDocumentField(ctx context.Context, id, field string, value any) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	applyFieldUpdate(doc.Record, field, value)

	recordJSON, err := json.Marshal(doc.Record)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET record = ?, updated_at = ? WHERE id = ?`,
		string(recordJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update document field %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) SaveAccuracy(ctx context.Context, id string, acc *model.DocumentAccuracy) error {
	accJSON, err := json.Marshal(acc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal accuracy")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET accuracy = ?, updated_at = ? WHERE id = ?`,
		string(accJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save accuracy %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete document %s", id)
	}
	return checkRowsAffected(res, id)
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s", id)
	}
	return nil
}

// applyFieldUpdate overwrites one field's value, keeping its provenance when
// the field already exists.
func applyFieldUpdate(record *model.ExtractionRecord, field string, value any) {
	if record.Fields == nil {
		record.Fields = make(map[string]model.FieldValue)
	}
	fv := record.Fields[field]
	fv.Value = value
	if fv.Source == "" {
		fv.Source = model.SourceNone
	}
	record.Fields[field] = fv
}

func marshalDocument(doc *model.Document) (filenames, record string, accuracy sql.NullString, err error) {
	f, err := json.Marshal(doc.Filenames)
	if err != nil {
		return "", "", sql.NullString{}, eris.Wrap(err, "store: marshal filenames")
	}
	r, err := json.Marshal(doc.Record)
	if err != nil {
		return "", "", sql.NullString{}, eris.Wrap(err, "store: marshal record")
	}
	var acc sql.NullString
	if doc.Accuracy != nil {
		a, err := json.Marshal(doc.Accuracy)
		if err != nil {
			return "", "", sql.NullString{}, eris.Wrap(err, "store: marshal accuracy")
		}
		acc = sql.NullString{String: string(a), Valid: true}
	}
	return string(f), string(r), acc, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*model.Document, error) {
	var d model.Document
	var filenamesJSON, recordJSON string
	var accuracyJSON sql.NullString

	err := row.Scan(&d.ID, &filenamesJSON, &d.RawText, &recordJSON, &accuracyJSON, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan document")
	}

	if err := json.Unmarshal([]byte(filenamesJSON), &d.Filenames); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal filenames")
	}
	d.Record = &model.ExtractionRecord{}
	if err := json.Unmarshal([]byte(recordJSON), d.Record); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal record")
	}
	if accuracyJSON.Valid {
		d.Accuracy = &model.DocumentAccuracy{}
		if err := json.Unmarshal([]byte(accuracyJSON.String), d.Accuracy); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal accuracy")
		}
	}
	return &d, nil
}
