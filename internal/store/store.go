// Package store persists processed documents and their accuracy results.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/harborline/shipdocs/internal/model"
)

// DocumentFilter specifies criteria for listing documents.
type DocumentFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for processed documents.
type Store interface {
	SaveDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]model.Document, error)
	UpdateDocumentField(ctx context.Context, id, field string, value any) error
	SaveAccuracy(ctx context.Context, id string, acc *model.DocumentAccuracy) error
	DeleteDocument(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound is returned when a document id has no row.
var ErrNotFound = eris.New("store: document not found")

// Open builds a Store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(databaseURL)
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	}
	return nil, eris.Errorf("store: unknown driver %q", driver)
}
