package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/shipdocs/internal/model"
)

func newMockPool(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresWithPool(mock)
}

func TestPostgresMigrate(t *testing.T) {
	mock, s := newMockPool(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS documents").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveDocument(t *testing.T) {
	mock, s := newMockPool(t)

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	doc := sampleDocument()
	require.NoError(t, s.SaveDocument(context.Background(), doc))
	assert.NotEmpty(t, doc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDocument(t *testing.T) {
	mock, s := newMockPool(t)

	now := time.Now().UTC()
	accuracy := `{"overall_accuracy":0.9,"perfect_matches":7,"total_fields":8}`
	rows := pgxmock.NewRows([]string{"id", "filenames", "raw_text", "record", "accuracy", "created_at", "updated_at"}).
		AddRow("doc-1", `["bol.pdf"]`, "raw", `{"fields":{"bill_of_lading_number":{"value":"ABC12345","source":"rule"}}}`, &accuracy, now, now)

	mock.ExpectQuery("SELECT id, filenames, raw_text, record, accuracy").
		WithArgs("doc-1").
		WillReturnRows(rows)

	got, err := s.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, []string{"bol.pdf"}, got.Filenames)
	assert.Equal(t, "ABC12345", got.Record.Fields[model.FieldBillOfLadingNumber].Value)
	require.NotNil(t, got.Accuracy)
	assert.InDelta(t, 0.9, got.Accuracy.Overall, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDocumentNotFound(t *testing.T) {
	mock, s := newMockPool(t)

	rows := pgxmock.NewRows([]string{"id", "filenames", "raw_text", "record", "accuracy", "created_at", "updated_at"})
	mock.ExpectQuery("SELECT id, filenames, raw_text, record, accuracy").
		WithArgs("missing").
		WillReturnRows(rows)

	_, err := s.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresListDocuments(t *testing.T) {
	mock, s := newMockPool(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "filenames", "raw_text", "record", "accuracy", "created_at", "updated_at"}).
		AddRow("doc-1", `["a.pdf"]`, "", `{"fields":{}}`, (*string)(nil), now, now).
		AddRow("doc-2", `["b.pdf"]`, "", `{"fields":{}}`, (*string)(nil), now, now)

	mock.ExpectQuery("SELECT id, filenames, raw_text, record, accuracy").
		WithArgs(50, 0).
		WillReturnRows(rows)

	docs, err := s.ListDocuments(context.Background(), DocumentFilter{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveAccuracyNotFound(t *testing.T) {
	mock, s := newMockPool(t)

	mock.ExpectExec("UPDATE documents SET accuracy").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SaveAccuracy(context.Background(), "missing", &model.DocumentAccuracy{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresDeleteDocument(t *testing.T) {
	mock, s := newMockPool(t)

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("doc-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeleteDocument(context.Background(), "doc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateDocumentField(t *testing.T) {
	mock, s := newMockPool(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "filenames", "raw_text", "record", "accuracy", "created_at", "updated_at"}).
		AddRow("doc-1", `["a.pdf"]`, "", `{"fields":{"bill_of_lading_number":{"value":"OLD","source":"llm","llm_provider":"openai"}}}`, (*string)(nil), now, now)

	mock.ExpectQuery("SELECT id, filenames, raw_text, record, accuracy").
		WithArgs("doc-1").
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE documents SET record").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "doc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateDocumentField(context.Background(), "doc-1", model.FieldBillOfLadingNumber, "NEW123")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
