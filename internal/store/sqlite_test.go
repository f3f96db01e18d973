package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/shipdocs/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleDocument() *model.Document {
	rec := model.NewExtractionRecord()
	rec.Set(model.FieldBillOfLadingNumber, "ABC12345", model.SourceRule, "")
	rec.Set(model.FieldContainerNumber, "MSKU1234567", model.SourceLLM, "openai")
	rec.Set(model.FieldLineItemsCount, 3.0, model.SourceComputed, "")
	return &model.Document{
		Filenames: []string{"bol.pdf", "manifest.xlsx"},
		RawText:   "Bill of Lading No: ABC12345",
		Record:    rec,
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, s.SaveDocument(ctx, doc))
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, []string{"bol.pdf", "manifest.xlsx"}, got.Filenames)
	assert.Equal(t, doc.RawText, got.RawText)
	require.NotNil(t, got.Record)
	assert.Equal(t, "ABC12345", got.Record.Fields[model.FieldBillOfLadingNumber].Value)
	assert.Equal(t, model.SourceLLM, got.Record.Fields[model.FieldContainerNumber].Source)
	assert.Equal(t, "openai", got.Record.Fields[model.FieldContainerNumber].Provider)
	assert.Nil(t, got.Accuracy)
}

func TestSaveDocumentKeepsProvidedID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument()
	doc.ID = "doc-fixed-id"
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "doc-fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "doc-fixed-id", got.ID)
}

func TestGetDocumentNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveDocument(ctx, sampleDocument()))
	}

	docs, err := s.ListDocuments(ctx, DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	docs, err = s.ListDocuments(ctx, DocumentFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = s.ListDocuments(ctx, DocumentFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpdateDocumentField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, s.SaveDocument(ctx, doc))

	// Correcting an existing field keeps its provenance.
	require.NoError(t, s.UpdateDocumentField(ctx, doc.ID, model.FieldBillOfLadingNumber, "XYZ99999"))

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	fv := got.Record.Fields[model.FieldBillOfLadingNumber]
	assert.Equal(t, "XYZ99999", fv.Value)
	assert.Equal(t, model.SourceRule, fv.Source)

	// Setting a previously unresolved field marks it as none.
	require.NoError(t, s.UpdateDocumentField(ctx, doc.ID, model.FieldConsigneeName, "Acme Logistics"))
	got, err = s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	fv = got.Record.Fields[model.FieldConsigneeName]
	assert.Equal(t, "Acme Logistics", fv.Value)
	assert.Equal(t, model.SourceNone, fv.Source)
}

func TestUpdateDocumentFieldNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateDocumentField(context.Background(), "missing", model.FieldBillOfLadingNumber, "X")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAccuracy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, s.SaveDocument(ctx, doc))

	acc := &model.DocumentAccuracy{
		Overall:        0.875,
		PerfectMatches: 6,
		TotalFields:    8,
		Fields: []model.FieldScore{
			{Field: model.FieldBillOfLadingNumber, Score: 1.0},
		},
	}
	require.NoError(t, s.SaveAccuracy(ctx, doc.ID, acc))

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Accuracy)
	assert.InDelta(t, 0.875, got.Accuracy.Overall, 0.0001)
	assert.Equal(t, 6, got.Accuracy.PerfectMatches)
}

func TestSaveAccuracyNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveAccuracy(context.Background(), "missing", &model.DocumentAccuracy{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, s.SaveDocument(ctx, doc))
	require.NoError(t, s.DeleteDocument(ctx, doc.ID))

	_, err := s.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
