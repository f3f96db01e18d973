package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harborline/shipdocs/internal/accuracy"
	"github.com/harborline/shipdocs/internal/docs"
	"github.com/harborline/shipdocs/internal/extract"
	"github.com/harborline/shipdocs/internal/llm"
	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/similarity"
	"github.com/harborline/shipdocs/internal/store"
)

// scoringConfig merges the optional weights file with the main config.
// Thresholds changed in the main config win over the weights file.
func scoringConfig() (accuracy.Config, error) {
	ac, err := accuracy.LoadConfig(cfg.Scoring.WeightsFile)
	if err != nil {
		return ac, err
	}
	if cfg.Scoring.DefaultWeight != accuracy.DefaultFieldWeight {
		ac.DefaultWeight = cfg.Scoring.DefaultWeight
	}
	if cfg.Scoring.DatePartialCredit != similarity.DefaultDatePartialCredit {
		ac.DatePartialCredit = cfg.Scoring.DatePartialCredit
	}
	if cfg.Scoring.TextFloor != similarity.DefaultTextFloor {
		ac.TextFloor = cfg.Scoring.TextFloor
	}
	return ac, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newReader() *docs.Reader {
	return docs.NewReader(docs.NewPdfToText(cfg.Docs.PdfToTextPath))
}

func newExtractor() llm.Extractor {
	return llm.Select(llm.Options{
		OpenAIKey:      cfg.LLM.OpenAIKey,
		OpenAIModel:    cfg.LLM.OpenAIModel,
		OpenAIBaseURL:  cfg.LLM.OpenAIBaseURL,
		AnthropicKey:   cfg.LLM.AnthropicKey,
		AnthropicModel: cfg.LLM.AnthropicModel,
		MaxDocChars:    cfg.LLM.MaxDocChars,
		RequestsPerSec: cfg.LLM.RequestsPerSec,
	})
}

// loadFieldMap reads a field -> value JSON file. It accepts plain maps,
// extraction records, and full document dumps from the process command.
func loadFieldMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}

	var wrapped struct {
		Fields map[string]model.FieldValue `json:"fields"`
		Record *struct {
			Fields map[string]model.FieldValue `json:"fields"`
		} `json:"record"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if wrapped.Record != nil && len(wrapped.Record.Fields) > 0 {
			wrapped.Fields = wrapped.Record.Fields
		}
		if len(wrapped.Fields) > 0 {
			out := make(map[string]any, len(wrapped.Fields))
			for k, fv := range wrapped.Fields {
				out[k] = fv.Value
			}
			return out, nil
		}
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	return flat, nil
}

// processPaths runs the full extraction pipeline over one document set.
func processPaths(ctx context.Context, paths []string, perField bool) (*model.Document, error) {
	bundle, err := newReader().Read(ctx, paths)
	if err != nil {
		return nil, err
	}

	llmFields, provider := runExtraction(ctx, bundle.RawText, perField)

	in := extract.NewInput(llmFields, provider, bundle.Metrics, bundle.RawText)
	record := extract.NewReconciler().Reconcile(ctx, in)

	return &model.Document{
		Filenames: bundle.Filenames,
		RawText:   bundle.RawText,
		Record:    record,
	}, nil
}

// runExtraction runs the configured LLM backend. Extraction failures are
// logged and the pipeline continues on rules and spreadsheets alone.
func runExtraction(ctx context.Context, documentText string, perField bool) (map[string]any, string) {
	extractor := newExtractor()
	if extractor == nil {
		return nil, ""
	}

	if perField {
		return llm.ExtractPerField(ctx, extractor, model.CanonicalFields, documentText), extractor.Name()
	}

	fields, err := extractor.ExtractFields(ctx, documentText)
	if err != nil {
		zap.L().Warn("llm extraction failed, continuing without llm values",
			zap.String("provider", extractor.Name()),
			zap.Error(err),
		)
		return nil, ""
	}
	return fields, extractor.Name()
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	return data, eris.Wrap(err, "encode output")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
