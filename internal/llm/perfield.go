package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxFieldConcurrency bounds parallel per-field queries against one backend.
const maxFieldConcurrency = 4

// ExtractPerField asks the backend for each field individually and merges
// the answers. A failed field is logged and left out rather than failing the
// whole extraction.
func ExtractPerField(ctx context.Context, e Extractor, fields []string, documentText string) map[string]any {
	var mu sync.Mutex
	out := make(map[string]any, len(fields))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFieldConcurrency)

	for _, field := range fields {
		g.Go(func() error {
			value, err := e.ExtractField(ctx, field, documentText)
			if err != nil {
				zap.L().Warn("per-field extraction failed",
					zap.String("provider", e.Name()),
					zap.String("field", field),
					zap.Error(err),
				)
				return nil
			}
			if value == nil {
				return nil
			}
			mu.Lock()
			out[field] = value
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only observes context cancellation.
	_ = g.Wait()
	return out
}
