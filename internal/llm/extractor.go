// Package llm extracts shipment fields from document text with an LLM
// backend. Payloads are schema-validated before the reconciler sees them.
package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultMaxDocChars = 12000
	maxAttempts        = 3
	retryBaseDelay     = 500 * time.Millisecond
)

// Extractor pulls structured fields out of raw document text.
type Extractor interface {
	// Name identifies the backend, recorded as llm_provider in provenance.
	Name() string
	// ExtractFields returns the combined extraction payload.
	ExtractFields(ctx context.Context, documentText string) (map[string]any, error)
	// ExtractField answers a single field, nil when the documents lack it.
	ExtractField(ctx context.Context, field, documentText string) (any, error)
}

// completer is the one backend-specific operation: a system+user completion.
// jsonMode asks the backend to constrain output to a JSON object where the
// API supports it.
type completer interface {
	Name() string
	Complete(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

// extractor implements Extractor over any completer.
type extractor struct {
	backend  completer
	maxChars int
}

func newExtractor(backend completer, maxChars int) *extractor {
	if maxChars <= 0 {
		maxChars = defaultMaxDocChars
	}
	return &extractor{backend: backend, maxChars: maxChars}
}

func (e *extractor) Name() string { return e.backend.Name() }

func (e *extractor) ExtractFields(ctx context.Context, documentText string) (map[string]any, error) {
	prompt := CombinedPrompt(truncate(documentText, e.maxChars))

	answer, err := e.completeWithRetry(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	payload := extractJSON(answer)
	if payload == "" {
		return nil, eris.Errorf("llm: no JSON object in %s answer", e.Name())
	}
	if err := ValidateAgainstSchema(BuildExtractionSchema(), []byte(payload)); err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, eris.Wrap(err, "llm: unmarshal payload")
	}

	zap.L().Info("llm extraction complete",
		zap.String("provider", e.Name()),
		zap.Int("fields", len(fields)),
	)
	return fields, nil
}

func (e *extractor) ExtractField(ctx context.Context, field, documentText string) (any, error) {
	prompt := FieldPrompt(field, truncate(documentText, e.maxChars))

	answer, err := e.completeWithRetry(ctx, prompt, false)
	if err != nil {
		return nil, err
	}
	return parseResultTag(answer), nil
}

func (e *extractor) completeWithRetry(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	var lastErr error
	delay := retryBaseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		answer, err := e.backend.Complete(ctx, systemPrompt, prompt, jsonMode)
		if err == nil {
			return answer, nil
		}
		lastErr = err

		zap.L().Warn("llm completion failed",
			zap.String("provider", e.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", eris.Wrap(ctx.Err(), "llm: context cancelled during retry")
		}
		delay *= 2
	}
	return "", eris.Wrapf(lastErr, "llm: %s completion failed after %d attempts", e.Name(), maxAttempts)
}

var codeFenceRe = regexp.MustCompile("```(?:json)?")

// extractJSON pulls the first JSON object out of a model answer, tolerating
// code fences and prose around it.
func extractJSON(answer string) string {
	answer = codeFenceRe.ReplaceAllString(answer, "")
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return ""
	}
	return answer[start : end+1]
}

var resultTagRe = regexp.MustCompile(`(?s)<result>(.*?)</result>`)

// parseResultTag reads a <result> tag, treating none/null/empty as missing.
func parseResultTag(answer string) any {
	m := resultTagRe.FindStringSubmatch(answer)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	switch strings.ToLower(v) {
	case "", "none", "null", "n/a", "not found":
		return nil
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
