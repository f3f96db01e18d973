package llm

import (
	"go.uber.org/zap"

	"github.com/harborline/shipdocs/pkg/anthropic"
	"github.com/harborline/shipdocs/pkg/openai"
)

// Options configures backend selection.
type Options struct {
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	AnthropicKey   string
	AnthropicModel string
	MaxDocChars    int
	RequestsPerSec float64
}

// Select picks the extraction backend from the configured credentials:
// OpenAI when its key is set, otherwise Anthropic, otherwise nil. A nil
// extractor disables the llm strategy and the pipeline runs on rules and
// spreadsheets alone.
func Select(opts Options) Extractor {
	switch {
	case opts.OpenAIKey != "":
		client := openai.NewClient(opts.OpenAIKey, opts.OpenAIBaseURL, opts.RequestsPerSec)
		return NewOpenAIExtractor(client, opts.OpenAIModel, opts.MaxDocChars)
	case opts.AnthropicKey != "":
		client := anthropic.NewClient(opts.AnthropicKey)
		return NewAnthropicExtractor(client, opts.AnthropicModel, opts.MaxDocChars)
	}
	zap.L().Info("no llm credentials configured, extraction runs without an llm backend")
	return nil
}
