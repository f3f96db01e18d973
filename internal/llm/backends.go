package llm

import (
	"context"

	"github.com/harborline/shipdocs/pkg/anthropic"
	"github.com/harborline/shipdocs/pkg/openai"
)

const (
	// ProviderOpenAI and ProviderAnthropic are the llm_provider values
	// recorded in provenance.
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultOpenAIModel    = "gpt-3.5-turbo"
	defaultAnthropicModel = "claude-3-haiku-20240307"
	defaultMaxTokens      = 2048
)

// anthropicBackend adapts the Anthropic client to the completer interface.
type anthropicBackend struct {
	client anthropic.Client
	model  string
}

func (b *anthropicBackend) Name() string { return ProviderAnthropic }

// Complete ignores jsonMode: the messages API has no JSON response
// constraint, the prompt carries the instruction instead.
func (b *anthropicBackend) Complete(ctx context.Context, system, user string, _ bool) (string, error) {
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: defaultMaxTokens,
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}
	resp.Usage.Log(b.model, "extract")
	return resp.Text(), nil
}

// NewAnthropicExtractor builds an extractor over an Anthropic client. An
// empty model selects the default haiku-class model.
func NewAnthropicExtractor(client anthropic.Client, model string, maxChars int) Extractor {
	if model == "" {
		model = defaultAnthropicModel
	}
	return newExtractor(&anthropicBackend{client: client, model: model}, maxChars)
}

// openaiBackend adapts the OpenAI client to the completer interface.
type openaiBackend struct {
	client openai.Client
	model  string
}

func (b *openaiBackend) Name() string { return ProviderOpenAI }

func (b *openaiBackend) Complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	return b.client.Chat(ctx, openai.ChatRequest{
		Model:    b.model,
		JSONMode: jsonMode,
		Messages: []openai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
}

// NewOpenAIExtractor builds an extractor over an OpenAI client.
func NewOpenAIExtractor(client openai.Client, model string, maxChars int) Extractor {
	if model == "" {
		model = defaultOpenAIModel
	}
	return newExtractor(&openaiBackend{client: client, model: model}, maxChars)
}
