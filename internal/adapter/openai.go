package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nova-ai/internal/engine"
	apperrors "nova-ai/pkg/errors"
	"nova-ai/pkg/logger"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIAdapter talks to an OpenAI-compatible chat-completions endpoint
// (LiteLLM, vLLM, ollama's own compat server). Same JSON-action contract as
// the CLI adapter.
type OpenAIAdapter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	mu      sync.RWMutex // protects model
	logger  *zap.Logger
}

// NewOpenAIAdapter creates an adapter against baseURL
func NewOpenAIAdapter(baseURL, apiKey, model string, timeout time.Duration) *OpenAIAdapter {
	// Proxies like LiteLLM accept a dummy key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &OpenAIAdapter{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
		logger:  logger.Get(),
	}
}

// SetModel updates the default model
func (a *OpenAIAdapter) SetModel(model string) {
	if model != "" {
		a.mu.Lock()
		a.model = model
		a.mu.Unlock()
	}
}

// GetModel returns the current default model
func (a *OpenAIAdapter) GetModel() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// PromptToAction asks the endpoint for a JSON action and validates it
func (a *OpenAIAdapter) PromptToAction(ctx context.Context, prompt, model string) (*engine.Action, error) {
	if model == "" {
		model = a.GetModel()
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	}

	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", model),
		)
	}

	if err != nil {
		// Endpoint unreachable after retries; let callers fall back
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAdapterUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewAdapterFailed("no choices in LLM response", nil)
	}

	return ParseAndValidate(resp.Choices[0].Message.Content)
}
