package adapter

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"nova-ai/internal/engine"
	apperrors "nova-ai/pkg/errors"
	"nova-ai/pkg/logger"

	"go.uber.org/zap"
)

// OllamaAdapter drives the ollama CLI as a subprocess. If the binary is not
// on PATH every call reports AdapterUnavailable so callers can fall back to
// the regex parser.
type OllamaAdapter struct {
	model   string
	timeout time.Duration
	mu      sync.RWMutex // protects model
	logger  *zap.Logger
}

// NewOllamaAdapter creates an adapter for the given default model
func NewOllamaAdapter(model string, timeout time.Duration) *OllamaAdapter {
	return &OllamaAdapter{
		model:   model,
		timeout: timeout,
		logger:  logger.Get(),
	}
}

// SetModel updates the default model
func (a *OllamaAdapter) SetModel(model string) {
	if model != "" {
		a.mu.Lock()
		a.model = model
		a.mu.Unlock()
		a.logger.Debug("Ollama adapter model updated", zap.String("model", model))
	}
}

// GetModel returns the current default model
func (a *OllamaAdapter) GetModel() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// PromptToAction runs the model over the prompt and parses the JSON action
// from its output. The call is capped by the adapter's hard timeout.
func (a *OllamaAdapter) PromptToAction(ctx context.Context, prompt, model string) (*engine.Action, error) {
	if model == "" {
		model = a.GetModel()
	}

	if _, err := exec.LookPath("ollama"); err != nil {
		return nil, apperrors.ErrAdapterUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	full := systemPrompt + "\n\nUser: " + prompt

	cmd := exec.CommandContext(ctx, "ollama", "run", model)
	cmd.Stdin = strings.NewReader(full)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			a.logger.Warn("Ollama call timed out",
				zap.String("model", model),
				zap.Duration("timeout", a.timeout),
			)
			return nil, apperrors.NewAdapterFailed("ollama CLI timed out", ctx.Err())
		}
		a.logger.Error("Ollama call failed",
			zap.String("model", model),
			zap.String("stderr", truncateRaw(stderr.String())),
			zap.Error(err),
		)
		return nil, apperrors.NewAdapterFailed("ollama CLI failed: "+truncateRaw(stderr.String()), err)
	}

	a.logger.Debug("Ollama call finished",
		zap.String("model", model),
		zap.Duration("duration", duration),
		zap.Int("output_bytes", stdout.Len()),
	)

	return ParseAndValidate(stdout.String())
}
