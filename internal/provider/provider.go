// Package provider talks to the external model backends. Backends are
// selected by name from a registry and called through a Gateway, which
// turns every failure into an explicit no-result value.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xaenox/chronex/pkg/config"
	"go.uber.org/zap"
)

var (
	ErrNoProvider    = errors.New("no provider configured")
	ErrNotConfigured = errors.New("provider not configured")
	ErrEmptyReply    = errors.New("empty reply")
)

// Provider is a single model backend.
type Provider interface {
	Name() string
	// Generate returns the model's reply to message. context carries the
	// recent conversation and may be empty.
	Generate(ctx context.Context, message, context string) (string, error)
}

// Result is the outcome of one gateway attempt. Text is empty when no
// model reply is available; Reason then says why.
type Result struct {
	Text     string `json:"text,omitempty"`
	Provider string `json:"provider"`
	Reason   string `json:"reason,omitempty"`
}

func (r Result) OK() bool {
	return strings.TrimSpace(r.Text) != ""
}

// Factory builds a provider from the current settings.
type Factory func(cfg config.AIConfig, logger *zap.Logger) (Provider, error)

const NoneName = "none"

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"openai": func(cfg config.AIConfig, logger *zap.Logger) (Provider, error) {
			return NewOpenAI(cfg, logger)
		},
		"huggingface": func(cfg config.AIConfig, logger *zap.Logger) (Provider, error) {
			return NewHuggingFace(cfg, logger)
		},
		"ollama": func(cfg config.AIConfig, logger *zap.Logger) (Provider, error) {
			return NewOllama(cfg, logger), nil
		},
		NoneName: func(config.AIConfig, *zap.Logger) (Provider, error) {
			return None{}, nil
		},
	}
)

// Register adds or replaces a factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = f
}

// Names lists registered provider names in order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves cfg.Provider. Unknown names and factories that fail fall
// back to None; the returned error explains the fallback.
func Build(cfg config.AIConfig, logger *zap.Logger) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return None{}, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	p, err := factory(cfg, logger)
	if err != nil {
		return None{}, fmt.Errorf("failed to set up %s: %w", name, err)
	}
	return p, nil
}

// None never produces a reply.
type None struct{}

func (None) Name() string { return NoneName }

func (None) Generate(context.Context, string, string) (string, error) {
	return "", ErrNoProvider
}
