package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xaenox/chronex/internal/metrics"
	"github.com/xaenox/chronex/pkg/config"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

var (
	// ErrVisionUnavailable is wrapped by every Describe failure.
	ErrVisionUnavailable = errors.New("vision unavailable")

	errPanic = errors.New("provider panicked")
)

// Status describes the gateway's current backend.
type Status struct {
	Configured    string `json:"configured"`
	Active        string `json:"active"`
	UseRealAI     bool   `json:"use_real_ai"`
	VisionEnabled bool   `json:"vision_enabled"`
	Problem       string `json:"problem,omitempty"`
}

// Gateway owns the active provider. It rebuilds the provider lazily after
// the settings version changes, and never returns provider errors to
// callers of Generate.
type Gateway struct {
	settings *config.Settings
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu        sync.Mutex
	built     bool
	version   uint64
	cfg       config.AIConfig
	provider  Provider
	problem   error
	vision    *OpenAI
	visionErr error
}

func NewGateway(settings *config.Settings, logger *zap.Logger, m *metrics.Metrics) *Gateway {
	return &Gateway{
		settings: settings,
		logger:   logger,
		metrics:  m,
	}
}

type snapshot struct {
	cfg       config.AIConfig
	provider  Provider
	problem   error
	vision    *OpenAI
	visionErr error
}

func (g *Gateway) current() snapshot {
	cfg, version := g.settings.AI()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.built || version != g.version {
		g.rebuild(cfg)
		g.version = version
		g.built = true
	}

	return snapshot{
		cfg:       g.cfg,
		provider:  g.provider,
		problem:   g.problem,
		vision:    g.vision,
		visionErr: g.visionErr,
	}
}

// rebuild must be called with g.mu held.
func (g *Gateway) rebuild(cfg config.AIConfig) {
	g.cfg = cfg
	g.provider, g.problem = Build(cfg, g.logger)
	if g.problem != nil {
		g.logger.Warn("No real AI provider available, using default responses",
			zap.String("provider", cfg.Provider),
			zap.Error(g.problem))
	} else {
		g.logger.Info("AI provider initialized", zap.String("provider", g.provider.Name()))
	}

	g.vision, g.visionErr = nil, nil
	if !cfg.EnableVision {
		g.visionErr = errors.New("vision disabled")
		return
	}
	g.vision, g.visionErr = NewOpenAI(cfg, g.logger)
}

type reply struct {
	text string
	err  error
}

// call runs fn under ctx, converting panics into errors. It returns as soon
// as ctx is done even if fn ignores cancellation.
func call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("%w: %v", errPanic, r)}
			}
		}()
		text, err := fn(ctx)
		ch <- reply{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func timeoutFor(cfg config.AIConfig) time.Duration {
	if cfg.ProviderTimeout <= 0 {
		return DefaultTimeout
	}
	return cfg.ProviderTimeout
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, errPanic):
		return "panic"
	case errors.Is(err, ErrEmptyReply):
		return "empty"
	default:
		return "error"
	}
}

// Generate asks the active provider for a reply. history is the recent
// conversation rendered as text.
func (g *Gateway) Generate(ctx context.Context, message, history string) Result {
	s := g.current()
	name := s.provider.Name()

	if !s.cfg.UseRealAI {
		g.metrics.RecordProviderCall(name, "disabled", 0)
		return Result{Provider: name, Reason: "real AI disabled"}
	}
	if name == NoneName {
		reason := ErrNoProvider.Error()
		if s.problem != nil {
			reason = s.problem.Error()
		}
		g.metrics.RecordProviderCall(name, "unavailable", 0)
		return Result{Provider: name, Reason: reason}
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutFor(s.cfg))
	defer cancel()

	start := time.Now()
	text, err := call(ctx, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, message, history)
	})
	duration := time.Since(start)
	outcome := outcomeOf(err)
	g.metrics.RecordProviderCall(name, outcome, duration)

	if err != nil {
		g.logger.Error("AI provider error",
			zap.String("provider", name),
			zap.String("outcome", outcome),
			zap.Duration("duration", duration),
			zap.Error(err))
		return Result{Provider: name, Reason: err.Error()}
	}

	g.logger.Debug("AI provider replied",
		zap.String("provider", name),
		zap.Duration("duration", duration))
	return Result{Text: text, Provider: name}
}

// Describe asks the vision model about an image.
func (g *Gateway) Describe(ctx context.Context, data []byte, mimeType, prompt string) (string, error) {
	s := g.current()
	if s.vision == nil {
		return "", fmt.Errorf("%w: %v", ErrVisionUnavailable, s.visionErr)
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutFor(s.cfg))
	defer cancel()

	start := time.Now()
	text, err := call(ctx, func(ctx context.Context) (string, error) {
		return s.vision.Describe(ctx, data, mimeType, prompt)
	})
	g.metrics.RecordProviderCall("openai-vision", outcomeOf(err), time.Since(start))
	if err != nil {
		g.logger.Error("Vision API error", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrVisionUnavailable, err)
	}
	return text, nil
}

func (g *Gateway) Status() Status {
	s := g.current()
	st := Status{
		Configured:    s.cfg.Provider,
		Active:        s.provider.Name(),
		UseRealAI:     s.cfg.UseRealAI,
		VisionEnabled: s.vision != nil,
	}
	if s.problem != nil {
		st.Problem = s.problem.Error()
	}
	return st
}

// Available reports, for every registered provider, whether it could be
// built from the current settings.
func (g *Gateway) Available() map[string]bool {
	cfg, _ := g.settings.AI()

	out := make(map[string]bool)
	for _, name := range Names() {
		probe := cfg
		probe.Provider = name
		_, err := Build(probe, g.logger)
		out[name] = err == nil
	}
	return out
}
