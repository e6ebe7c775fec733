// Package assistant runs the chat pipeline: analysis, a model attempt
// through the provider gateway, and the template fallback.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/xaenox/chronex/internal/classifier"
	"github.com/xaenox/chronex/internal/knowledge"
	"github.com/xaenox/chronex/internal/ledger"
	"github.com/xaenox/chronex/internal/library"
	"github.com/xaenox/chronex/internal/metrics"
	"github.com/xaenox/chronex/internal/models"
	"github.com/xaenox/chronex/internal/provider"
	"github.com/xaenox/chronex/internal/responder"
	"go.uber.org/zap"
)

const (
	ModelName = "Chronex AI (4B)"
	Version   = "1.0"
)

var ErrEmptyMessage = errors.New("no message provided")

// SupportedLanguages is advertised by the capabilities endpoint.
var SupportedLanguages = []string{"JavaScript", "Python", "C++", "C", "Java", "Go", "Rust"}

// Generator produces a model reply or an explicit no-result value.
type Generator interface {
	Generate(ctx context.Context, message, history string) provider.Result
}

type ChatResult struct {
	Response  string           `json:"response"`
	Model     string           `json:"model"`
	History   []models.Turn    `json:"history"`
	AIPowered bool             `json:"ai_powered"`
	Provider  string           `json:"provider,omitempty"`
	Analysis  *models.Analysis `json:"analysis"`
}

type Assistant struct {
	classifier *classifier.KeywordClassifier
	knowledge  *knowledge.Base
	responder  *responder.Responder
	gateway    Generator
	library    *library.Library
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	started    time.Time
}

type Option func(*Assistant)

func WithResponder(r *responder.Responder) Option {
	return func(a *Assistant) { a.responder = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assistant) { a.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

func New(gateway Generator, lib *library.Library, logger *zap.Logger, opts ...Option) *Assistant {
	a := &Assistant{
		classifier: classifier.NewKeywordClassifier(),
		knowledge:  knowledge.NewBase(),
		gateway:    gateway,
		library:    lib,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.responder == nil {
		a.responder = responder.New(nil)
	}
	a.started = a.now()
	return a
}

// Analyze classifies message and searches the knowledge table.
func (a *Assistant) Analyze(message string) *models.Analysis {
	intents, entities := a.classifier.Classify(message)
	return &models.Analysis{
		Intents:          intents,
		Entities:         entities,
		Complexity:       classifier.AssessComplexity(message),
		KnowledgeMatches: a.knowledge.Search(message),
	}
}

// Chat answers message in the context of the caller's history and returns
// the history extended by the user turn and the reply.
func (a *Assistant) Chat(ctx context.Context, message string, history []models.Turn) (ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return ChatResult{}, ErrEmptyMessage
	}

	led := ledger.New(history, a.now)
	led.AppendUser(message)

	analysis := a.Analyze(message)
	a.logger.Debug("Message analyzed",
		zap.Any("intents", analysis.Intents),
		zap.String("complexity", string(analysis.Complexity)),
		zap.Int("knowledge_matches", len(analysis.KnowledgeMatches)))

	result := a.gateway.Generate(ctx, message, providerContext(led.Recent(), analysis))

	reply := result.Text
	if !result.OK() {
		a.logger.Debug("Using template fallback", zap.String("reason", result.Reason))
		reply = a.responder.Select(analysis, message)
	}

	led.AppendAssistant(reply, analysis)
	a.library.Record(ctx, message, classifier.MessageType(message))
	a.metrics.RecordReply(result.OK())

	return ChatResult{
		Response:  reply,
		Model:     ModelName + " (Enhanced)",
		History:   led.Turns(),
		AIPowered: result.OK(),
		Provider:  result.Provider,
		Analysis:  analysis,
	}, nil
}

func providerContext(recent string, analysis *models.Analysis) string {
	intents := make([]string, len(analysis.Intents))
	for i, intent := range analysis.Intents {
		intents[i] = string(intent)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent conversation:\n%s\n\nAnalysis:\n- User Intent: %s\n- Complexity: %s",
		recent, strings.Join(intents, ", "), analysis.Complexity)
	if langs := analysis.Entities.Languages; len(langs) > 0 {
		fmt.Fprintf(&b, "\n- Programming Languages: %s", strings.Join(langs, ", "))
	}
	if matches := analysis.KnowledgeMatches; len(matches) > 0 {
		if len(matches) > 3 {
			matches = matches[:3]
		}
		topics := make([]string, len(matches))
		for i, m := range matches {
			topics[i] = m.Topic
		}
		fmt.Fprintf(&b, "\n- Relevant Topics: %s", strings.Join(topics, ", "))
	}
	return b.String()
}

// Respond answers a route that maps straight to a template family. Creator
// and status queries are recorded in the library.
func (a *Assistant) Respond(ctx context.Context, family responder.Family, message string) string {
	switch family {
	case responder.FamilyCreator:
		info := a.library.Info()
		a.library.Record(ctx, message, "creator")
		return a.responder.Render(family, map[string]string{
			"creator":   info.PrimaryCreator,
			"secondary": info.SecondaryCreator,
		})

	case responder.FamilyStatus:
		a.library.Record(ctx, message, "status")
		return a.responder.Render(family, map[string]string{
			"model":   ModelName,
			"runtime": a.runtimeReport(),
		})
	}
	return a.responder.Pick(family)
}

func (a *Assistant) runtimeReport() string {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return fmt.Sprintf("• Goroutines: %d\n• Memory: %.1f MB\n• Uptime: %s",
		runtime.NumGoroutine(),
		float64(mem.Alloc)/(1<<20),
		a.Uptime().Round(time.Second))
}

func (a *Assistant) Uptime() time.Duration {
	return a.now().Sub(a.started)
}

// AnalyzeCode reviews code. An empty or "unknown" language is detected
// from the code itself.
func (a *Assistant) AnalyzeCode(language, code string) string {
	if language == "" || strings.EqualFold(language, "unknown") {
		if langs := a.classifier.ExtractEntities(code).Languages; len(langs) > 0 {
			language = langs[0]
		} else {
			language = ""
		}
	}

	hint := ""
	if language != "" {
		hint = "**Language:** " + language + "\n\n"
	}
	return a.responder.Render(responder.FamilyCodeReview, map[string]string{"language": hint})
}

// SolveMath answers a math problem. The reply is a solution template; the
// problem text only feeds the log.
func (a *Assistant) SolveMath(problem string) string {
	a.logger.Debug("Math problem received", zap.Int("length", len(problem)))
	return a.responder.Pick(responder.FamilyMathSolution)
}
