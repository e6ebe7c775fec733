package classifier

import (
	"regexp"
	"strings"

	"github.com/xaenox/chronex/internal/models"
)

type Classifier interface {
	DetectIntents(content string) []models.Intent
	ExtractEntities(content string) models.EntitySet
}

type intentKeywords struct {
	intent   models.Intent
	keywords []string
}

var defaultIntents = []intentKeywords{
	{models.IntentGreeting, []string{"hello", "hi", "hey", "greetings", "good morning", "good afternoon", "good evening"}},
	{models.IntentQuestion, []string{"what", "why", "how", "when", "where", "who", "which", "can you", "could you"}},
	{models.IntentCoding, []string{"code", "function", "class", "variable", "bug", "error", "debug", "compile", "syntax"}},
	{models.IntentMath, []string{"calculate", "solve", "equation", "formula", "math", "algebra", "calculus", "derivative", "integral"}},
	{models.IntentExplanation, []string{"explain", "describe", "tell me about", "what is", "define", "meaning"}},
	{models.IntentHelp, []string{"help", "assist", "support", "guide", "teach", "show me"}},
	{models.IntentCreative, []string{"create", "generate", "build", "design", "make", "develop"}},
	{models.IntentAnalysis, []string{"analyze", "review", "evaluate", "assess", "examine", "check"}},
}

var (
	defaultLanguages = []string{"python", "javascript", "java", "c++", "c#", "ruby", "go", "rust", "php", "typescript"}
	defaultTopics    = []string{"ai", "machine learning", "data science", "web", "mobile", "database", "api", "cloud"}

	technicalWords = []string{"algorithm", "optimize", "architecture", "implementation"}

	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// KeywordClassifier matches fixed keyword tables by plain substring
// containment. "I don't like math" still yields the math intent.
type KeywordClassifier struct {
	intents   []intentKeywords
	languages []string
	topics    []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		intents:   defaultIntents,
		languages: defaultLanguages,
		topics:    defaultTopics,
	}
}

// DetectIntents returns every intent with at least one keyword hit, in
// table order, or [general] when nothing matches.
func (c *KeywordClassifier) DetectIntents(content string) []models.Intent {
	content = strings.ToLower(content)

	var detected []models.Intent
	for _, entry := range c.intents {
		for _, keyword := range entry.keywords {
			if strings.Contains(content, keyword) {
				detected = append(detected, entry.intent)
				break
			}
		}
	}

	if len(detected) == 0 {
		return []models.Intent{models.IntentGeneral}
	}
	return detected
}

func (c *KeywordClassifier) ExtractEntities(content string) models.EntitySet {
	lower := strings.ToLower(content)

	entities := models.EntitySet{
		Languages: matchAll(lower, c.languages),
		Topics:    matchAll(lower, c.topics),
		Numbers:   numberPattern.FindAllString(content, -1),
	}
	if entities.Numbers == nil {
		entities.Numbers = []string{}
	}
	return entities
}

// Classify runs intent detection and entity extraction in one call.
func (c *KeywordClassifier) Classify(content string) ([]models.Intent, models.EntitySet) {
	return c.DetectIntents(content), c.ExtractEntities(content)
}

// AssessComplexity buckets a message by word count and technical vocabulary.
func AssessComplexity(content string) models.Complexity {
	wordCount := len(strings.Fields(content))

	lower := strings.ToLower(content)
	hasTechnical := false
	for _, word := range technicalWords {
		if strings.Contains(lower, word) {
			hasTechnical = true
			break
		}
	}

	switch {
	case wordCount > 50 || hasTechnical:
		return models.ComplexityAdvanced
	case wordCount > 20:
		return models.ComplexityIntermediate
	default:
		return models.ComplexitySimple
	}
}

// MessageType is a coarse label used only for query-history analytics.
func MessageType(content string) string {
	lower := strings.ToLower(content)
	switch {
	case containsAny(lower, "?", "what", "how", "why", "explain"):
		return "question"
	case containsAny(lower, "code", "function", "javascript", "python"):
		return "technical"
	case containsAny(lower, "hello", "hi", "hey", "greetings"):
		return "greeting"
	default:
		return "general"
	}
}

func matchAll(content string, candidates []string) []string {
	matches := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if strings.Contains(content, candidate) {
			matches = append(matches, candidate)
		}
	}
	return matches
}

func containsAny(content string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(content, needle) {
			return true
		}
	}
	return false
}
