package models

import "time"

// Intent is a coarse label inferred from keyword presence in a message.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentQuestion    Intent = "question"
	IntentCoding      Intent = "coding"
	IntentMath        Intent = "math"
	IntentExplanation Intent = "explanation"
	IntentHelp        Intent = "help"
	IntentCreative    Intent = "creative"
	IntentAnalysis    Intent = "analysis"
	IntentGeneral     Intent = "general"
)

type Complexity string

const (
	ComplexitySimple       Complexity = "simple"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// EntitySet holds the substrings recognized in a message, in detection order.
type EntitySet struct {
	Languages []string `json:"languages"`
	Topics    []string `json:"topics"`
	Numbers   []string `json:"numbers"`
}

// KnowledgeEntry is a single fact from the static knowledge table.
type KnowledgeEntry struct {
	Category    string `json:"category"`
	Topic       string `json:"topic"`
	Information string `json:"information"`
}

// Analysis is the snapshot that produced an assistant reply
type Analysis struct {
	Intents          []Intent         `json:"intents"`
	Entities         EntitySet        `json:"entities"`
	Complexity       Complexity       `json:"complexity"`
	KnowledgeMatches []KnowledgeEntry `json:"knowledge_matches"`
}

// HasIntent reports whether the analysis detected the given intent.
func (a *Analysis) HasIntent(intent Intent) bool {
	for _, i := range a.Intents {
		if i == intent {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn represents one message of a conversation
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp string    `json:"timestamp"`
	Analysis  *Analysis `json:"analysis,omitempty"`
}

// NewTurn stamps a turn with the given time in RFC 3339 form.
func NewTurn(role Role, content string, at time.Time) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: at.Format(time.RFC3339Nano),
	}
}
