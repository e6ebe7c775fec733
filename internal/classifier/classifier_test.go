package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xaenox/chronex/internal/models"
)

func TestDetectIntents(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name    string
		message string
		want    []models.Intent
	}{
		{"greeting only", "hello", []models.Intent{models.IntentGreeting}},
		{"case insensitive", "SOLVE the EQUATION", []models.Intent{models.IntentMath}},
		{"no match falls back to general", "zzz", []models.Intent{models.IntentGeneral}},
		{"negation is not handled", "I don't like math", []models.Intent{models.IntentMath}},
		{
			"multiple intents in table order",
			"can you explain this python function",
			[]models.Intent{models.IntentGreeting, models.IntentQuestion, models.IntentCoding, models.IntentExplanation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.DetectIntents(tt.message))
		})
	}
}

func TestDetectIntents_EveryKeywordMatches(t *testing.T) {
	c := NewKeywordClassifier()
	for _, entry := range defaultIntents {
		for _, keyword := range entry.keywords {
			assert.Contains(t, c.DetectIntents("xx "+keyword+" yy"), entry.intent, "keyword %q", keyword)
		}
	}
}

func TestExtractEntities(t *testing.T) {
	c := NewKeywordClassifier()

	got := c.ExtractEntities("Compare JavaScript and Python for Web and Cloud apps: 3 vs 4.5 or 10.")

	assert.Equal(t, []string{"python", "javascript", "java"}, got.Languages)
	assert.Equal(t, []string{"web", "cloud"}, got.Topics)
	assert.Equal(t, []string{"3", "4.5", "10"}, got.Numbers)
}

func TestExtractEntities_Empty(t *testing.T) {
	got := NewKeywordClassifier().ExtractEntities("zzz")

	assert.Empty(t, got.Languages)
	assert.Empty(t, got.Topics)
	assert.NotNil(t, got.Numbers)
	assert.Empty(t, got.Numbers)
}

func TestExtractEntities_NumberEdges(t *testing.T) {
	got := NewKeywordClassifier().ExtractEntities("1.2.3 and 7. and .5")

	assert.Equal(t, []string{"1.2", "3", "7", "5"}, got.Numbers)
}

func TestAssessComplexity(t *testing.T) {
	assert.Equal(t, models.ComplexitySimple, AssessComplexity("short message"))
	assert.Equal(t, models.ComplexityAdvanced, AssessComplexity("optimize this"))

	words := make([]byte, 0, 60)
	for i := 0; i < 25; i++ {
		words = append(words, "a "...)
	}
	assert.Equal(t, models.ComplexityIntermediate, AssessComplexity(string(words)))
}

func TestMessageType(t *testing.T) {
	assert.Equal(t, "question", MessageType("how does it work"))
	assert.Equal(t, "technical", MessageType("python code"))
	assert.Equal(t, "greeting", MessageType("hey there"))
	assert.Equal(t, "general", MessageType("ok"))
}
