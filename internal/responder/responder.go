// Package responder turns an analysis into a canned reply.
package responder

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xaenox/chronex/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const echoLimit = 100

type Responder struct {
	picker *Picker
	title  cases.Caser
}

func New(picker *Picker) *Responder {
	if picker == nil {
		picker = NewTimeSeededPicker()
	}
	return &Responder{
		picker: picker,
		title:  cases.Title(language.English),
	}
}

// Pick draws a raw template from the family.
func (r *Responder) Pick(family Family) string {
	return r.picker.Pick(family, families[family])
}

// Render draws a template from the family and substitutes placeholders.
// Keys are placeholder names without braces, e.g. "language".
func (r *Responder) Render(family Family, vars map[string]string) string {
	tmpl := r.Pick(family)
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Select applies the fallback decision ladder. The first matching branch wins.
// Without an analysis it answers with a generic chat prompt.
func (r *Responder) Select(analysis *models.Analysis, message string) string {
	if analysis == nil {
		return r.Pick(FamilyChatFallback)
	}
	entities := analysis.Entities

	switch {
	case isGreetingOnly(analysis):
		return r.Pick(FamilyGreeting)

	case len(analysis.KnowledgeMatches) > 0:
		return r.knowledgeResponse(analysis.KnowledgeMatches[0], entities.Languages)

	case analysis.HasIntent(models.IntentCoding):
		return r.Render(FamilyCodingAssist, map[string]string{"detail": listDetail(" in ", entities.Languages)})

	case analysis.HasIntent(models.IntentMath):
		return r.Render(FamilyMathAssist, map[string]string{"detail": listDetail(" with numbers ", entities.Numbers)})

	case analysis.HasIntent(models.IntentExplanation):
		return r.Render(FamilyExplanation, map[string]string{"detail": listDetail(" about ", entities.Topics)})
	}

	return intelligentResponse(analysis, message)
}

func (r *Responder) knowledgeResponse(entry models.KnowledgeEntry, languages []string) string {
	related := ""
	if len(languages) > 0 {
		related = "**Related to:** " + strings.Join(languages, ", ")
	}
	heading := r.title.String(strings.ReplaceAll(entry.Topic, "_", " "))
	return fmt.Sprintf("💡 **%s**\n\n%s\n\n%s\n\nWould you like me to explain more details or provide code examples?",
		heading, entry.Information, related)
}

func intelligentResponse(analysis *models.Analysis, message string) string {
	intents := make([]string, len(analysis.Intents))
	for i, intent := range analysis.Intents {
		intents[i] = string(intent)
	}

	var languages, topics string
	if len(analysis.Entities.Languages) > 0 {
		languages = "• Languages: " + strings.Join(analysis.Entities.Languages, ", ")
	}
	if len(analysis.Entities.Topics) > 0 {
		topics = "• Topics: " + strings.Join(analysis.Entities.Topics, ", ")
	}

	return fmt.Sprintf("🧠 **Intelligent Response Mode**\n\nI understand you're asking about: %s\n\nBased on my analysis:\n• Intent: %s\n%s\n%s\n\nI'm ready to provide detailed assistance. Could you provide more specifics so I can give you the best answer?",
		Truncate(message, echoLimit), strings.Join(intents, ", "), languages, topics)
}

// Truncate keeps the first limit characters and appends an ellipsis when
// anything was cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func isGreetingOnly(analysis *models.Analysis) bool {
	return len(analysis.Intents) == 1 &&
		analysis.Intents[0] == models.IntentGreeting &&
		len(analysis.KnowledgeMatches) == 0
}

func listDetail(prefix string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return prefix + strings.Join(items, ", ")
}
