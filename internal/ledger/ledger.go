// Package ledger manages caller-owned conversation history. Nothing is
// kept between requests; callers resend the sequence they received.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/xaenox/chronex/internal/models"
)

// ContextWindow is the number of trailing turns quoted to a provider.
const ContextWindow = 5

type Ledger struct {
	turns []models.Turn
	now   func() time.Time
}

// New starts a ledger from the caller's history. The slice is copied.
func New(history []models.Turn, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	turns := make([]models.Turn, len(history), len(history)+2)
	copy(turns, history)
	return &Ledger{turns: turns, now: now}
}

func (l *Ledger) AppendUser(content string) {
	l.turns = append(l.turns, models.NewTurn(models.RoleUser, content, l.now()))
}

// AppendAssistant records a reply together with the analysis that produced it.
func (l *Ledger) AppendAssistant(content string, analysis *models.Analysis) {
	turn := models.NewTurn(models.RoleAssistant, content, l.now())
	turn.Analysis = analysis
	l.turns = append(l.turns, turn)
}

func (l *Ledger) Turns() []models.Turn {
	return append([]models.Turn(nil), l.turns...)
}

func (l *Ledger) Len() int {
	return len(l.turns)
}

// Recent renders the last ContextWindow turns as "role: content" lines.
func (l *Ledger) Recent() string {
	start := len(l.turns) - ContextWindow
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, len(l.turns)-start)
	for _, turn := range l.turns[start:] {
		role := turn.Role
		if role == "" {
			role = models.RoleUser
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Content))
	}
	return strings.Join(lines, "\n")
}
