package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/chronex/internal/models"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestLedger_AppendsOneTurnEach(t *testing.T) {
	l := New(nil, fixedClock)
	l.AppendUser("hello")
	analysis := &models.Analysis{Intents: []models.Intent{models.IntentGreeting}}
	l.AppendAssistant("hi there", analysis)

	turns := l.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, "2026-01-02T03:04:05Z", turns[0].Timestamp)
	assert.Nil(t, turns[0].Analysis)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Same(t, analysis, turns[1].Analysis)
}

func TestLedger_DoesNotMutateCallerHistory(t *testing.T) {
	history := []models.Turn{{Role: models.RoleUser, Content: "earlier"}}
	l := New(history, fixedClock)
	l.AppendUser("now")

	assert.Len(t, history, 1)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "earlier", l.Turns()[0].Content)
}

func TestLedger_Recent(t *testing.T) {
	var history []models.Turn
	for i := 0; i < 7; i++ {
		history = append(history, models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	history[6].Role = ""

	got := New(history, fixedClock).Recent()

	assert.Equal(t, "user: m2\nuser: m3\nuser: m4\nuser: m5\nuser: m6", got)
}

func TestLedger_RecentEmpty(t *testing.T) {
	assert.Equal(t, "", New(nil, nil).Recent())
}
