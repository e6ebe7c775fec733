package responder

import (
	"math/rand"
	"sync"
	"time"
)

// Picker draws templates uniformly at random, never handing out the same
// template of a family twice in a row.
type Picker struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last map[Family]int
}

func NewPicker(seed int64) *Picker {
	return &Picker{
		rng:  rand.New(rand.NewSource(seed)),
		last: make(map[Family]int),
	}
}

// NewTimeSeededPicker seeds the picker from the wall clock.
func NewTimeSeededPicker() *Picker {
	return NewPicker(time.Now().UnixNano())
}

// Pick returns a template from the given list. The previous index for
// the family is excluded whenever more than one template exists.
func (p *Picker) Pick(family Family, templates []string) string {
	if len(templates) == 0 {
		return DefaultResponse
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	prev, seen := p.last[family]
	if len(templates) == 1 || !seen || prev >= len(templates) {
		idx := p.rng.Intn(len(templates))
		p.last[family] = idx
		return templates[idx]
	}

	// draw from the n-1 other slots and shift past the previous one
	idx := p.rng.Intn(len(templates) - 1)
	if idx >= prev {
		idx++
	}
	p.last[family] = idx
	return templates[idx]
}
