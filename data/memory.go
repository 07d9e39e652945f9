package data

import (
	"math/rand"
)

// InMemory serves a fixed slice of batches, for tests and corpora small
// enough to prepare up front.
type InMemory struct {
	batches []Batch
	order   []int
	pos     int
	shuffle bool
	rng     *rand.Rand
}

func NewInMemory(batches ...Batch) *InMemory {
	m := &InMemory{batches: batches, order: make([]int, len(batches))}
	for i := range m.order {
		m.order[i] = i
	}
	return m
}

// SetShuffle makes every Reset deal the batches in a fresh order drawn from
// a PRNG seeded here. Without it the stored order is kept.
func (m *InMemory) SetShuffle(seed int64) {
	m.shuffle = true
	m.rng = rand.New(rand.NewSource(seed))
}

func (m *InMemory) Reset() error {
	m.pos = 0
	if m.shuffle {
		m.rng.Shuffle(len(m.order), func(i, j int) {
			m.order[i], m.order[j] = m.order[j], m.order[i]
		})
	}
	return nil
}

func (m *InMemory) Scan() bool {
	if m.pos >= len(m.batches) {
		return false
	}
	m.pos++
	return true
}

func (m *InMemory) Batch() Batch {
	if m.pos == 0 {
		return nil
	}
	return m.batches[m.order[m.pos-1]]
}

func (m *InMemory) Err() error { return nil }

// Len reports how many batches one full pass yields.
func (m *InMemory) Len() int { return len(m.batches) }
