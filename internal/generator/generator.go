// Package generator produces the randomized layouts used by the mini-games.
package generator

import (
	"math/rand"
	"time"
)

// Generator wraps a seeded random source.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Intn returns a number in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}

// Between returns a number in [lo, hi].
func (g *Generator) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.Intn(hi-lo+1)
}

// Shuffle returns a shuffled copy of items.
func Shuffle[T any](g *Generator, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Pick returns a uniformly chosen item. items must not be empty.
func Pick[T any](g *Generator, items []T) T {
	return items[g.rnd.Intn(len(items))]
}

// PickExcept returns a uniformly chosen item different from skip. When
// every item equals skip, skip is returned.
func PickExcept[T comparable](g *Generator, items []T, skip T) T {
	pool := make([]T, 0, len(items))
	for _, it := range items {
		if it != skip {
			pool = append(pool, it)
		}
	}
	if len(pool) == 0 {
		return skip
	}
	return Pick(g, pool)
}
