// Package sorter implements the punishment sorting mini-game: every
// violation must be dropped into the punishment it deserves.
package sorter

import (
	"errors"

	"github.com/verte-zerg/staffapp/internal/generator"
)

// Category is a punishment bucket.
type Category string

// Buckets offered to the player. Warn has no violations on purpose.
const (
	Mute Category = "mute"
	Ban  Category = "ban"
	Warn Category = "warn"
)

// Categories lists the buckets in display order.
var Categories = []Category{Mute, Ban, Warn}

// Label returns the display name of c.
func (c Category) Label() string {
	switch c {
	case Mute:
		return "MUTE"
	case Ban:
		return "BAN"
	case Warn:
		return "WARN"
	default:
		return string(c)
	}
}

// Violation is one item to sort.
type Violation struct {
	ID       int
	Text     string
	Category Category
}

// DefaultViolations is the stock item set.
var DefaultViolations = []Violation{
	{ID: 1, Text: "Спам в чате", Category: Mute},
	{ID: 2, Text: "Читы (KillAura)", Category: Ban},
	{ID: 3, Text: "Реклама стороннего сервера", Category: Ban},
	{ID: 4, Text: "Оскорбление родных", Category: Ban},
	{ID: 5, Text: "Капс (Caps Lock)", Category: Mute},
}

var (
	// ErrNothingSelected is returned by Assign without a selection.
	ErrNothingSelected = errors.New("no violation selected")
	// ErrUnknownViolation is returned for ids outside the game.
	ErrUnknownViolation = errors.New("unknown violation")
	// ErrAlreadySorted is returned when selecting a finished item.
	ErrAlreadySorted = errors.New("violation already sorted")
	// ErrFinished is returned once every item is sorted.
	ErrFinished = errors.New("sorting already finished")
)

// Game is one round of the sorter.
type Game struct {
	items    []Violation
	sorted   map[int]bool
	selected int
	mistakes int
}

// New starts a round with the default items in random order.
func New(g *generator.Generator) *Game {
	return NewWith(g, DefaultViolations)
}

// NewWith starts a round over items in random order.
func NewWith(g *generator.Generator, items []Violation) *Game {
	return &Game{
		items:  generator.Shuffle(g, items),
		sorted: map[int]bool{},
	}
}

// Items returns every violation in board order.
func (g *Game) Items() []Violation {
	out := make([]Violation, len(g.items))
	copy(out, g.items)
	return out
}

// IsSorted reports whether id has been placed.
func (g *Game) IsSorted(id int) bool {
	return g.sorted[id]
}

// Selected returns the selected violation.
func (g *Game) Selected() (Violation, bool) {
	if g.selected == 0 {
		return Violation{}, false
	}
	v, ok := g.find(g.selected)
	return v, ok
}

// Select toggles the selection of id.
func (g *Game) Select(id int) error {
	if g.Done() {
		return ErrFinished
	}
	if _, ok := g.find(id); !ok {
		return ErrUnknownViolation
	}
	if g.sorted[id] {
		return ErrAlreadySorted
	}
	if g.selected == id {
		g.selected = 0
		return nil
	}
	g.selected = id
	return nil
}

// Assign drops the selected violation into c. A wrong bucket counts a
// mistake. Either way the selection is cleared.
func (g *Game) Assign(c Category) (bool, error) {
	if g.Done() {
		return false, ErrFinished
	}
	v, ok := g.Selected()
	if !ok {
		return false, ErrNothingSelected
	}
	g.selected = 0
	if v.Category != c {
		g.mistakes++
		return false, nil
	}
	g.sorted[v.ID] = true
	return true, nil
}

// Mistakes returns the number of wrong drops.
func (g *Game) Mistakes() int {
	return g.mistakes
}

// Remaining returns the number of unsorted violations.
func (g *Game) Remaining() int {
	return len(g.items) - len(g.sorted)
}

// Done reports whether every violation is sorted.
func (g *Game) Done() bool {
	return len(g.items) > 0 && g.Remaining() == 0
}

func (g *Game) find(id int) (Violation, bool) {
	for _, v := range g.items {
		if v.ID == id {
			return v, true
		}
	}
	return Violation{}, false
}
