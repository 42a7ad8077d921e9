// Package captcha implements the two-stage "select every matching tile"
// check shown on the closing step.
package captcha

import (
	"errors"

	"github.com/verte-zerg/staffapp/internal/generator"
)

// GridSize is the number of tiles on the board.
const GridSize = 9

// Stages is the number of boards that must be solved in a row.
const Stages = 2

// Item is a tile picture.
type Item struct {
	Key  string
	Name string
}

// Targets are the categories the player may be asked to find.
var Targets = []Item{
	{Key: "apple", Name: "Золотые яблоки"},
	{Key: "sword", Name: "Алмазные мечи"},
	{Key: "creeper", Name: "Криперов"},
	{Key: "tnt", Name: "ТНТ"},
}

// Decoys fill the remaining tiles.
var Decoys = []Item{
	{Key: "chest", Name: "Сундук"},
	{Key: "bread", Name: "Хлеб"},
	{Key: "stone", Name: "Камень"},
	{Key: "log", Name: "Дубовое бревно"},
	{Key: "iron", Name: "Железный слиток"},
}

// Tile is one board cell.
type Tile struct {
	Item   Item
	Target bool
}

// Result is the outcome of Verify.
type Result int

const (
	// Empty means nothing was selected; the board is unchanged.
	Empty Result = iota
	// Wrong means the selection was incorrect and the board restarted at stage 1.
	Wrong
	// NextStage means the board was solved and a new one dealt.
	NextStage
	// Passed means the final stage was solved.
	Passed
)

// ErrIndex is returned for tiles outside the grid.
var ErrIndex = errors.New("tile index out of range")

// Challenge is the board state.
type Challenge struct {
	gen      *generator.Generator
	target   Item
	tiles    [GridSize]Tile
	selected [GridSize]bool
	stage    int
	passed   bool
}

// New deals the first board.
func New(g *generator.Generator) *Challenge {
	c := &Challenge{gen: g}
	c.deal(1)
	return c
}

func (c *Challenge) deal(stage int) {
	c.stage = stage
	c.target = generator.Pick(c.gen, Targets)
	c.selected = [GridSize]bool{}
	count := c.gen.Between(2, 4)
	tiles := make([]Tile, GridSize)
	for i := range tiles {
		if i < count {
			tiles[i] = Tile{Item: c.target, Target: true}
			continue
		}
		tiles[i] = Tile{Item: generator.Pick(c.gen, Decoys)}
	}
	copy(c.tiles[:], generator.Shuffle(c.gen, tiles))
}

// Target returns the category to find.
func (c *Challenge) Target() Item {
	return c.target
}

// Stage returns the current stage, starting at 1.
func (c *Challenge) Stage() int {
	return c.stage
}

// Tiles returns the board.
func (c *Challenge) Tiles() [GridSize]Tile {
	return c.tiles
}

// IsSelected reports whether tile i is selected.
func (c *Challenge) IsSelected(i int) bool {
	return i >= 0 && i < GridSize && c.selected[i]
}

// Passed reports whether every stage has been solved.
func (c *Challenge) Passed() bool {
	return c.passed
}

// Toggle flips the selection of tile i.
func (c *Challenge) Toggle(i int) error {
	if i < 0 || i >= GridSize {
		return ErrIndex
	}
	if c.passed {
		return nil
	}
	c.selected[i] = !c.selected[i]
	return nil
}

// Verify checks the selection. It must match every target tile and no
// decoy.
func (c *Challenge) Verify() Result {
	if c.passed {
		return Passed
	}
	picked := false
	correct := true
	for i, tile := range c.tiles {
		if c.selected[i] {
			picked = true
		}
		if c.selected[i] != tile.Target {
			correct = false
		}
	}
	if !picked {
		return Empty
	}
	if !correct {
		c.deal(1)
		return Wrong
	}
	if c.stage < Stages {
		c.deal(c.stage + 1)
		return NextStage
	}
	c.passed = true
	return Passed
}

// Restart deals a fresh stage-1 board.
func (c *Challenge) Restart() {
	c.passed = false
	c.deal(1)
}
