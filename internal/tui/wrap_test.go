package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var bare = lipgloss.NewStyle()

func TestBuildStyledRunesAppliesSegmentStyles(t *testing.T) {
	runes := buildStyledRunes(segment{text: "ab", style: accentStyle}, segment{text: "c", style: errorStyle})
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[0].s != accentStyle.Render("a") {
		t.Fatalf("expected accent style for first rune")
	}
	if runes[2].s != errorStyle.Render("c") {
		t.Fatalf("expected error style for last rune")
	}
}

func TestBuildStyledRunesMarksBreaksAndSpaces(t *testing.T) {
	runes := buildStyledRunes(segment{text: "a b\r\nc", style: bare})
	if len(runes) != 5 {
		t.Fatalf("expected 5 runes, got %d", len(runes))
	}
	if !runes[1].isSpace {
		t.Fatalf("expected space at index 1")
	}
	if !runes[3].isBreak {
		t.Fatalf("expected line break at index 3")
	}
}

func TestWrapTextBreaksOnSpaces(t *testing.T) {
	out := wrapText(10, segment{text: "Правила сервера NullX", style: bare})
	want := "Правила\nсервера\nNullX"
	if out != want {
		t.Fatalf("unexpected wrap:\n%q\nwant\n%q", out, want)
	}
}

func TestWrapTextKeepsExplicitNewlines(t *testing.T) {
	out := wrapText(40, segment{text: "one\ntwo", style: bare})
	if out != "one\ntwo" {
		t.Fatalf("expected newline to survive, got %q", out)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	out := wrapText(4, segment{text: "abcdefghij", style: bare})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "abcd" || lines[2] != "ij" {
		t.Fatalf("unexpected split: %q", out)
	}
}

func TestWrapTextZeroWidthIsUnwrapped(t *testing.T) {
	out := wrapText(0, segment{text: "a long line", style: bare})
	if out != "a long line" {
		t.Fatalf("expected unwrapped text, got %q", out)
	}
}
