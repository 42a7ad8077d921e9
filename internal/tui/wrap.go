// Package tui provides the Bubble Tea recruitment wizard.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// segment is a run of text rendered with one style.
type segment struct {
	text  string
	style lipgloss.Style
}

func plain(text string) segment {
	return segment{text: text, style: textStyle}
}

type styledRune struct {
	s       string
	width   int
	isSpace bool
	isBreak bool
}

func buildStyledRunes(segments ...segment) []styledRune {
	out := []styledRune{}
	for _, seg := range segments {
		for _, r := range seg.text {
			switch r {
			case '\n':
				out = append(out, styledRune{isBreak: true})
			case '\r':
			default:
				out = append(out, styledRune{
					s:       seg.style.Render(string(r)),
					width:   runewidth.RuneWidth(r),
					isSpace: r == ' ',
				})
			}
		}
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		if item.isBreak {
			b.WriteRune('\n')
			continue
		}
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapText word-wraps segments to width cells. Explicit newlines are kept.
func wrapText(width int, segments ...segment) string {
	return wrapStyledRunes(buildStyledRunes(segments...), width)
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	flush := func() {
		out.WriteString(renderStyledRunes(line))
		out.WriteRune('\n')
		line = line[:0]
		lineWidth = 0
		lastSpaceIdx = -1
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if item.isBreak {
			flush()
			i++
			continue
		}
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				flush()
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
