package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/staffapp/internal/captcha"
	"github.com/verte-zerg/staffapp/internal/generator"
	"github.com/verte-zerg/staffapp/internal/sorter"
)

type sorterWidget struct {
	game   *sorter.Game
	cursor int
	note   string
	ok     bool
}

func newSorterWidget(g *generator.Generator) *sorterWidget {
	return &sorterWidget{game: sorter.New(g)}
}

func (w *sorterWidget) move(delta int) {
	n := len(w.game.Items())
	if n == 0 {
		return
	}
	w.cursor = (w.cursor + delta + n) % n
}

func (w *sorterWidget) selectCurrent() {
	items := w.game.Items()
	if w.cursor >= len(items) {
		return
	}
	switch err := w.game.Select(items[w.cursor].ID); {
	case errors.Is(err, sorter.ErrAlreadySorted):
		w.note, w.ok = "Это нарушение уже распределено", false
	case err != nil:
		w.note, w.ok = err.Error(), false
	default:
		w.note = ""
	}
}

// assign drops the selected violation into c and reports whether the game
// just finished.
func (w *sorterWidget) assign(c sorter.Category) bool {
	correct, err := w.game.Assign(c)
	switch {
	case errors.Is(err, sorter.ErrNothingSelected):
		w.note, w.ok = "Сначала выберите нарушение (space)", false
		return false
	case err != nil:
		w.note, w.ok = err.Error(), false
		return false
	case correct:
		w.note, w.ok = "Верно!", true
	default:
		w.note, w.ok = "Неверно, попробуйте ещё раз", false
	}
	return w.game.Done()
}

func (w *sorterWidget) view(focused bool, width int) string {
	lines := []string{mutedStyle.Render(wrapText(width, plain("Выберите нарушение и нажмите 1 (MUTE), 2 (BAN) или 3 (WARN).")))}
	selected, hasSelected := w.game.Selected()
	for i, v := range w.game.Items() {
		prefix := "  "
		style := textStyle
		if focused && i == w.cursor {
			prefix = "› "
			style = accentStyle
		}
		text := v.Text
		switch {
		case w.game.IsSorted(v.ID):
			style = successStyle
			text += " → " + v.Category.Label()
		case hasSelected && selected.ID == v.ID:
			style = style.Underline(true)
			text = "[" + text + "]"
		}
		lines = append(lines, style.Render(prefix+text))
	}
	buckets := make([]string, 0, len(sorter.Categories))
	for i, c := range sorter.Categories {
		buckets = append(buckets, stepStyle.Render(fmt.Sprintf("%d %s", i+1, c.Label())))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, buckets...))
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("Осталось: %d · Ошибок: %d", w.game.Remaining(), w.game.Mistakes())))
	if w.note != "" {
		lines = append(lines, noteStyle(w.ok).Render(w.note))
	}
	return strings.Join(lines, "\n")
}

type captchaWidget struct {
	ch     *captcha.Challenge
	cursor int
	note   string
	ok     bool
}

func newCaptchaWidget(g *generator.Generator) *captchaWidget {
	return &captchaWidget{ch: captcha.New(g)}
}

const captchaCols = 3

func (w *captchaWidget) move(dx, dy int) {
	row := w.cursor / captchaCols
	col := w.cursor % captchaCols
	rows := captcha.GridSize / captchaCols
	col = (col + dx + captchaCols) % captchaCols
	row = (row + dy + rows) % rows
	w.cursor = row*captchaCols + col
}

func (w *captchaWidget) toggle() {
	if err := w.ch.Toggle(w.cursor); err != nil {
		w.note, w.ok = err.Error(), false
	}
}

// verify checks the board. It returns the result so the caller can count
// the attempt.
func (w *captchaWidget) verify() captcha.Result {
	res := w.ch.Verify()
	switch res {
	case captcha.Empty:
		w.note, w.ok = "Выберите хотя бы одну клетку", false
	case captcha.Wrong:
		w.note, w.ok = "Неверно. Попробуйте снова", false
	case captcha.NextStage:
		w.note, w.ok = fmt.Sprintf("Этап %d из %d", w.ch.Stage(), captcha.Stages), true
	case captcha.Passed:
		w.note, w.ok = "Проверка пройдена", true
	}
	return res
}

func (w *captchaWidget) view(focused bool, width int) string {
	prompt := wrapText(width,
		plain("Выберите все изображения: "),
		segment{text: w.ch.Target().Name, style: accentStyle.Bold(true)},
	)
	tiles := w.ch.Tiles()
	rows := make([]string, 0, captcha.GridSize/captchaCols)
	for r := 0; r < captcha.GridSize/captchaCols; r++ {
		cells := make([]string, 0, captchaCols)
		for c := 0; c < captchaCols; c++ {
			i := r*captchaCols + c
			style := tileStyle
			switch {
			case focused && i == w.cursor:
				style = tileCursorStyle
			case w.ch.IsSelected(i):
				style = tileSelectedStyle
			}
			name := tiles[i].Item.Name
			if w.ch.IsSelected(i) {
				name = "✓ " + name
			}
			cells = append(cells, style.Render(name))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	lines := []string{
		prompt,
		mutedStyle.Render(fmt.Sprintf("Этап %d/%d · стрелки, space, enter", w.ch.Stage(), captcha.Stages)),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	}
	if w.note != "" {
		lines = append(lines, noteStyle(w.ok).Render(w.note))
	}
	return strings.Join(lines, "\n")
}

func noteStyle(ok bool) lipgloss.Style {
	if ok {
		return successStyle
	}
	return errorStyle
}
