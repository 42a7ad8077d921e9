package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/staffapp/internal/format"
	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/quiz"
	"github.com/verte-zerg/staffapp/internal/validate"
)

type itemKind int

const (
	itemInput itemKind = iota
	itemArea
	itemChoice
	itemSorter
	itemCaptcha
)

// formItem is one focusable block of a step.
type formItem struct {
	kind     itemKind
	field    model.Field
	label    string
	input    textinput.Model
	area     textarea.Model
	question quiz.Question
	cursor   int
}

var fieldLabels = map[model.Field]string{
	model.FieldNickname:       "Игровой ник",
	model.FieldDiscord:        "Discord",
	model.FieldAge:            "Возраст",
	model.FieldTimeOnProject:  "Сколько вы играете на проекте?",
	model.FieldHoursDaily:     "Сколько часов в день готовы уделять (0-24)?",
	model.FieldActiveTime:     "Время активности (ЧЧ:ММ-ЧЧ:ММ)",
	model.FieldAbout:          "Расскажите о себе (до 500 символов)",
	model.FieldPreviousModExp: "Опыт модерации (необязательно)",
	model.FieldExpectations:   "Почему вы хотите стать модератором?",
	model.FieldDuties:         "Какие обязанности у модератора?",
}

var fieldPlaceholders = map[model.Field]string{
	model.FieldNickname:      "Steve",
	model.FieldDiscord:       "steve#0001",
	model.FieldAge:           "16",
	model.FieldTimeOnProject: "полгода",
	model.FieldHoursDaily:    "4",
	model.FieldActiveTime:    "18:00-22:30",
}

func newFieldInput(f model.Field) textinput.Model {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = fieldPlaceholders[f]
	input.CharLimit = 0
	if f.Kind() == model.KindActiveTime {
		input.CharLimit = format.ActiveTimeLen
	}
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newFieldArea(f model.Field) textarea.Model {
	area := textarea.New()
	area.ShowLineNumbers = false
	area.Prompt = "┃ "
	area.CharLimit = 0
	if f.Kind() == model.KindLimitedText {
		area.CharLimit = model.AboutMaxRunes
	}
	area.SetHeight(4)
	area.Cursor.SetMode(cursor.CursorBlink)
	return area
}

func isLongText(f model.Field) bool {
	switch f {
	case model.FieldAbout, model.FieldPreviousModExp, model.FieldExpectations, model.FieldDuties:
		return true
	default:
		return false
	}
}

// buildItems lays out the focusable blocks of a step, prefilled from app.
func buildItems(step validate.Step, catalog quiz.Catalog, app model.Application) []formItem {
	items := make([]formItem, 0, len(step.Fields)+2)
	if step.MiniGame {
		items = append(items, formItem{kind: itemSorter, label: "Сортировка наказаний"})
	}
	for _, f := range step.Fields {
		value := app.Get(f)
		switch {
		case f.Kind() == model.KindChoice:
			q, ok := catalog.Question(f)
			if !ok {
				continue
			}
			item := formItem{kind: itemChoice, field: f, label: q.Prompt, question: q}
			for i, opt := range q.Options {
				if opt.Value == value {
					item.cursor = i
				}
			}
			items = append(items, item)
		case isLongText(f):
			area := newFieldArea(f)
			area.SetValue(value)
			items = append(items, formItem{kind: itemArea, field: f, label: fieldLabels[f], area: area})
		default:
			input := newFieldInput(f)
			input.SetValue(value)
			input.CursorEnd()
			items = append(items, formItem{kind: itemInput, field: f, label: fieldLabels[f], input: input})
		}
	}
	if step.Captcha {
		items = append(items, formItem{kind: itemCaptcha, label: "Проверка"})
	}
	return items
}

func (it *formItem) focus() tea.Cmd {
	switch it.kind {
	case itemInput:
		return it.input.Focus()
	case itemArea:
		return it.area.Focus()
	default:
		return nil
	}
}

func (it *formItem) blur() {
	switch it.kind {
	case itemInput:
		it.input.Blur()
	case itemArea:
		it.area.Blur()
	}
}

func (it *formItem) setWidth(width int) {
	switch it.kind {
	case itemInput:
		it.input.Width = max(10, width-3)
	case itemArea:
		it.area.SetWidth(max(10, width))
	}
}

// value returns the raw text held by a text block.
func (it *formItem) value() string {
	switch it.kind {
	case itemInput:
		return it.input.Value()
	case itemArea:
		return it.area.Value()
	default:
		return ""
	}
}

// setValue writes a normalized value back into the widget.
func (it *formItem) setValue(v string) {
	switch it.kind {
	case itemInput:
		it.input.SetValue(v)
		it.input.CursorEnd()
	case itemArea:
		it.area.SetValue(v)
	}
}

func (it *formItem) moveCursor(delta int) {
	n := len(it.question.Options)
	if n == 0 {
		return
	}
	it.cursor = (it.cursor + delta + n) % n
}

func (it formItem) view(focused bool, chosen string, width int) string {
	label := labelStyle
	if focused {
		label = focusedLabelStyle
	}
	lines := []string{wrapText(width, segment{text: it.label, style: label})}
	switch it.kind {
	case itemInput:
		lines = append(lines, it.input.View())
	case itemArea:
		lines = append(lines, it.area.View())
		if it.field.Kind() == model.KindLimitedText {
			count := len([]rune(it.area.Value()))
			lines = append(lines, mutedStyle.Render(formatCounter(count, model.AboutMaxRunes)))
		}
	case itemChoice:
		for i, opt := range it.question.Options {
			lines = append(lines, optionLine(opt, i == it.cursor && focused, opt.Value == chosen))
		}
	}
	return strings.Join(lines, "\n")
}

func optionLine(opt quiz.Option, atCursor, chosen bool) string {
	mark := "( )"
	if chosen {
		mark = "(•)"
	}
	style := optionStyle
	switch {
	case atCursor:
		style = cursorOptionStyle
	case chosen:
		style = chosenOptionStyle
	}
	prefix := "  "
	if atCursor {
		prefix = "› "
	}
	return style.Render(prefix + mark + " " + opt.Label)
}
