package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start     key.Binding
	Next      key.Binding
	Prev      key.Binding
	Submit    key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Choose    key.Binding
	Confirm   key.Binding
	Mute      key.Binding
	Ban       key.Binding
	Warn      key.Binding
	Leave     key.Binding
	Reset     key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "начать")),
		Next:      key.NewBinding(key.WithKeys("ctrl+n", "pgdown"), key.WithHelp("ctrl+n", "далее")),
		Prev:      key.NewBinding(key.WithKeys("ctrl+b", "pgup"), key.WithHelp("ctrl+b", "назад")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "отправить")),
		FocusNext: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "след. поле")),
		FocusPrev: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "пред. поле")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "вверх")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "вниз")),
		Left:      key.NewBinding(key.WithKeys("left")),
		Right:     key.NewBinding(key.WithKeys("right")),
		Choose:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "выбрать")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "подтвердить")),
		Mute:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "MUTE")),
		Ban:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "BAN")),
		Warn:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "WARN")),
		Leave:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "на главную")),
		Reset:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "сбросить")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "выход")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusNext, k.Next, k.Prev, k.Submit, k.Leave, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FocusNext, k.FocusPrev, k.Up, k.Down, k.Choose, k.Confirm},
		{k.Next, k.Prev, k.Submit},
		{k.Mute, k.Ban, k.Warn},
		{k.Leave, k.Reset, k.Quit},
	}
}
