package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/staffapp/internal/captcha"
	"github.com/verte-zerg/staffapp/internal/generator"
	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/ratelimit"
	"github.com/verte-zerg/staffapp/internal/sorter"
	"github.com/verte-zerg/staffapp/internal/wizard"
)

const (
	msgPasteRefused = "Вставка в это поле запрещена"
	msgSubmitLast   = "Отправка доступна на последнем шаге"
	msgSubmitting   = "Отправка заявки…"
)

// tickMsg drives the countdown and the elapsed-time display. Ticks from an
// older timer epoch are dropped.
type tickMsg struct {
	epoch uint64
}

type submitDoneMsg struct {
	err error
}

func tickCmd(epoch uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{epoch: epoch}
	})
}

func submitCmd(ctx context.Context, ctl *wizard.Controller) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: ctl.Submit(ctx)}
	}
}

// Options configures a Model.
type Options struct {
	Generator *generator.Generator
	Log       *slog.Logger
	Brand     string
}

// Model is the Bubble Tea front end of the wizard.
type Model struct {
	ctx   context.Context
	ctl   *wizard.Controller
	gen   *generator.Generator
	log   *slog.Logger
	brand string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	vp      viewport.Model

	width  int
	height int

	items     []formItem
	focus     int
	itemLines []int
	sorter    *sorterWidget
	captcha   *captchaWidget

	limit      ratelimit.Status
	notice     string
	modal      *wizard.Error
	submitting bool
}

// New builds a Model over ctl and registers the controller hooks.
func New(ctx context.Context, ctl *wizard.Controller, opts Options) *Model {
	if opts.Generator == nil {
		opts.Generator = generator.New()
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.Brand == "" {
		opts.Brand = "NullX"
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	m := &Model{
		ctx:     ctx,
		ctl:     ctl,
		gen:     opts.Generator,
		log:     opts.Log,
		brand:   opts.Brand,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		vp:      viewport.New(0, 0),
	}
	ctl.SetHooks(wizard.Hooks{
		ScrollTop: func() { m.vp.GotoTop() },
		DraftRestored: func(model.Application) {
			m.notice = wizard.MsgDraftRestored
		},
	})
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.limit = m.ctl.RateLimit(m.ctx)
	return tickCmd(m.ctl.TimerEpoch())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil
	case tickMsg:
		if msg.epoch != m.ctl.TimerEpoch() {
			return m, nil
		}
		if m.ctl.Phase() == wizard.PhaseLanding {
			m.limit = m.ctl.RateLimit(m.ctx)
		}
		return m, tickCmd(msg.epoch)
	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case submitDoneMsg:
		return m, m.finishSubmit(msg.err)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, m.updateFocused(msg)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.modal != nil {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
			m.modal = nil
		}
		return nil
	}
	switch m.ctl.Phase() {
	case wizard.PhaseLanding:
		if key.Matches(msg, m.keys.Start) {
			return m.start()
		}
	case wizard.PhaseEditing:
		if m.submitting {
			return nil
		}
		return m.handleEditingKey(msg)
	case wizard.PhaseSubmitted:
		if key.Matches(msg, m.keys.Reset) {
			return m.reset()
		}
	}
	return nil
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Next):
		return m.next()
	case key.Matches(msg, m.keys.Prev):
		m.ctl.Prev()
		return m.rebuild()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Leave):
		if err := m.ctl.Leave(); err != nil {
			m.showError(err)
			return nil
		}
		m.dropWidgets()
		m.limit = m.ctl.RateLimit(m.ctx)
		return tickCmd(m.ctl.TimerEpoch())
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	case key.Matches(msg, m.keys.FocusNext):
		return m.focusItem(m.focus + 1)
	case key.Matches(msg, m.keys.FocusPrev):
		return m.focusItem(m.focus - 1)
	}
	return m.updateItem(msg)
}

func (m *Model) start() tea.Cmd {
	m.notice = ""
	if err := m.ctl.Start(m.ctx); err != nil {
		m.showError(err)
		return nil
	}
	return m.rebuild()
}

func (m *Model) next() tea.Cmd {
	if m.ctl.Step() == m.ctl.TotalSteps() {
		return m.submit()
	}
	if err := m.ctl.Next(); err != nil {
		m.showError(err)
		return nil
	}
	m.notice = ""
	return m.rebuild()
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	if m.ctl.Step() != m.ctl.TotalSteps() {
		m.notice = msgSubmitLast
		return nil
	}
	m.submitting = true
	m.notice = ""
	return tea.Batch(submitCmd(m.ctx, m.ctl), m.spinner.Tick)
}

func (m *Model) finishSubmit(err error) tea.Cmd {
	m.submitting = false
	switch {
	case err == nil:
		m.dropWidgets()
		return nil
	case errors.Is(err, wizard.ErrSubmitInFlight):
		return nil
	default:
		m.showError(err)
		return nil
	}
}

func (m *Model) reset() tea.Cmd {
	if err := m.ctl.Reset(m.ctx); err != nil {
		m.showError(err)
		return nil
	}
	m.dropWidgets()
	m.notice = ""
	m.limit = m.ctl.RateLimit(m.ctx)
	return tickCmd(m.ctl.TimerEpoch())
}

func (m *Model) showError(err error) {
	if werr, ok := wizard.AsError(err); ok {
		m.modal = werr
		return
	}
	m.log.Error("wizard action failed", "err", err)
	m.modal = &wizard.Error{Title: wizard.TitleError, Message: err.Error()}
}

func (m *Model) dropWidgets() {
	m.items = nil
	m.focus = 0
	m.sorter = nil
	m.captcha = nil
}

// rebuild recreates the blocks of the current step from the record.
func (m *Model) rebuild() tea.Cmd {
	step := m.ctl.CurrentStep()
	app := m.ctl.Application()
	m.items = buildItems(step, m.ctl.Catalog(), app)
	if step.MiniGame && !app.PunishmentTestPassed && m.sorter == nil {
		m.sorter = newSorterWidget(m.gen)
	}
	if step.Captcha && !m.ctl.CaptchaVerified() && m.captcha == nil {
		m.captcha = newCaptchaWidget(m.gen)
	}
	for i := range m.items {
		if m.items[i].field == model.FieldAbout {
			m.items[i].area.KeyMap.Paste.SetEnabled(false)
		}
	}
	m.layout()
	m.focus = 0
	return m.focusItem(0)
}

func (m *Model) focusItem(idx int) tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	idx = (idx + len(m.items)) % len(m.items)
	m.items[m.focus].blur()
	m.focus = idx
	return m.items[idx].focus()
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	if m.ctl.Phase() != wizard.PhaseEditing || len(m.items) == 0 {
		return nil
	}
	it := &m.items[m.focus]
	var cmd tea.Cmd
	switch it.kind {
	case itemInput:
		it.input, cmd = it.input.Update(msg)
	case itemArea:
		it.area, cmd = it.area.Update(msg)
	}
	return cmd
}

func (m *Model) updateItem(msg tea.KeyMsg) tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	it := &m.items[m.focus]
	switch it.kind {
	case itemInput, itemArea:
		return m.updateText(it, msg)
	case itemChoice:
		switch {
		case key.Matches(msg, m.keys.Up):
			it.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			it.moveCursor(1)
		case key.Matches(msg, m.keys.Choose), key.Matches(msg, m.keys.Confirm):
			m.choose(it)
		}
	case itemSorter:
		m.updateSorter(msg)
	case itemCaptcha:
		m.updateCaptcha(msg)
	}
	return nil
}

func (m *Model) updateText(it *formItem, msg tea.KeyMsg) tea.Cmd {
	if msg.Paste && it.field == model.FieldAbout {
		m.notice = msgPasteRefused
		return nil
	}
	if it.kind == itemInput && msg.Type == tea.KeyEnter {
		return m.focusItem(m.focus + 1)
	}
	before := it.value()
	var cmd tea.Cmd
	if it.kind == itemInput {
		it.input, cmd = it.input.Update(msg)
	} else {
		it.area, cmd = it.area.Update(msg)
	}
	raw := it.value()
	if raw == before {
		return cmd
	}
	stored, err := m.ctl.SetField(m.ctx, it.field, raw)
	if err != nil {
		m.log.Warn("field update rejected", "field", it.field.String(), "err", err)
		return cmd
	}
	if stored != raw {
		it.setValue(stored)
	}
	return cmd
}

func (m *Model) choose(it *formItem) {
	if it.cursor >= len(it.question.Options) {
		return
	}
	opt := it.question.Options[it.cursor]
	if _, err := m.ctl.SetField(m.ctx, it.field, opt.Value); err != nil {
		m.showError(err)
	}
}

func (m *Model) updateSorter(msg tea.KeyMsg) {
	if m.sorter == nil {
		return
	}
	var category sorter.Category
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sorter.move(-1)
		return
	case key.Matches(msg, m.keys.Down):
		m.sorter.move(1)
		return
	case key.Matches(msg, m.keys.Choose), key.Matches(msg, m.keys.Confirm):
		m.sorter.selectCurrent()
		return
	case key.Matches(msg, m.keys.Mute):
		category = sorter.Mute
	case key.Matches(msg, m.keys.Ban):
		category = sorter.Ban
	case key.Matches(msg, m.keys.Warn):
		category = sorter.Warn
	default:
		return
	}
	if !m.sorter.assign(category) {
		return
	}
	if err := m.ctl.RecordMiniGame(m.ctx, true, m.sorter.game.Mistakes()); err != nil {
		m.showError(err)
	}
}

func (m *Model) updateCaptcha(msg tea.KeyMsg) {
	if m.captcha == nil || m.ctl.CaptchaVerified() {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.captcha.move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.captcha.move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.captcha.move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.captcha.move(1, 0)
	case key.Matches(msg, m.keys.Choose):
		m.captcha.toggle()
	case key.Matches(msg, m.keys.Confirm):
		var err error
		switch m.captcha.verify() {
		case captcha.Wrong:
			err = m.ctl.RecordCaptcha(false)
		case captcha.Passed:
			err = m.ctl.RecordCaptcha(true)
		}
		if err != nil {
			m.showError(err)
		}
	}
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 72
	}
	w := int(float64(m.width) * 0.70)
	return max(40, min(w, m.width))
}

func (m *Model) layout() {
	width := m.contentWidth()
	for i := range m.items {
		m.items[i].setWidth(width)
	}
	m.vp.Width = width
	m.vp.Height = max(3, m.height-m.chromeHeight())
}

func (m *Model) chromeHeight() int {
	header := lipgloss.Height(stepStyle.Render("X"))
	return header + 3
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.modal != nil {
		return m.viewModal()
	}
	switch m.ctl.Phase() {
	case wizard.PhaseLanding:
		return m.place(m.viewLanding(), m.help.View(m.keys))
	case wizard.PhaseSubmitted:
		return m.place(m.viewSubmitted(), "")
	default:
		return m.viewStep()
	}
}

func (m *Model) place(content, footer string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewLanding() string {
	width := m.contentWidth()
	lines := []string{
		titleStyle.Render(m.brand + " Network"),
		accentStyle.Render("Набор в команду модерации"),
		"",
		wrapText(width, plain(fmt.Sprintf(
			"Анкета состоит из %d шагов: профиль, активность, знание правил и небольшая проверка. Прогресс сохраняется автоматически.",
			m.ctl.TotalSteps()))),
		"",
	}
	if m.limit.Limited {
		lines = append(lines,
			errorStyle.Render("Вы уже отправили заявку."),
			mutedStyle.Render("Повторная подача через "+formatCountdown(m.limit.Remaining)),
		)
	} else {
		lines = append(lines, accentStyle.Render("Нажмите Enter, чтобы начать"))
	}
	if m.notice != "" {
		lines = append(lines, mutedStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewSubmitted() string {
	lines := []string{
		successStyle.Bold(true).Render("Заявка отправлена!"),
		"",
		textStyle.Render("Мы свяжемся с вами в Discord после рассмотрения."),
	}
	if rep, ok := m.ctl.LastReport(); ok {
		lines = append(lines, mutedStyle.Render("Номер заявки: "+rep.ID))
	}
	lines = append(lines, "", footerStyle.Render("ctrl+r новая анкета · ctrl+c выход"))
	return strings.Join(lines, "\n")
}

func (m *Model) viewStep() string {
	step := m.ctl.CurrentStep()
	header := stepStyle.Render(fmt.Sprintf("Шаг %d из %d · %s", m.ctl.Step(), m.ctl.TotalSteps(), step.Title))
	m.syncViewport()

	notice := m.notice
	if m.submitting {
		notice = m.spinner.View() + " " + msgSubmitting
	}
	footer := renderFooter(footerInfo{
		step:   m.ctl.Step(),
		total:  m.ctl.TotalSteps(),
		title:  step.Title,
		spent:  m.ctl.TimeSpent(),
		quiz:   m.ctl.QuizTime(),
		notice: notice,
	})
	content := lipgloss.JoinVertical(lipgloss.Left, header, m.vp.View())
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	bodyHeight := max(1, m.height-2)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Top, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.help.View(m.keys))
	return body + "\n" + footerLine + "\n" + helpLine
}

// syncViewport renders the step body and keeps the focused block visible.
func (m *Model) syncViewport() {
	body := m.renderBody()
	m.vp.SetContent(body)
	if m.focus >= len(m.itemLines) || m.vp.Height == 0 {
		return
	}
	top := m.itemLines[m.focus]
	bottom := top + 1
	if m.focus+1 < len(m.itemLines) {
		bottom = m.itemLines[m.focus+1] - 1
	}
	switch {
	case top < m.vp.YOffset:
		m.vp.SetYOffset(top)
	case bottom >= m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(max(top, bottom-m.vp.Height+1))
	}
}

func (m *Model) renderBody() string {
	width := m.contentWidth()
	app := m.ctl.Application()
	blocks := make([]string, 0, len(m.items))
	m.itemLines = m.itemLines[:0]
	line := 0
	for i, it := range m.items {
		focused := i == m.focus
		var block string
		switch it.kind {
		case itemSorter:
			block = m.viewSorter(app, focused, width)
		case itemCaptcha:
			block = m.viewCaptcha(focused, width)
		default:
			chosen := app.Get(it.field)
			block = it.view(focused, chosen, width)
		}
		m.itemLines = append(m.itemLines, line)
		line += lipgloss.Height(block) + 1
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) viewSorter(app model.Application, focused bool, width int) string {
	title := labelStyle
	if focused {
		title = focusedLabelStyle
	}
	head := title.Render("Сортировка наказаний")
	if app.PunishmentTestPassed || m.sorter == nil {
		return head + "\n" + successStyle.Render(fmt.Sprintf("Пройдено, ошибок: %d", app.PunishmentTestMistakes))
	}
	return head + "\n" + m.sorter.view(focused, width)
}

func (m *Model) viewCaptcha(focused bool, width int) string {
	title := labelStyle
	if focused {
		title = focusedLabelStyle
	}
	head := title.Render("Проверка")
	if m.ctl.CaptchaVerified() || m.captcha == nil {
		return head + "\n" + successStyle.Render("Проверка пройдена")
	}
	return head + "\n" + m.captcha.view(focused, width)
}

func (m *Model) viewModal() string {
	inner := modalInnerWidth(m.width)
	title := accentStyle.Bold(true)
	if m.modal.Kind == wizard.KindDelivery {
		title = errorStyle.Bold(true)
	}
	body := []string{
		title.Render(m.modal.Title),
		"",
		wrapText(inner, plain(m.modal.Message)),
		"",
		footerStyle.Render("enter закрыть"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}
