// Package wizard owns the application state machine: step navigation,
// draft persistence, the cooldown gate and submission.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/staffapp/internal/draft"
	"github.com/verte-zerg/staffapp/internal/format"
	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/quiz"
	"github.com/verte-zerg/staffapp/internal/ratelimit"
	"github.com/verte-zerg/staffapp/internal/report"
	"github.com/verte-zerg/staffapp/internal/validate"
)

// Phase is the lifecycle position of the wizard.
type Phase int

const (
	PhaseLanding Phase = iota
	PhaseEditing
	PhaseSubmitting
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseLanding:
		return "landing"
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Sender delivers an assembled report.
type Sender interface {
	Send(ctx context.Context, r report.Report) bool
}

// Journal records delivery attempts.
type Journal interface {
	RecordSubmission(ctx context.Context, sub model.Submission) error
}

// Hooks are optional callbacks for front ends. They run without the
// controller lock held.
type Hooks struct {
	ScrollTop     func()
	DraftRestored func(app model.Application)
}

// Config wires the controller's collaborators.
type Config struct {
	Flow      validate.Flow
	Catalog   quiz.Catalog
	Drafts    *draft.Store
	Limiter   *ratelimit.Limiter
	Assembler *report.Assembler
	Sender    Sender
	Journal   Journal
	Clock     func() time.Time
	UserAgent string
	Log       *slog.Logger
	Hooks     Hooks
}

// Controller is the wizard state machine. It is safe for concurrent use;
// the lock is released while a report is being delivered.
type Controller struct {
	cfg Config

	mu              sync.Mutex
	phase           Phase
	step            int
	app             model.Application
	captchaVerified bool
	captchaAttempts int
	startedAt       time.Time
	quizStartedAt   time.Time
	epoch           uint64
	lastReport      *report.Report
}

// New returns a controller on the landing phase.
func New(cfg Config) *Controller {
	if cfg.Flow == nil {
		cfg.Flow = validate.FullFlow()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		cfg:   cfg,
		phase: PhaseLanding,
		step:  1,
		app:   model.DefaultApplication(),
	}
}

// SetHooks replaces the front-end callbacks. Call it before the
// controller is shared with other goroutines.
func (c *Controller) SetHooks(h Hooks) {
	c.cfg.Hooks = h
}

// Flow returns the step list.
func (c *Controller) Flow() validate.Flow {
	return c.cfg.Flow
}

// Catalog returns the quiz catalog.
func (c *Controller) Catalog() quiz.Catalog {
	return c.cfg.Catalog
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Step returns the current 1-based step.
func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// TotalSteps returns the number of steps.
func (c *Controller) TotalSteps() int {
	return c.cfg.Flow.Len()
}

// CurrentStep returns the descriptor of the current step.
func (c *Controller) CurrentStep() validate.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, _ := c.cfg.Flow.Step(c.step)
	return s
}

// Application returns a copy of the record.
func (c *Controller) Application() model.Application {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.app
}

// CaptchaVerified reports whether the CAPTCHA is solved.
func (c *Controller) CaptchaVerified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captchaVerified
}

// CaptchaAttempts returns the number of CAPTCHA verifications.
func (c *Controller) CaptchaAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captchaAttempts
}

// TimerEpoch changes whenever running timers must stop. Front ends tag
// their ticks with it and drop ticks from an older epoch.
func (c *Controller) TimerEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// TimeSpent returns the time since the wizard was entered.
func (c *Controller) TimeSpent() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.since(c.startedAt)
}

// QuizTime returns the time since the first quiz step was entered, or zero.
func (c *Controller) QuizTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.since(c.quizStartedAt)
}

// LastReport returns the report of the latest submission attempt.
func (c *Controller) LastReport() (report.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastReport == nil {
		return report.Report{}, false
	}
	return *c.lastReport, true
}

// RateLimit returns the cooldown status at the current time.
func (c *Controller) RateLimit(ctx context.Context) ratelimit.Status {
	if c.cfg.Limiter == nil {
		return ratelimit.Status{}
	}
	return c.cfg.Limiter.Check(ctx, c.cfg.Clock())
}

// Start leaves the landing phase and enters step 1. It is refused while
// the cooldown is active.
func (c *Controller) Start(ctx context.Context) error {
	if c.Phase() != PhaseLanding {
		return ErrNotLanding
	}
	if st := c.RateLimit(ctx); st.Limited {
		return rateLimitedError(st.Remaining)
	}

	c.mu.Lock()
	if c.phase != PhaseLanding {
		c.mu.Unlock()
		return ErrNotLanding
	}
	c.phase = PhaseEditing
	c.step = 1
	c.mu.Unlock()

	c.OnMount(ctx)
	return nil
}

// OnMount runs when the wizard view appears: timers start and a saved
// draft with a nickname is restored. The step position is not restored.
func (c *Controller) OnMount(ctx context.Context) {
	var restored *model.Application
	if c.cfg.Drafts != nil {
		if app, ok := c.cfg.Drafts.Load(ctx); ok && notBlank(app.Nickname) {
			restored = &app
		}
	}

	c.mu.Lock()
	c.startedAt = c.cfg.Clock()
	c.quizStartedAt = time.Time{}
	if restored != nil {
		c.app = *restored
	}
	c.enterStepLocked()
	c.mu.Unlock()

	if restored != nil {
		c.cfg.Log.Info("draft restored", "nickname", restored.Nickname)
		if c.cfg.Hooks.DraftRestored != nil {
			c.cfg.Hooks.DraftRestored(*restored)
		}
	}
}

// OnUnmount stops the wizard's timers.
func (c *Controller) OnUnmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
}

// OnApplicationChange persists the record after a mutation. Saves only
// happen while editing.
func (c *Controller) OnApplicationChange(ctx context.Context) {
	c.mu.Lock()
	if c.phase != PhaseEditing || c.cfg.Drafts == nil {
		c.mu.Unlock()
		return
	}
	app := c.app
	c.mu.Unlock()

	if err := c.cfg.Drafts.Save(ctx, app); err != nil {
		c.cfg.Log.Warn("draft save failed", "err", err)
	}
}

// SetField normalizes raw for field f, stores it and saves the draft. It
// returns the stored value.
func (c *Controller) SetField(ctx context.Context, f model.Field, raw string) (string, error) {
	if !f.Valid() {
		return "", fmt.Errorf("set field: unknown field %d", int(f))
	}
	value := normalize(f, raw)
	if f.Kind() == model.KindChoice && !c.cfg.Catalog.ValidOption(f, value) {
		return "", fmt.Errorf("%w %q for %s", ErrUnknownOption, value, f)
	}

	c.mu.Lock()
	if c.phase != PhaseEditing {
		c.mu.Unlock()
		return "", ErrNotEditing
	}
	if err := c.app.Set(f, value); err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.mu.Unlock()

	c.OnApplicationChange(ctx)
	return value, nil
}

func normalize(f model.Field, raw string) string {
	switch f.Kind() {
	case model.KindDigits:
		return format.DigitsOnly(raw)
	case model.KindHours:
		return format.BoundedInteger(raw, model.HoursDailyMax)
	case model.KindActiveTime:
		return format.ActiveTimeMask(raw)
	case model.KindLimitedText:
		return format.LimitRunes(raw, model.AboutMaxRunes)
	default:
		return raw
	}
}

// RecordMiniGame stores the punishment sorter outcome.
func (c *Controller) RecordMiniGame(ctx context.Context, passed bool, mistakes int) error {
	if mistakes < 0 {
		mistakes = 0
	}
	c.mu.Lock()
	if c.phase != PhaseEditing {
		c.mu.Unlock()
		return ErrNotEditing
	}
	c.app.PunishmentTestPassed = passed
	c.app.PunishmentTestMistakes = mistakes
	c.mu.Unlock()

	c.OnApplicationChange(ctx)
	return nil
}

// RecordCaptcha counts one verification and stores its outcome.
func (c *Controller) RecordCaptcha(ok bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseEditing {
		return ErrNotEditing
	}
	c.captchaAttempts++
	c.captchaVerified = ok
	return nil
}

// Next advances when the current step validates.
func (c *Controller) Next() error {
	c.mu.Lock()
	if c.phase != PhaseEditing {
		c.mu.Unlock()
		return ErrNotEditing
	}
	side := c.sideLocked()
	if !c.cfg.Flow.ValidateStep(c.step, c.app, side) {
		err := c.stepErrorLocked()
		c.mu.Unlock()
		return err
	}
	if c.step < c.cfg.Flow.Len() {
		c.step++
		c.enterStepLocked()
	}
	c.mu.Unlock()

	c.scrollTop()
	return nil
}

// Prev moves back one step, never below 1.
func (c *Controller) Prev() {
	c.mu.Lock()
	if c.phase != PhaseEditing {
		c.mu.Unlock()
		return
	}
	if c.step > 1 {
		c.step--
	}
	c.mu.Unlock()

	c.scrollTop()
}

// Submit validates the whole record, assembles the report and delivers
// it. Only one submission may be in flight.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch c.phase {
	case PhaseSubmitting:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case PhaseEditing:
	default:
		c.mu.Unlock()
		return ErrNotEditing
	}
	if c.step != c.cfg.Flow.Len() {
		c.mu.Unlock()
		return ErrNotFinalStep
	}
	side := c.sideLocked()
	if !c.cfg.Flow.Complete(c.app, side) {
		c.mu.Unlock()
		if !side.CaptchaVerified {
			return validationError(TitleError, MsgCaptcha)
		}
		return validationError(TitleError, MsgIncompleteForm)
	}

	c.phase = PhaseSubmitting
	now := c.cfg.Clock()
	analytics := model.Analytics{
		TimeSpentSeconds: seconds(now, c.startedAt),
		QuizTimeSeconds:  seconds(now, c.quizStartedAt),
		CaptchaAttempts:  c.captchaAttempts,
		UserAgent:        c.cfg.UserAgent,
	}
	app := c.app
	c.mu.Unlock()

	var rep report.Report
	if c.cfg.Assembler != nil {
		rep = c.cfg.Assembler.Assemble(app, analytics)
	}
	sent := c.cfg.Sender != nil && c.cfg.Sender.Send(ctx, rep)
	c.journal(ctx, rep, sent)

	if !sent {
		c.mu.Lock()
		c.phase = PhaseEditing
		c.lastReport = &rep
		c.mu.Unlock()
		c.cfg.Log.Warn("submission failed", "report_id", rep.ID)
		return deliveryError()
	}

	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Record(ctx, c.cfg.Clock()); err != nil {
			c.cfg.Log.Warn("rate limit record failed", "err", err)
		}
	}
	if c.cfg.Drafts != nil {
		if err := c.cfg.Drafts.Clear(ctx); err != nil {
			c.cfg.Log.Warn("draft clear failed", "err", err)
		}
	}

	c.mu.Lock()
	c.phase = PhaseSubmitted
	c.lastReport = &rep
	c.epoch++
	c.mu.Unlock()
	c.cfg.Log.Info("submission delivered", "report_id", rep.ID, "suspicious", rep.Suspicious)
	return nil
}

// Reset drops all progress and returns to the landing phase. It works
// from any phase except submitting.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == PhaseSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.phase = PhaseLanding
	c.step = 1
	c.app = model.DefaultApplication()
	c.captchaVerified = false
	c.captchaAttempts = 0
	c.startedAt = time.Time{}
	c.quizStartedAt = time.Time{}
	c.lastReport = nil
	c.epoch++
	c.mu.Unlock()

	if c.cfg.Drafts != nil {
		if err := c.cfg.Drafts.Clear(ctx); err != nil {
			c.cfg.Log.Warn("draft clear failed", "err", err)
		}
	}
	c.scrollTop()
	return nil
}

// Leave returns to the landing phase and keeps the saved draft.
func (c *Controller) Leave() error {
	c.mu.Lock()
	if c.phase != PhaseEditing {
		c.mu.Unlock()
		return ErrNotEditing
	}
	c.phase = PhaseLanding
	c.step = 1
	c.captchaVerified = false
	c.mu.Unlock()

	c.OnUnmount()
	return nil
}

func (c *Controller) journal(ctx context.Context, rep report.Report, delivered bool) {
	if c.cfg.Journal == nil || rep.ID == "" {
		return
	}
	if err := c.cfg.Journal.RecordSubmission(ctx, rep.Submission(delivered)); err != nil {
		c.cfg.Log.Warn("journal write failed", "err", err)
	}
}

func (c *Controller) stepErrorLocked() error {
	step, _ := c.cfg.Flow.Step(c.step)
	if step.MiniGame && !c.app.PunishmentTestPassed {
		return validationError(TitleWarning, MsgMiniGame)
	}
	if step.HasField(model.FieldActiveTime) {
		n := len(c.app.ActiveTime)
		if n > 0 && n < format.ActiveTimeLen {
			return validationError(TitleWarning, MsgActiveTimeFormat)
		}
	}
	return validationError(TitleWarning, MsgIncompleteStep)
}

// enterStepLocked starts the quiz timer on the first quiz step.
func (c *Controller) enterStepLocked() {
	step, ok := c.cfg.Flow.Step(c.step)
	if ok && step.Quiz && c.quizStartedAt.IsZero() {
		c.quizStartedAt = c.cfg.Clock()
	}
}

func (c *Controller) sideLocked() model.SideState {
	return model.SideState{CaptchaVerified: c.captchaVerified}
}

func (c *Controller) since(t time.Time) time.Duration {
	if t.IsZero() {
		return 0
	}
	d := c.cfg.Clock().Sub(t)
	if d < 0 {
		return 0
	}
	return d
}

func (c *Controller) scrollTop() {
	if c.cfg.Hooks.ScrollTop != nil {
		c.cfg.Hooks.ScrollTop()
	}
}

func seconds(now, since time.Time) int {
	if since.IsZero() || now.Before(since) {
		return 0
	}
	return int(now.Sub(since) / time.Second)
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
