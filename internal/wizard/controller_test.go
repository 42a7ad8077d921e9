package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/staffapp/internal/draft"
	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/quiz"
	"github.com/verte-zerg/staffapp/internal/ratelimit"
	"github.com/verte-zerg/staffapp/internal/report"
	"github.com/verte-zerg/staffapp/internal/store"
	"github.com/verte-zerg/staffapp/internal/validate"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSender struct {
	mu      sync.Mutex
	ok      bool
	reports []report.Report
	// gate blocks Send until closed when set.
	gate    chan struct{}
	entered chan struct{}
}

func (s *fakeSender) Send(_ context.Context, r report.Report) bool {
	if s.entered != nil {
		close(s.entered)
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return s.ok
}

type fakeJournal struct {
	subs []model.Submission
}

func (j *fakeJournal) RecordSubmission(_ context.Context, sub model.Submission) error {
	j.subs = append(j.subs, sub)
	return nil
}

type harness struct {
	ctl     *Controller
	kv      *store.Memory
	clock   *fakeClock
	sender  *fakeSender
	journal *fakeJournal
	drafts  *draft.Store
	limiter *ratelimit.Limiter
	scrolls int
	restore []model.Application
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		kv:      store.NewMemory(),
		clock:   &fakeClock{now: time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)},
		sender:  &fakeSender{ok: true},
		journal: &fakeJournal{},
	}
	h.drafts = draft.New(h.kv, nil)
	h.limiter = ratelimit.New(h.kv, 0, nil)
	assembler := report.NewAssembler(report.DefaultSettings(), quiz.Default())
	assembler.Clock = h.clock.Now
	h.ctl = New(Config{
		Flow:      validate.FullFlow(),
		Catalog:   quiz.Default(),
		Drafts:    h.drafts,
		Limiter:   h.limiter,
		Assembler: assembler,
		Sender:    h.sender,
		Journal:   h.journal,
		Clock:     h.clock.Now,
		UserAgent: "staffapp/test",
		Hooks: Hooks{
			ScrollTop:     func() { h.scrolls++ },
			DraftRestored: func(app model.Application) { h.restore = append(h.restore, app) },
		},
	})
	return h
}

func (h *harness) set(t *testing.T, f model.Field, raw string) string {
	t.Helper()
	v, err := h.ctl.SetField(context.Background(), f, raw)
	require.NoError(t, err)
	return v
}

func (h *harness) fillProfileAndActivity(t *testing.T) {
	t.Helper()
	h.set(t, model.FieldNickname, "Steve")
	h.set(t, model.FieldDiscord, "steve#0001")
	h.set(t, model.FieldAge, "17")
	require.NoError(t, h.ctl.Next())

	h.set(t, model.FieldTimeOnProject, "полгода")
	h.set(t, model.FieldHoursDaily, "8")
	typed := ""
	for _, r := range "22003000" {
		typed = h.set(t, model.FieldActiveTime, typed+string(r))
	}
	require.Equal(t, "22:00-23:00", typed)
	h.set(t, model.FieldAbout, "test bio text")
	require.NoError(t, h.ctl.Next())
}

func (h *harness) fillToFinal(t *testing.T) {
	t.Helper()
	h.fillProfileAndActivity(t)
	require.NoError(t, h.ctl.RecordMiniGame(context.Background(), true, 1))
	require.NoError(t, h.ctl.Next())
	h.set(t, model.FieldTeamLimit, "5")
	h.set(t, model.FieldBetterPvpAllowed, "no")
	h.set(t, model.FieldMultiAccountAllowed, "yes")
	require.NoError(t, h.ctl.Next())
	h.set(t, model.FieldWeaknessPunishment, "no_punish")
	h.set(t, model.FieldInsultModPunishment, "mute_1d")
	h.set(t, model.FieldMentionAllowedProjects, "yes")
	require.NoError(t, h.ctl.Next())
	h.set(t, model.FieldExpectations, "help players")
	h.set(t, model.FieldDuties, "moderate chat")
	h.set(t, model.FieldDeanonPunishment, "permban")
	require.Equal(t, 6, h.ctl.Step())
}

func requireWizardError(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	werr, ok := AsError(err)
	require.True(t, ok, "expected *Error, got %v", err)
	assert.Equal(t, kind, werr.Kind)
	assert.Equal(t, msg, werr.Message)
}

func TestStartEntersFirstStep(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, PhaseLanding, h.ctl.Phase())
	require.NoError(t, h.ctl.Start(context.Background()))
	assert.Equal(t, PhaseEditing, h.ctl.Phase())
	assert.Equal(t, 1, h.ctl.Step())
	assert.ErrorIs(t, h.ctl.Start(context.Background()), ErrNotLanding)
}

func TestProfileAndActivityAdvanceToStepThree(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.fillProfileAndActivity(t)
	assert.Equal(t, 3, h.ctl.Step())
	assert.Equal(t, 2, h.scrolls)
}

func TestNextRefusesInvalidStep(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.set(t, model.FieldNickname, "  ")
	err := h.ctl.Next()
	requireWizardError(t, err, KindValidation, MsgIncompleteStep)
	assert.Equal(t, 1, h.ctl.Step())
	assert.Equal(t, 0, h.scrolls)
}

func TestPartialActiveTimeMessage(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.set(t, model.FieldNickname, "Steve")
	h.set(t, model.FieldDiscord, "steve#0001")
	h.set(t, model.FieldAge, "17")
	require.NoError(t, h.ctl.Next())

	h.set(t, model.FieldTimeOnProject, "год")
	h.set(t, model.FieldHoursDaily, "99")
	assert.Equal(t, "24", h.ctl.Application().HoursDaily)
	h.set(t, model.FieldActiveTime, "2200")
	h.set(t, model.FieldAbout, "bio")
	requireWizardError(t, h.ctl.Next(), KindValidation, MsgActiveTimeFormat)

	h.set(t, model.FieldActiveTime, "")
	requireWizardError(t, h.ctl.Next(), KindValidation, MsgIncompleteStep)
	assert.Equal(t, 2, h.ctl.Step())
}

func TestMiniGameIncompleteStaysOnStepThree(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.fillProfileAndActivity(t)
	requireWizardError(t, h.ctl.Next(), KindValidation, MsgMiniGame)
	assert.Equal(t, 3, h.ctl.Step())

	require.NoError(t, h.ctl.RecordMiniGame(context.Background(), true, 2))
	require.NoError(t, h.ctl.Next())
	assert.Equal(t, 4, h.ctl.Step())
	assert.Equal(t, 2, h.ctl.Application().PunishmentTestMistakes)
}

func TestPrevClampsAtOne(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.ctl.Prev()
	assert.Equal(t, 1, h.ctl.Step())
	h.fillProfileAndActivity(t)
	h.ctl.Prev()
	assert.Equal(t, 2, h.ctl.Step())
}

func TestNextCapsAtLastStep(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.fillToFinal(t)
	require.NoError(t, h.ctl.RecordCaptcha(true))
	require.NoError(t, h.ctl.Next())
	assert.Equal(t, 6, h.ctl.Step())
}

func TestSetFieldRejectsUnknownOption(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	_, err := h.ctl.SetField(context.Background(), model.FieldTeamLimit, "42")
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, "", h.ctl.Application().TeamLimit)
}

func TestSetFieldOutsideEditing(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctl.SetField(context.Background(), model.FieldNickname, "Steve")
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.ErrorIs(t, h.ctl.RecordCaptcha(true), ErrNotEditing)
}

func TestAboutIsCapped(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	long := make([]rune, model.AboutMaxRunes+20)
	for i := range long {
		long[i] = 'я'
	}
	v := h.set(t, model.FieldAbout, string(long))
	assert.Equal(t, model.AboutMaxRunes, len([]rune(v)))
}

func TestSubmitWithoutCaptcha(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.fillToFinal(t)

	err := h.ctl.Submit(context.Background())
	requireWizardError(t, err, KindValidation, MsgCaptcha)
	assert.Equal(t, PhaseEditing, h.ctl.Phase())
	assert.Empty(t, h.sender.reports)
}

func TestSubmitIncompleteForm(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	h.fillToFinal(t)
	require.NoError(t, h.ctl.RecordCaptcha(true))
	h.set(t, model.FieldDuties, "")
	requireWizardError(t, h.ctl.Submit(context.Background()), KindValidation, MsgIncompleteForm)
}

func TestSubmitBeforeFinalStep(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctl.Start(context.Background()))
	assert.ErrorIs(t, h.ctl.Submit(context.Background()), ErrNotFinalStep)
}

func TestSuccessfulSubmission(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ctl.Start(ctx))
	h.clock.Advance(2 * time.Minute)
	h.fillToFinal(t)
	h.clock.Advance(time.Minute)
	require.NoError(t, h.ctl.RecordCaptcha(false))
	require.NoError(t, h.ctl.RecordCaptcha(true))

	_, hasDraft := h.drafts.Load(ctx)
	require.True(t, hasDraft)

	require.NoError(t, h.ctl.Submit(ctx))
	assert.Equal(t, PhaseSubmitted, h.ctl.Phase())

	_, hasDraft = h.drafts.Load(ctx)
	assert.False(t, hasDraft)

	last, ok := h.limiter.Last(ctx)
	require.True(t, ok)
	assert.WithinDuration(t, h.clock.Now(), last, time.Second)

	require.Len(t, h.sender.reports, 1)
	rep := h.sender.reports[0]
	assert.Equal(t, 180, rep.Analytics.TimeSpentSeconds)
	assert.Equal(t, 60, rep.Analytics.QuizTimeSeconds)
	assert.Equal(t, 2, rep.Analytics.CaptchaAttempts)
	assert.Equal(t, "staffapp/test", rep.Analytics.UserAgent)
	assert.Equal(t, 7, rep.Score())
	assert.False(t, rep.Suspicious)

	require.Len(t, h.journal.subs, 1)
	assert.True(t, h.journal.subs[0].Delivered)

	got, ok := h.ctl.LastReport()
	require.True(t, ok)
	assert.Equal(t, rep.ID, got.ID)

	assert.ErrorIs(t, h.ctl.Submit(ctx), ErrNotEditing)
}

func TestDeliveryFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.sender.ok = false
	ctx := context.Background()
	require.NoError(t, h.ctl.Start(ctx))
	h.fillToFinal(t)
	require.NoError(t, h.ctl.RecordCaptcha(true))

	requireWizardError(t, h.ctl.Submit(ctx), KindDelivery, MsgDeliveryFailed)
	assert.Equal(t, PhaseEditing, h.ctl.Phase())
	assert.Equal(t, 6, h.ctl.Step())
	assert.Equal(t, "Steve", h.ctl.Application().Nickname)
	_, hasDraft := h.drafts.Load(ctx)
	assert.True(t, hasDraft)
	_, limited := h.limiter.Last(ctx)
	assert.False(t, limited)
	require.Len(t, h.journal.subs, 1)
	assert.False(t, h.journal.subs[0].Delivered)

	h.sender.ok = true
	require.NoError(t, h.ctl.Submit(ctx))
	assert.Equal(t, PhaseSubmitted, h.ctl.Phase())
}

func TestSubmitIsSingleFlight(t *testing.T) {
	h := newHarness(t)
	h.sender.gate = make(chan struct{})
	h.sender.entered = make(chan struct{})
	ctx := context.Background()
	require.NoError(t, h.ctl.Start(ctx))
	h.fillToFinal(t)
	require.NoError(t, h.ctl.RecordCaptcha(true))

	done := make(chan error, 1)
	go func() { done <- h.ctl.Submit(ctx) }()
	<-h.sender.entered

	assert.Equal(t, PhaseSubmitting, h.ctl.Phase())
	assert.ErrorIs(t, h.ctl.Submit(ctx), ErrSubmitInFlight)
	assert.ErrorIs(t, h.ctl.Reset(ctx), ErrSubmitInFlight)
	_, err := h.ctl.SetField(ctx, model.FieldNickname, "Alex")
	assert.ErrorIs(t, err, ErrNotEditing)

	close(h.sender.gate)
	require.NoError(t, <-done)
	assert.Len(t, h.sender.reports, 1)
}

func TestResetFromAnyPhase(t *testing.T) {
	ctx := context.Background()
	check := func(t *testing.T, h *harness) {
		t.Helper()
		before := h.ctl.TimerEpoch()
		require.NoError(t, h.ctl.Reset(ctx))
		assert.Equal(t, PhaseLanding, h.ctl.Phase())
		assert.Equal(t, 1, h.ctl.Step())
		assert.Equal(t, model.DefaultApplication(), h.ctl.Application())
		assert.False(t, h.ctl.CaptchaVerified())
		assert.Equal(t, 0, h.ctl.CaptchaAttempts())
		assert.Greater(t, h.ctl.TimerEpoch(), before)
		_, err := h.kv.Get(ctx, draft.Key)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	}

	t.Run("mid wizard", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.ctl.Start(ctx))
		h.fillToFinal(t)
		require.NoError(t, h.ctl.RecordCaptcha(true))
		check(t, h)
	})
	t.Run("after submission", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.ctl.Start(ctx))
		h.fillToFinal(t)
		require.NoError(t, h.ctl.RecordCaptcha(true))
		require.NoError(t, h.ctl.Submit(ctx))
		check(t, h)
	})
	t.Run("landing", func(t *testing.T) {
		check(t, newHarness(t))
	})
}

func TestStartRefusedWhileRateLimited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.limiter.Record(ctx, h.clock.Now().Add(-23*time.Hour)))

	err := h.ctl.Start(ctx)
	requireWizardError(t, err, KindRateLimited, "Вы уже отправили заявку. Повторная подача будет доступна через 1 ч. 0 мин.")
	assert.Equal(t, PhaseLanding, h.ctl.Phase())
	assert.True(t, h.ctl.RateLimit(ctx).Limited)

	h.clock.Advance(time.Hour)
	require.NoError(t, h.ctl.Start(ctx))
}

func TestDraftRestoredOnMount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	saved := model.DefaultApplication()
	saved.Nickname = "Alex"
	saved.Age = "20"
	require.NoError(t, h.drafts.Save(ctx, saved))

	require.NoError(t, h.ctl.Start(ctx))
	assert.Equal(t, saved, h.ctl.Application())
	assert.Equal(t, 1, h.ctl.Step())
	require.Len(t, h.restore, 1)
	assert.Equal(t, "Alex", h.restore[0].Nickname)
}

func TestDraftWithoutNicknameIgnored(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	saved := model.DefaultApplication()
	saved.Age = "20"
	require.NoError(t, h.drafts.Save(ctx, saved))

	require.NoError(t, h.ctl.Start(ctx))
	assert.Equal(t, model.DefaultApplication(), h.ctl.Application())
	assert.Empty(t, h.restore)
}

func TestLeaveKeepsDraft(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ctl.Start(ctx))
	h.set(t, model.FieldNickname, "Steve")
	before := h.ctl.TimerEpoch()
	require.NoError(t, h.ctl.Leave())
	assert.Equal(t, PhaseLanding, h.ctl.Phase())
	assert.Greater(t, h.ctl.TimerEpoch(), before)

	require.NoError(t, h.ctl.Start(ctx))
	assert.Equal(t, "Steve", h.ctl.Application().Nickname)
	assert.ErrorIs(t, newHarness(t).ctl.Leave(), ErrNotEditing)
}

func TestQuizTimerStartsOnFirstQuizStep(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ctl.Start(ctx))
	h.fillProfileAndActivity(t)
	require.NoError(t, h.ctl.RecordMiniGame(ctx, true, 0))
	assert.Zero(t, h.ctl.QuizTime())

	require.NoError(t, h.ctl.Next())
	h.clock.Advance(30 * time.Second)
	h.ctl.Prev()
	h.clock.Advance(30 * time.Second)
	assert.Equal(t, time.Minute, h.ctl.QuizTime())
	require.NoError(t, h.ctl.Next())
	assert.Equal(t, time.Minute, h.ctl.QuizTime())
}

func TestClassicFlowQuizTimer(t *testing.T) {
	h := newHarness(t)
	h.ctl.cfg.Flow = validate.ClassicFlow()
	ctx := context.Background()
	require.NoError(t, h.ctl.Start(ctx))
	assert.Equal(t, 5, h.ctl.TotalSteps())
	h.fillProfileAndActivity(t)
	assert.Equal(t, validate.StepQuizB, h.ctl.CurrentStep().ID)
	h.clock.Advance(10 * time.Second)
	assert.Equal(t, 10*time.Second, h.ctl.QuizTime())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "submitting", PhaseSubmitting.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}
