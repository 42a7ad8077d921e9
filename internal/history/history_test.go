package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/staffapp/internal/model"
)

type listerFunc func(ctx context.Context, limit int) ([]model.Submission, error)

func (f listerFunc) ListSubmissions(ctx context.Context, limit int) ([]model.Submission, error) {
	return f(ctx, limit)
}

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Nick", "Score", "Time"}
	rows := [][]string{
		{"Стив", "8/8", "3м 2с"},
		{"alexander", "10/10", "12м 40с"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Nick      Score    Time" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Стив        8/8   3м 2с" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "alexander 10/10 12м 40с" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	assert.Nil(t, formatTable(nil, nil, nil))
}

func sampleSubs(now time.Time) []model.Submission {
	return []model.Submission{
		{ID: "0123456789abcdef", Nickname: "Steve", SubmittedAt: now.Add(-3 * time.Hour), Delivered: true, TimeSpentSeconds: 190, QuizCorrect: 8, QuizTotal: 8},
		{ID: "fedcba9876543210", Nickname: "Alex", SubmittedAt: now.Add(-time.Hour), Delivered: false, TimeSpentSeconds: 30, QuizCorrect: 4, QuizTotal: 8, Suspicious: true},
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	s := Summarize(sampleSubs(now))
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Delivered)
	assert.Equal(t, 1, s.Suspicious)
	assert.InDelta(t, 75.0, s.AvgScore, 0.001)
	assert.Equal(t, now.Add(-time.Hour), s.Last)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestRender(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	out := Render(sampleSubs(now), now)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "01234567")
	assert.NotContains(t, lines[1], "89abcdef")
	assert.Contains(t, lines[1], "3 hours ago")
	assert.Contains(t, lines[1], "sent")
	assert.Contains(t, lines[2], "failed")
	assert.Contains(t, lines[2], "fast")
	assert.Equal(t, "2 submissions, 1 delivered, 1 suspicious, average score 75%", lines[4])
	assert.Equal(t, "Score trend: @#", lines[5])

	assert.Equal(t, "No submissions yet.\n", Render(nil, now))
}

func TestLoadWrapsErrors(t *testing.T) {
	var gotLimit int
	subs, err := Load(context.Background(), listerFunc(func(_ context.Context, limit int) ([]model.Submission, error) {
		gotLimit = limit
		return []model.Submission{{ID: "a"}}, nil
	}), 20)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Equal(t, 20, gotLimit)

	_, err = Load(context.Background(), listerFunc(func(context.Context, int) ([]model.Submission, error) {
		return nil, errors.New("locked")
	}), 0)
	assert.ErrorContains(t, err, "locked")
}

func TestMovingAverage(t *testing.T) {
	got := movingAverage([]float64{100, 50, 0, 50}, 2)
	assert.Equal(t, []float64{100, 75, 25, 25}, got)
	assert.Equal(t, []float64{1, 2}, movingAverage([]float64{1, 2}, 1))
}

func TestSparklineFixedScale(t *testing.T) {
	assert.Equal(t, ".+@", sparkline([]float64{0, 50, 100}, 0, 100))
	assert.Equal(t, ".@", sparkline([]float64{-10, 150}, 0, 100))
	assert.Equal(t, "", sparkline(nil, 0, 100))
}

func TestScoreTrendNeedsTwoGradedSubmissions(t *testing.T) {
	subs := []model.Submission{{QuizCorrect: 8, QuizTotal: 8}, {QuizTotal: 0}}
	assert.Equal(t, "", scoreTrend(subs))
}
