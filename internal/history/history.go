// Package history renders the local submission journal.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/report"
)

// Lister reads the journal.
type Lister interface {
	ListSubmissions(ctx context.Context, limit int) ([]model.Submission, error)
}

// Summary aggregates a set of submissions.
type Summary struct {
	Total      int
	Delivered  int
	Suspicious int
	AvgScore   float64
	Last       time.Time
}

// Load returns up to limit recent submissions, oldest first.
func Load(ctx context.Context, l Lister, limit int) ([]model.Submission, error) {
	subs, err := l.ListSubmissions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Summarize aggregates subs.
func Summarize(subs []model.Submission) Summary {
	var s Summary
	var ratio float64
	for _, sub := range subs {
		s.Total++
		if sub.Delivered {
			s.Delivered++
		}
		if sub.Suspicious {
			s.Suspicious++
		}
		if sub.QuizTotal > 0 {
			ratio += float64(sub.QuizCorrect) / float64(sub.QuizTotal)
		}
		if sub.SubmittedAt.After(s.Last) {
			s.Last = sub.SubmittedAt
		}
	}
	if s.Total > 0 {
		s.AvgScore = ratio / float64(s.Total) * 100
	}
	return s
}

// Render formats subs as a table followed by a summary line.
func Render(subs []model.Submission, now time.Time) string {
	if len(subs) == 0 {
		return "No submissions yet.\n"
	}
	headers := []string{"ID", "Nickname", "Submitted", "Status", "Time", "Score", "Flags"}
	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{
			shortID(sub.ID),
			sub.Nickname,
			humanize.RelTime(sub.SubmittedAt, now, "ago", "from now"),
			status(sub.Delivered),
			report.Duration(sub.TimeSpentSeconds),
			fmt.Sprintf("%d/%d", sub.QuizCorrect, sub.QuizTotal),
			flags(sub),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{4: true, 5: true})

	sum := Summarize(subs)
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\n%s, %s delivered, %s suspicious, average score %.0f%%\n",
		plural(sum.Total, "submission"),
		humanize.Comma(int64(sum.Delivered)),
		humanize.Comma(int64(sum.Suspicious)),
		sum.AvgScore,
	)
	if trend := scoreTrend(subs); trend != "" {
		fmt.Fprintf(&b, "Score trend: %s\n", trend)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func status(delivered bool) string {
	if delivered {
		return "sent"
	}
	return "failed"
}

func flags(sub model.Submission) string {
	if sub.Suspicious {
		return "fast"
	}
	return ""
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
