package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/staffapp/internal/report"
)

type footerInfo struct {
	step   int
	total  int
	title  string
	spent  time.Duration
	quiz   time.Duration
	notice string
}

func renderFooter(info footerInfo) string {
	if info.total == 0 {
		return ""
	}
	segments := []string{fmt.Sprintf("Шаг %d/%d · %s", info.step, info.total, info.title)}
	segments = append(segments, "Время "+report.Duration(int(info.spent/time.Second)))
	if info.quiz > 0 {
		segments = append(segments, "Тест "+report.Duration(int(info.quiz/time.Second)))
	}
	if info.notice != "" {
		segments = append(segments, info.notice)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func formatCounter(count, limit int) string {
	return fmt.Sprintf("%d/%d", count, limit)
}

// formatCountdown renders a cooldown as hours, minutes and seconds.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d ч. %02d мин. %02d сек.", h, m, s)
}
