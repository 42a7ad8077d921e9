package history

import (
	"math"
	"strings"

	"github.com/verte-zerg/staffapp/internal/model"
)

const sparkChars = ".:-=+*#%@"

// trendWindow is the moving average window for the score trend.
const trendWindow = 5

// scoreTrend renders quiz scores, oldest first, as a smoothed sparkline on
// a fixed 0-100% scale. Fewer than two graded submissions give "".
func scoreTrend(subs []model.Submission) string {
	values := make([]float64, 0, len(subs))
	for _, sub := range subs {
		if sub.QuizTotal > 0 {
			values = append(values, float64(sub.QuizCorrect)/float64(sub.QuizTotal)*100)
		}
	}
	if len(values) < 2 {
		return ""
	}
	return sparkline(movingAverage(values, trendWindow), 0, 100)
}

func movingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

func sparkline(values []float64, lo, hi float64) string {
	if len(values) == 0 || hi <= lo {
		return ""
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - lo) / (hi - lo)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
