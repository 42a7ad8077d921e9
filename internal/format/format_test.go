package format

import (
	"math/rand"
	"regexp"
	"strconv"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

var activeTimePattern = regexp.MustCompile(`^\d{0,2}(:\d{0,2})?(-\d{0,2})?(:\d{0,2})?$`)

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "17", DigitsOnly("1a7"))
	assert.Equal(t, "", DigitsOnly("abc"))
	assert.Equal(t, "2024", DigitsOnly(" 2-0 2/4 "))
	assert.Equal(t, "", DigitsOnly("١٢"), "non-ASCII digits are dropped")
}

func TestBoundedInteger(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8", "8"},
		{"24", "24"},
		{"25", "24"},
		{"99x", "24"},
		{"", ""},
		{"abc", ""},
		{"0", "0"},
		{"99999999999999999999999", "24"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BoundedInteger(tc.in, 24), "input %q", tc.in)
	}
}

func TestBoundedIntegerNeverExceedsMax(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	alphabet := []byte("0123456789ab -:")
	for i := 0; i < 2000; i++ {
		buf := make([]byte, rnd.Intn(12))
		for j := range buf {
			buf[j] = alphabet[rnd.Intn(len(alphabet))]
		}
		out := BoundedInteger(string(buf), 24)
		if out == "" {
			continue
		}
		n, err := strconv.Atoi(out)
		if assert.NoError(t, err) {
			assert.LessOrEqual(t, n, 24, "input %q", string(buf))
		}
	}
}

func TestActiveTimeMaskProgressive(t *testing.T) {
	steps := map[string]string{
		"2":        "2",
		"22":       "22",
		"220":      "22:0",
		"2200":     "22:00",
		"22003":    "22:00-3",
		"220030":   "22:00-23",
		"2200300":  "22:00-23:0",
		"22003000": "22:00-23:00",
	}
	for in, want := range steps {
		assert.Equal(t, want, ActiveTimeMask(in), "input %q", in)
	}
}

func TestActiveTimeMaskClampsAndTruncates(t *testing.T) {
	assert.Equal(t, "23:59-23:59", ActiveTimeMask("99999999"))
	assert.Equal(t, "22:00-00:30", ActiveTimeMask("22:00-00:30"))
	assert.Equal(t, "12:34-05:06", ActiveTimeMask("1234050678"))
	assert.Len(t, ActiveTimeMask("2200003099"), ActiveTimeLen)
}

func TestActiveTimeMaskShape(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	alphabet := []byte("0123456789:-x ")
	for i := 0; i < 2000; i++ {
		buf := make([]byte, rnd.Intn(16))
		for j := range buf {
			buf[j] = alphabet[rnd.Intn(len(alphabet))]
		}
		out := ActiveTimeMask(string(buf))
		assert.LessOrEqual(t, len(out), ActiveTimeLen)
		assert.Regexp(t, activeTimePattern, out)
		assertGroupsInRange(t, out)
	}
}

func assertGroupsInRange(t *testing.T, out string) {
	t.Helper()
	digits := DigitsOnly(out)
	limits := []int{23, 59, 23, 59}
	for i := 0; i+2 <= len(digits) && i/2 < len(limits); i += 2 {
		n, err := strconv.Atoi(digits[i : i+2])
		if assert.NoError(t, err) {
			assert.LessOrEqual(t, n, limits[i/2], "value %q", out)
		}
	}
}

func TestLimitRunes(t *testing.T) {
	assert.Equal(t, "при", LimitRunes("привет", 3))
	assert.Equal(t, "hi", LimitRunes("hi", 500))
	assert.Equal(t, "", LimitRunes("hi", -1))
	long := make([]rune, 600)
	for i := range long {
		long[i] = 'ж'
	}
	assert.Equal(t, 500, utf8.RuneCountInString(LimitRunes(string(long), 500)))
}
