// Package format normalizes constrained text inputs.
package format

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ActiveTimeLen is the length of a complete "HH:MM-HH:MM" value.
const ActiveTimeLen = 11

// DigitsOnly strips every character that is not an ASCII digit.
func DigitsOnly(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if ch >= '0' && ch <= '9' {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// BoundedInteger keeps digits only and clamps the result to max.
func BoundedInteger(input string, max int) string {
	digits := DigitsOnly(input)
	if digits == "" {
		return ""
	}
	limit := strconv.Itoa(max)
	n, err := strconv.Atoi(digits)
	// Overflow only happens for values far above any sane max.
	if err != nil || n > max {
		return limit
	}
	return digits
}

// ActiveTimeMask formats up to eight typed digits as "HH:MM-HH:MM",
// clamping completed hour groups to 23 and minute groups to 59. Groups not
// typed yet are omitted.
func ActiveTimeMask(input string) string {
	digits := DigitsOnly(input)
	if len(digits) > 8 {
		digits = digits[:8]
	}
	groups := [4]string{}
	for i := range groups {
		start := i * 2
		if start >= len(digits) {
			break
		}
		end := start + 2
		if end > len(digits) {
			end = len(digits)
		}
		groups[i] = digits[start:end]
	}
	groups[0] = clampGroup(groups[0], 23)
	groups[1] = clampGroup(groups[1], 59)
	groups[2] = clampGroup(groups[2], 23)
	groups[3] = clampGroup(groups[3], 59)

	var b strings.Builder
	b.WriteString(groups[0])
	if groups[1] != "" {
		b.WriteString(":" + groups[1])
	}
	if groups[2] != "" {
		b.WriteString("-" + groups[2])
	}
	if groups[3] != "" {
		b.WriteString(":" + groups[3])
	}
	return b.String()
}

func clampGroup(group string, max int) string {
	if len(group) != 2 {
		return group
	}
	n, err := strconv.Atoi(group)
	if err != nil || n <= max {
		return group
	}
	return strconv.Itoa(max)
}

// LimitRunes truncates input to at most n runes.
func LimitRunes(input string, n int) string {
	if n < 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= n {
		return input
	}
	runes := []rune(input)
	return string(runes[:n])
}
