// Package normalize turns price-bearing strings into numbers, resolving
// locale-specific thousands and decimal separators.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	MinPrice = 1.0
	MaxPrice = 20_000_000.0
)

var (
	disallowedRe   = regexp.MustCompile(`[^\d,.\-]`)
	leadingJunkRe  = regexp.MustCompile(`^[^\d]+`)
	trailingJunkRe = regexp.MustCompile(`[^\d]+$`)

	europeanRe = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d{1,2}$`)
	groupedRe  = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// Price parses raw into a number. The boolean is false when raw carries no
// parseable value; Price never fails otherwise.
//
// A comma followed by exactly two trailing digits is always read as a
// decimal comma, so "12,34" is 12.34 even in locales that group by two.
func Price(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = disallowedRe.ReplaceAllString(s, "")
	s = leadingJunkRe.ReplaceAllString(s, "")
	s = trailingJunkRe.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		switch {
		case europeanRe.MatchString(s):
			s = decimalComma(s)
		case groupedRe.MatchString(s):
			s = strings.ReplaceAll(s, ",", "")
		case strings.LastIndex(s, ",") > strings.LastIndex(s, "."):
			s = decimalComma(s)
		default:
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		parts := strings.Split(s, ",")
		if len(parts[len(parts)-1]) == 2 {
			s = strings.Join(parts, ".")
		} else {
			s = strings.Join(parts, "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Valid reports whether v lies inside the accepted price band.
func Valid(v float64) bool {
	return v >= MinPrice && v <= MaxPrice
}

// ValidPrice normalizes raw and applies the price band in one step.
func ValidPrice(raw string) (float64, bool) {
	v, ok := Price(raw)
	if !ok || !Valid(v) {
		return 0, false
	}
	return v, true
}

func decimalComma(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
}
