package util

import (
	"math"
	"regexp"
	"strings"
)

var (
	reQuotes     = regexp.MustCompile(`["'` + "`" + `«»]`)
	reNonAllowed = regexp.MustCompile(`[^A-Z0-9\-/\s.]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// NormalizeName canonicalizes a product name for catalog lookup:
// uppercase, punctuation stripped, whitespace collapsed.
func NormalizeName(input string) string {
	s := strings.ToUpper(input)
	s = reQuotes.ReplaceAllString(s, " ")
	s = reNonAllowed.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// Round2 rounds to 2 decimal places, half away from zero. Every monetary
// value in the quoting engine goes through this helper so line items,
// subtotals and totals share one rounding discipline.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
