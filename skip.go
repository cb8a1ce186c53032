package autolocale

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SkipReason names the rule that rejected a string. The empty reason means
// the string is eligible for translation.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipEmpty    SkipReason = "empty"
	SkipInteger  SkipReason = "integer"
	SkipURL      SkipReason = "url"
	SkipEmail    SkipReason = "email"
	SkipSymbols  SkipReason = "symbols"
	SkipTooShort SkipReason = "too_short"
	SkipCode     SkipReason = "code"
)

// maxCodeLen is the length below which an all-uppercase token reads as a code.
const maxCodeLen = 10

var (
	integerPattern  = regexp.MustCompile(`^[+-]?\d+$`)
	urlPattern      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://\S+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}\s+|\s+[A-Z]{3}$`)
)

// ShouldSkip reports whether text must not be sent for translation.
func ShouldSkip(text string) bool {
	return Classify(text) != SkipNone
}

// Classify applies the skip rules in order and returns the first that
// matches. The order matters: a one-letter uppercase code is rejected as too
// short before it could be mistaken for a word.
func Classify(text string) SkipReason {
	s := strings.TrimSpace(text)
	switch {
	case s == "":
		return SkipEmpty
	case integerPattern.MatchString(s):
		return SkipInteger
	case urlPattern.MatchString(s):
		return SkipURL
	case emailPattern.MatchString(s):
		return SkipEmail
	case symbolsOnly(s):
		return SkipSymbols
	case utf8.RuneCountInString(s) < 2:
		return SkipTooShort
	case isCode(s):
		return SkipCode
	}
	return SkipNone
}

// symbolsOnly matches prices, phone numbers and decoration: digits, currency
// symbols, punctuation and spaces, optionally with a leading or trailing
// ISO 4217 code ("RWF 10,000", "12.50 USD").
func symbolsOnly(s string) bool {
	if stripped := currencyPattern.ReplaceAllString(s, ""); stripped != s {
		if !strings.ContainsFunc(stripped, unicode.IsDigit) {
			return false
		}
		s = stripped
	}
	for _, r := range s {
		if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			continue
		}
		return false
	}
	return true
}

// isCode matches a single all-uppercase token such as "ID", "SKU42" or "N/A".
func isCode(s string) bool {
	if utf8.RuneCountInString(s) >= maxCodeLen || strings.ContainsFunc(s, unicode.IsSpace) {
		return false
	}
	return strings.ContainsFunc(s, unicode.IsLetter) && strings.ToUpper(s) == s
}
