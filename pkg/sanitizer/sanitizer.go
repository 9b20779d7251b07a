package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

// LocationKey reduces a city, state or postal code to a comparison key.
func LocationKey(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "") },
	}
	return p.Apply(input)
}

// MatchesLocation reports whether value matches filter by LocationKey. An
// empty filter matches everything.
func MatchesLocation(filter, value string) bool {
	f := LocationKey(filter)
	return f == "" || f == LocationKey(value)
}
