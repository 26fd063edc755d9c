// Package scoremarker pulls labelled numeric scores out of narrative AI text.
package scoremarker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Marker labels written by the review prompts.
const (
	Planning  = "PLANNING SCORE"
	Discourse = "DISCOURSE SCORE"
	Alignment = "PLAN ALIGNMENT SCORE"
	Pacing    = "PACING SCORE"
)

var patterns = map[string]*regexp.Regexp{}

func init() {
	for _, label := range []string{Planning, Discourse, Alignment, Pacing} {
		patterns[label] = compile(label)
	}
}

// compile tolerates markdown emphasis, a colon or dash separator and an
// optional "/100" or "%" suffix, e.g. "**PLANNING SCORE:** 85/100".
func compile(label string) *regexp.Regexp {
	words := strings.Fields(regexp.QuoteMeta(label))
	expr := fmt.Sprintf(`(?i)(?:^|[^A-Z])%s[\s*_]*[:=\-–]?[\s*_]*(\d{1,3}(?:\.\d+)?)`, strings.Join(words, `\s+`))
	return regexp.MustCompile(expr)
}

// Extract returns the first value for label and whether the marker was present.
// Values are clamped to 0..100. A missing or unparseable marker is reported as
// not found rather than as zero.
func Extract(text, label string) (float64, bool) {
	re, ok := patterns[label]
	if !ok {
		re = compile(label)
	}
	match := re.FindStringSubmatch(text)
	if len(match) < 2 {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return clamp(value), true
}

// Scores holds every execution marker found in a response.
type Scores map[string]float64

// ExtractAll returns the subset of labels present in text.
func ExtractAll(text string, labels ...string) Scores {
	found := Scores{}
	for _, label := range labels {
		if value, ok := Extract(text, label); ok {
			found[label] = value
		}
	}
	return found
}

// Ptr returns the value for label, or nil when it was not found.
func (s Scores) Ptr(label string) *float64 {
	value, ok := s[label]
	if !ok {
		return nil
	}
	return &value
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
