package symptoms

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSymptom is returned for a selection outside the vocabulary.
var ErrUnknownSymptom = errors.New("unknown symptom")

// Vocabulary is the canonical symptom list, in reporting order.
var Vocabulary = []string{
	"fever",
	"headache",
	"joint pain",
	"muscle pain",
	"rash",
	"eye pain",
	"nausea",
	"bleeding",
	"cough",
	"shortness of breath",
	"wheezing",
	"sore throat",
	"chest tightness",
	"runny nose",
}

var rank = func() map[string]int {
	m := make(map[string]int, len(Vocabulary))
	for i, s := range Vocabulary {
		m[s] = i
	}
	return m
}()

// Known reports whether s is a canonical symptom.
func Known(s string) bool {
	_, ok := rank[s]
	return ok
}

// Normalize lowercases, trims and deduplicates form selections.
func Normalize(selected []string) ([]string, error) {
	var unknown []string
	seen := make(map[string]bool, len(selected))
	for _, s := range selected {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !Known(s) {
			unknown = append(unknown, s)
			continue
		}
		seen[s] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymptom, strings.Join(unknown, ", "))
	}
	return ordered(seen), nil
}

// Merge unions symptom lists, keeping only canonical entries.
func Merge(lists ...[]string) []string {
	seen := map[string]bool{}
	for _, l := range lists {
		for _, s := range l {
			if Known(s) {
				seen[s] = true
			}
		}
	}
	return ordered(seen)
}

func ordered(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, s := range Vocabulary {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
