// Package textnorm groups spellings of the same categorical value that differ
// only in case, Unicode form or whitespace.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Collapse trims, collapses internal whitespace runs to one space and applies
// NFC normalisation.
func Collapse(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// FoldKey is the case-folded collapsed form; spellings sharing a key are
// variants of one value.
func FoldKey(s string) string {
	return cases.Fold().String(Collapse(s))
}

// Spellings tracks, per fold key, how often each collapsed spelling occurs.
type Spellings struct {
	counts map[string]map[string]int
	order  map[string][]string
}

// NewSpellings returns an empty tracker.
func NewSpellings() *Spellings {
	return &Spellings{counts: map[string]map[string]int{}, order: map[string][]string{}}
}

// Add records one raw value.
func (s *Spellings) Add(raw string) {
	c := Collapse(raw)
	if c == "" {
		return
	}
	k := FoldKey(raw)
	m := s.counts[k]
	if m == nil {
		m = map[string]int{}
		s.counts[k] = m
	}
	if _, seen := m[c]; !seen {
		s.order[k] = append(s.order[k], c)
	}
	m[c]++
}

// Canonical returns the dominant spelling for raw's key: the most frequent
// collapsed spelling, ties going to the one seen first. Unknown values
// collapse to themselves.
func (s *Spellings) Canonical(raw string) string {
	k := FoldKey(raw)
	best, bestN := Collapse(raw), -1
	for _, sp := range s.order[k] {
		if n := s.counts[k][sp]; n > bestN {
			best, bestN = sp, n
		}
	}
	return best
}

// Inconsistent reports whether raw differs from its canonical spelling.
func (s *Spellings) Inconsistent(raw string) bool {
	return raw != s.Canonical(raw)
}
