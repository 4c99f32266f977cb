package textnorm

import "testing"

func TestCollapse(t *testing.T) {
	if got := Collapse("  New \t  York "); got != "New York" {
		t.Fatalf("Collapse = %q", got)
	}
}

func TestSpellingsCanonical(t *testing.T) {
	s := NewSpellings()
	for _, v := range []string{"Yes", "yes", "Yes", " YES ", "No"} {
		s.Add(v)
	}
	if got := s.Canonical("yes"); got != "Yes" {
		t.Fatalf("Canonical(yes) = %q", got)
	}
	if !s.Inconsistent(" YES ") || s.Inconsistent("Yes") || s.Inconsistent("No") {
		t.Fatalf("unexpected inconsistency classification")
	}
}

func TestSpellingsTieKeepsFirstSeen(t *testing.T) {
	s := NewSpellings()
	s.Add("blue")
	s.Add("Blue")
	if got := s.Canonical("BLUE"); got != "blue" {
		t.Fatalf("Canonical = %q", got)
	}
}
