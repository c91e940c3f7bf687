package gapfill

import (
	"testing"
)

func lookupOf(keys ...string) func(string) bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return func(k string) bool { return set[k] }
}

func TestScan_LongestFirst(t *testing.T) {
	text := "EGFR mutation found in lung cancer patients."
	got := Scan(text, DefaultWindow, lookupOf("egfr", "cancer", "lung cancer"))

	want := []Match{
		{Key: "egfr", Start: 0, End: 4},
		{Key: "lung cancer", Start: 23, End: 34},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d matches, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestScan_PunctuationFoldsToSpace(t *testing.T) {
	got := Scan("Loss of BCR-ABL1 signalling", DefaultWindow, lookupOf("bcr abl1"))
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Start != 8 || got[0].End != 16 {
		t.Errorf("expected [8,16), got [%d,%d)", got[0].Start, got[0].End)
	}
}

func TestScan_ConsecutiveSeparatorsDoNotMatchCollapsedKey(t *testing.T) {
	got := Scan("TP53--dependent", DefaultWindow, lookupOf("tp53 dependent"))
	if len(got) != 0 {
		t.Errorf("expected no match, got %+v", got)
	}
}

func TestScan_WindowLimit(t *testing.T) {
	lookup := lookupOf("non small cell lung")

	if got := Scan("non small cell lung", 3, lookup); len(got) != 0 {
		t.Errorf("expected no match with window 3, got %+v", got)
	}
	if got := Scan("non small cell lung", 4, lookup); len(got) != 1 {
		t.Errorf("expected one match with window 4, got %+v", got)
	}
}

func TestScan_CharacterOffsets(t *testing.T) {
	got := Scan("Résumé EGFR", DefaultWindow, lookupOf("egfr"))
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Start != 7 || got[0].End != 11 {
		t.Errorf("expected [7,11), got [%d,%d)", got[0].Start, got[0].End)
	}
}

func TestScan_Empty(t *testing.T) {
	if got := Scan("", DefaultWindow, lookupOf("x")); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
	if got := Scan("egfr", 0, lookupOf("egfr")); got != nil {
		t.Errorf("expected nil for zero window, got %+v", got)
	}
}
