package match

import (
	"math"
	"testing"

	"github.com/petems/soundswitch-tray/internal/audio"
)

var devices = []audio.Device{
	{ID: "id-speakers", Name: "Speakers (Realtek High Definition Audio)"},
	{ID: "id-headphones", Name: "Headphones"},
	{ID: "id-monitor", Name: "DELL U2720Q (NVIDIA High Definition Audio)"},
	{ID: "id-headphones-2", Name: "Headphones"},
}

func TestExactMatch(t *testing.T) {
	p := Policy{}

	tests := []struct {
		name   string
		target string
		wantID string
		wantOK bool
	}{
		{"found", "Headphones", "id-headphones", true},
		{"first of duplicates wins", "Headphones", "id-headphones", true},
		{"case sensitive", "headphones", "", false},
		{"no partial match", "Speakers", "", false},
		{"empty target", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.target, devices, p)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got.ID != tt.wantID {
				t.Errorf("expected %q, got %q", tt.wantID, got.ID)
			}
		})
	}
}

func TestExactMatchEveryCandidate(t *testing.T) {
	unique := []audio.Device{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Bravo"},
		{ID: "c", Name: "Charlie"},
	}
	for _, d := range unique {
		got, ok := Resolve(d.Name, unique, Policy{})
		if !ok || got != d {
			t.Errorf("expected %v for %q, got %v (ok=%v)", d, d.Name, got, ok)
		}
	}
}

func TestSkimMatch(t *testing.T) {
	p := Policy{FuzzyEnabled: true, Algorithm: Skim}

	got, ok := Resolve("hdph", devices, p)
	if !ok {
		t.Fatal("expected abbreviation to match")
	}
	if got.ID != "id-headphones" {
		t.Errorf("expected first headphones entry, got %q", got.ID)
	}

	if _, ok := Resolve("xyzzy", devices, p); ok {
		t.Error("expected no match when no candidate contains the subsequence")
	}
}

func TestSkimSmartCase(t *testing.T) {
	p := Policy{FuzzyEnabled: true, Algorithm: Skim}
	candidates := []audio.Device{
		{ID: "lower", Name: "usb headset"},
		{ID: "upper", Name: "USB Headset"},
	}

	if scored := Rank("usb", candidates, p); len(scored) != 2 {
		t.Errorf("expected lower-case target to match both names, got %d", len(scored))
	}

	got, ok := Resolve("USB", candidates, p)
	if !ok || got.ID != "upper" {
		t.Errorf("expected upper-case target to match case-sensitively, got %q (ok=%v)", got.ID, ok)
	}

	if _, ok := Resolve("UsB", candidates, p); ok {
		t.Error("expected no match when no name has the mixed-case subsequence")
	}
}

func TestIsSubsequence(t *testing.T) {
	tests := []struct {
		sub, s string
		want   bool
	}{
		{"", "anything", true},
		{"hdph", "Headphones", false},
		{"Hdph", "Headphones", true},
		{"abc", "ab", false},
		{"ÄB", "Äpfel Box", true},
	}
	for _, tt := range tests {
		if got := isSubsequence(tt.sub, tt.s); got != tt.want {
			t.Errorf("isSubsequence(%q, %q) = %v, want %v", tt.sub, tt.s, got, tt.want)
		}
	}
}

func TestSkimDeterministic(t *testing.T) {
	p := Policy{FuzzyEnabled: true, Algorithm: Skim}

	first, ok := Resolve("Audio", devices, p)
	if !ok {
		t.Fatal("expected a match")
	}
	for i := 0; i < 20; i++ {
		got, _ := Resolve("Audio", devices, p)
		if got != first {
			t.Fatalf("iteration %d: expected %v, got %v", i, first, got)
		}
	}
}

func TestSkimTieKeepsFirst(t *testing.T) {
	p := Policy{FuzzyEnabled: true, Algorithm: Skim}
	twins := []audio.Device{
		{ID: "first", Name: "USB Audio Device"},
		{ID: "second", Name: "USB Audio Device"},
	}

	got, ok := Resolve("usb", twins, p)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "first" {
		t.Errorf("expected earliest candidate on tie, got %q", got.ID)
	}
}

func TestLevenshteinThresholdBoundary(t *testing.T) {
	candidates := []audio.Device{{ID: "x", Name: "abcx"}}

	// "abcd" vs "abcx" is one substitution over four runes: similarity 0.75
	tests := []struct {
		threshold float64
		wantOK    bool
	}{
		{0.74, true},
		{0.75, true},
		{0.76, false},
	}

	for _, tt := range tests {
		p := Policy{FuzzyEnabled: true, Algorithm: Levenshtein, Threshold: tt.threshold}
		_, ok := Resolve("abcd", candidates, p)
		if ok != tt.wantOK {
			t.Errorf("threshold %.2f: expected ok=%v, got %v", tt.threshold, tt.wantOK, ok)
		}
	}
}

func TestLevenshteinCaseInsensitive(t *testing.T) {
	p := Policy{FuzzyEnabled: true, Algorithm: Levenshtein, Threshold: 1}

	lower := []audio.Device{{ID: "lower", Name: "speakers"}}
	same := []audio.Device{{ID: "same", Name: "Speakers"}}

	gotLower, okLower := Resolve("Speakers", lower, p)
	gotSame, okSame := Resolve("Speakers", same, p)
	if !okLower || !okSame {
		t.Fatalf("expected both to match, got lower=%v same=%v", okLower, okSame)
	}
	if gotLower.ID != "lower" || gotSame.ID != "same" {
		t.Errorf("unexpected devices: %v %v", gotLower, gotSame)
	}

	lowerScore := Rank("Speakers", lower, p)[0].Score
	sameScore := Rank("Speakers", same, p)[0].Score
	if lowerScore != sameScore {
		t.Errorf("case changed the score: %f vs %f", lowerScore, sameScore)
	}
}

func TestLevenshteinPicksClosest(t *testing.T) {
	p := Policy{FuzzyEnabled: true, Algorithm: Levenshtein, Threshold: 0.5}

	got, ok := Resolve("headphone", devices, p)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "id-headphones" {
		t.Errorf("expected first headphones entry, got %q", got.ID)
	}
}

func TestLevenshteinRejectsBestBelowThreshold(t *testing.T) {
	p := Policy{FuzzyEnabled: true, Algorithm: Levenshtein, Threshold: 0.9}

	if _, ok := Resolve("Studio Monitors", devices, p); ok {
		t.Error("expected best candidate below threshold to be rejected")
	}
}

func TestResolveEmptyCandidates(t *testing.T) {
	policies := []Policy{
		{},
		{FuzzyEnabled: true, Algorithm: Skim},
		{FuzzyEnabled: true, Algorithm: Levenshtein},
	}
	for _, p := range policies {
		if _, ok := Resolve("Headphones", nil, p); ok {
			t.Errorf("%s: expected no match for empty candidate list", p)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "", 0},
		{"kitten", "sitting", 1 - 3.0/7.0},
		{"über", "uber", 0.75},
	}

	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q): expected %f, got %f", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", Skim, false},
		{"skim", Skim, false},
		{"Skim", Skim, false},
		{"LEVENSHTEIN", Levenshtein, false},
		{" levenshtein ", Levenshtein, false},
		{"jaro", Skim, true},
	}

	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlgorithm(%q): unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestPolicyString(t *testing.T) {
	tests := []struct {
		p    Policy
		want string
	}{
		{Policy{}, "exact match"},
		{Policy{FuzzyEnabled: true, Algorithm: Skim}, "Skim fuzzy match"},
		{Policy{FuzzyEnabled: true, Algorithm: Levenshtein, Threshold: 0.7}, "Levenshtein fuzzy match (threshold 0.70)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
