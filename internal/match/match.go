// Package match resolves a configured device name to one of the devices
// currently present on the system.
//
// Three policies exist. Exact matching compares names byte for byte. Skim
// matching scores the target as a subsequence of each candidate name, which
// tolerates abbreviations but has no natural rejection boundary. It is smart
// case: a target with an upper-case letter only matches names that contain
// it as a case-sensitive subsequence. Levenshtein
// matching compares lower-cased names by normalized edit distance and only
// accepts the best candidate when its similarity reaches the threshold.
package match

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"

	"github.com/petems/soundswitch-tray/internal/audio"
)

// Algorithm selects the fuzzy strategy used when fuzzy matching is enabled
type Algorithm int

const (
	Skim Algorithm = iota
	Levenshtein
)

func (a Algorithm) String() string {
	switch a {
	case Skim:
		return "Skim"
	case Levenshtein:
		return "Levenshtein"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm parses a config value. Matching is case-insensitive; an
// empty value selects Skim.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skim":
		return Skim, nil
	case "levenshtein":
		return Levenshtein, nil
	default:
		return Skim, fmt.Errorf("unknown fuzzy match algorithm %q (expected skim or levenshtein)", s)
	}
}

// Policy controls how Resolve picks a device. Threshold is only used by
// Levenshtein and must be in [0,1].
type Policy struct {
	FuzzyEnabled bool
	Algorithm    Algorithm
	Threshold    float64
}

// String describes the policy for log lines and error messages
func (p Policy) String() string {
	if !p.FuzzyEnabled {
		return "exact match"
	}
	if p.Algorithm == Levenshtein {
		return fmt.Sprintf("Levenshtein fuzzy match (threshold %.2f)", p.Threshold)
	}
	return fmt.Sprintf("%s fuzzy match", p.Algorithm)
}

// Scored is a candidate together with the score the policy gave it
type Scored struct {
	Device audio.Device
	Score  float64
}

// Resolve returns the best device for target under p, or false when no
// candidate is acceptable. Ties always keep the earliest candidate.
func Resolve(target string, candidates []audio.Device, p Policy) (audio.Device, bool) {
	if !p.FuzzyEnabled {
		for _, d := range candidates {
			if d.Name == target {
				return d, true
			}
		}
		return audio.Device{}, false
	}

	best, ok := pickBest(Rank(target, candidates, p))
	if !ok {
		return audio.Device{}, false
	}
	if p.Algorithm == Levenshtein && best.Score < p.Threshold {
		return audio.Device{}, false
	}
	return best.Device, true
}

// Rank scores every candidate the policy can score, in candidate order.
// Exact policies score matching names 1 and omit the rest.
func Rank(target string, candidates []audio.Device, p Policy) []Scored {
	if !p.FuzzyEnabled {
		var scored []Scored
		for _, d := range candidates {
			if d.Name == target {
				scored = append(scored, Scored{Device: d, Score: 1})
			}
		}
		return scored
	}
	if p.Algorithm == Levenshtein {
		return rankLevenshtein(target, candidates)
	}
	return rankSkim(target, candidates)
}

func pickBest(scored []Scored) (Scored, bool) {
	if len(scored) == 0 {
		return Scored{}, false
	}
	best := scored[0]
	for _, s := range scored[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best, true
}

func rankSkim(target string, candidates []audio.Device) []Scored {
	names := make([]string, len(candidates))
	for i, d := range candidates {
		names[i] = d.Name
	}

	// fuzzy.Find sorts by score; restore candidate order so ties resolve
	// to the earliest device.
	byIndex := make(map[int]int)
	for _, m := range fuzzy.Find(target, names) {
		byIndex[m.Index] = m.Score
	}

	caseSensitive := hasUpper(target)
	scored := make([]Scored, 0, len(byIndex))
	for i, d := range candidates {
		if caseSensitive && !isSubsequence(target, d.Name) {
			continue
		}
		if score, ok := byIndex[i]; ok {
			scored = append(scored, Scored{Device: d, Score: float64(score)})
		}
	}
	return scored
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// isSubsequence reports whether every rune of sub appears in s in order
func isSubsequence(sub, s string) bool {
	rest := []rune(sub)
	for _, r := range s {
		if len(rest) == 0 {
			break
		}
		if r == rest[0] {
			rest = rest[1:]
		}
	}
	return len(rest) == 0
}

func rankLevenshtein(target string, candidates []audio.Device) []Scored {
	lowerTarget := strings.ToLower(target)
	scored := make([]Scored, 0, len(candidates))
	for _, d := range candidates {
		scored = append(scored, Scored{
			Device: d,
			Score:  Similarity(strings.ToLower(d.Name), lowerTarget),
		})
	}
	return scored
}

// Similarity returns 1 - distance/maxLen over runes, so identical strings
// score 1 and strings with nothing in common score 0.
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
