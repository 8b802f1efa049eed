// Package match scores the confidence that a candidate's displayed name
// refers to the same person as a search query.
package match

import (
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokens is the floor below which a name is too short to score.
const DefaultMinTokens = 2

// Scorer computes a confidence score in [0,1] between a query and a
// candidate display name. Implementations are pure and deterministic.
type Scorer interface {
	Score(query, candidate string) float64
}

// Scoring modes selectable via config.
const (
	ModeWeighted = "weighted"
	ModeJaccard  = "jaccard"
)

// New returns the scorer for the given mode. minTokens <= 0 falls back to
// DefaultMinTokens.
func New(mode string, minTokens int) (Scorer, error) {
	if minTokens <= 0 {
		minTokens = DefaultMinTokens
	}
	switch mode {
	case ModeWeighted, "":
		return WeightedOverlap{MinTokens: minTokens}, nil
	case ModeJaccard:
		return Jaccard{MinTokens: minTokens}, nil
	default:
		return nil, eris.Errorf("match: unknown scoring mode %q (valid: %s, %s)", mode, ModeWeighted, ModeJaccard)
	}
}

// Tokens normalizes a name into comparable tokens: diacritics folded,
// uppercased, hyphens and apostrophes treated as separators, everything
// outside [A-Z0-9 ] dropped.
func Tokens(s string) []string {
	s = foldDiacritics(s)
	s = strings.ToUpper(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

// foldDiacritics strips combining marks so "Pérez" and "Perez" tokenize
// identically. International rosters mix both forms freely.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	tokens := Tokens(s)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func intersection(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

// WeightedOverlap favors explaining the query's own tokens over penalizing
// the candidate for extras (middle names, titles):
//
//	0.7*(|inter|/|query|) + 0.3*(|inter|/|candidate|)
type WeightedOverlap struct {
	MinTokens int
}

func (s WeightedOverlap) Score(query, candidate string) float64 {
	q := tokenSet(query)
	c := tokenSet(candidate)
	if len(q) < s.MinTokens || len(c) < s.MinTokens {
		return 0.0
	}
	inter := intersection(q, c)
	if inter == 0 {
		return 0.0
	}
	return 0.7*float64(inter)/float64(len(q)) + 0.3*float64(inter)/float64(len(c))
}

// Jaccard is the |inter|/|union| variant for directories whose display names
// are expected to be near-exact.
type Jaccard struct {
	MinTokens int
}

func (s Jaccard) Score(query, candidate string) float64 {
	q := tokenSet(query)
	c := tokenSet(candidate)
	if len(q) < s.MinTokens || len(c) < s.MinTokens {
		return 0.0
	}
	inter := intersection(q, c)
	if inter == 0 {
		return 0.0
	}
	union := len(q) + len(c) - inter
	return float64(inter) / float64(union)
}
