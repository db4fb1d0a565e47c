// Package stage canonicalizes fundraising stage labels and grades how well
// an investor's stages fit a desired stage.
package stage

import "strings"

// Canonical stage tokens ordered by typical fundraising progression.
const (
	Angel      = "angel"
	PreSeed    = "pre-seed"
	Seed       = "seed"
	SeedPlus   = "seed+"
	PreSeriesA = "pre-series-a"
	SeriesA    = "series-a"
	SeriesB    = "series-b"
	SeriesC    = "series-c"
)

// Fitness levels returned by Fit.
const (
	FitExact      = 1.0
	FitEquivalent = 0.75
	FitAdjacent   = 0.4
	FitNone       = 0.0
)

var vocabulary = []string{Angel, PreSeed, Seed, SeedPlus, PreSeriesA, SeriesA, SeriesB, SeriesC}

// synonyms is keyed by the space-separated, lowercased form of a label.
var synonyms = map[string]string{
	"angel":          Angel,
	"preseed":        PreSeed,
	"pre seed":       PreSeed,
	"seed":           Seed,
	"seed+":          SeedPlus,
	"seed plus":      SeedPlus,
	"seed extension": SeedPlus,
	"pre series a":   PreSeriesA,
	"preseries a":    PreSeriesA,
	"pre seriesa":    PreSeriesA,
	"series a":       SeriesA,
	"seriesa":        SeriesA,
	"series b":       SeriesB,
	"seriesb":        SeriesB,
	"series c":       SeriesC,
	"seriesc":        SeriesC,
}

type group struct {
	name    string
	members map[string]struct{}
}

// Groups are checked in declaration order; the first group containing the
// desired stage and sharing a member with the investor wins.
var equivalence = []group{
	{name: PreSeed, members: set(Angel, PreSeed)},
	{name: Seed, members: set(Seed, SeedPlus, PreSeriesA)},
	{name: SeriesA, members: set(PreSeriesA, SeriesA)},
	{name: SeriesB, members: set(SeriesB)},
	{name: SeriesC, members: set(SeriesC)},
}

var adjacency = map[string]map[string]struct{}{
	PreSeed:    set(Seed),
	Seed:       set(PreSeed, PreSeriesA, SeriesA),
	PreSeriesA: set(Seed, SeriesA),
	SeriesA:    set(PreSeriesA, SeriesB),
	SeriesB:    set(SeriesA, SeriesC),
	SeriesC:    set(SeriesB),
}

func set(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}

// Vocabulary returns the canonical stage tokens in progression order.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Canonical maps a free-form stage label to its canonical token. Labels that
// match no known variant come back as a lowercased, hyphenated slug.
func Canonical(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer("_", " ", "/", " ", "-", " ").Replace(v)
	v = strings.Join(strings.Fields(v), " ")

	if canon, ok := synonyms[v]; ok {
		return canon
	}
	return strings.ReplaceAll(v, " ", "-")
}

// CanonicalSet canonicalizes every label, dropping empty results.
func CanonicalSet(raw []string) map[string]struct{} {
	out := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		if c := Canonical(s); c != "" {
			out[c] = struct{}{}
		}
	}
	return out
}

// Fit grades desired against the investor stages. The result is always one of
// FitExact, FitEquivalent, FitAdjacent or FitNone.
func Fit(desired string, investorStages []string) float64 {
	if strings.TrimSpace(desired) == "" {
		return FitNone
	}

	u := Canonical(desired)
	inv := CanonicalSet(investorStages)

	if _, ok := inv[u]; ok {
		return FitExact
	}

	for _, g := range equivalence {
		if _, ok := g.members[u]; !ok {
			continue
		}
		if intersects(g.members, inv) {
			return FitEquivalent
		}
	}

	if intersects(adjacency[u], inv) {
		return FitAdjacent
	}

	return FitNone
}

func intersects(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
