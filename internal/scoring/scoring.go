// Package scoring computes weighted brief/investor fit and ranks candidates.
// Every function here is total: empty or partial input produces a low score,
// never an error.
package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/stage"
)

// Weights of the composite score. They sum to 1.
const (
	WeightStage    = 0.40
	WeightSector   = 0.35
	WeightGeo      = 0.15
	WeightMomentum = 0.10
)

const (
	fallbackRationale = "general thesis alignment"
	neutralMomentum   = 0.5
	broadGeoFit       = 0.5
)

var broadGeoMarkers = map[string]struct{}{
	"remote": {},
	"global": {},
	"us/eu":  {},
}

// Score is the per-(brief, investor) result.
type Score struct {
	FitScore  float64 `json:"fit_score"`
	StageFit  float64 `json:"stage_fit"`
	SectorFit float64 `json:"sector_fit"`
	GeoFit    float64 `json:"geo_fit"`
	Momentum  float64 `json:"momentum"`
	Rationale string  `json:"rationale"`
}

// Match pairs a copy of an investor record with its score. EmailDraft is
// filled on demand and is empty after ranking.
type Match struct {
	Investor   investor.Investor `json:"investor"`
	Score      Score             `json:"score"`
	EmailDraft string            `json:"email_draft,omitempty"`
}

// ScoreOne scores a single investor against the brief.
func ScoreOne(brief investor.Brief, inv investor.Investor) Score {
	stageFit := stage.Fit(brief.Stage, inv.Stages)
	sectorFit := SectorFit(brief.Sectors, inv.Sectors)
	geoFit := GeoFit(brief.Geo, inv.Geo)
	momentum := Momentum(inv)

	// Conversions keep each product separately rounded so the sum never
	// becomes a fused multiply-add.
	total := float64(WeightStage*clamp(stageFit)) +
		float64(WeightSector*clamp(sectorFit)) +
		float64(WeightGeo*clamp(geoFit)) +
		float64(WeightMomentum*clamp(momentum))

	return Score{
		FitScore:  round(100*total, 1),
		StageFit:  round(stageFit, 2),
		SectorFit: round(sectorFit, 2),
		GeoFit:    round(geoFit, 2),
		Momentum:  round(momentum, 2),
		Rationale: Rationale(stageFit, sectorFit, geoFit, inv.HasNews()),
	}
}

// SectorFit is the share of brief sectors the investor also covers.
func SectorFit(briefSectors, investorSectors []string) float64 {
	wanted := lowerSet(briefSectors)
	if len(wanted) == 0 {
		return 0
	}

	have := lowerSet(investorSectors)
	overlap := 0
	for s := range wanted {
		if _, ok := have[s]; ok {
			overlap++
		}
	}

	return clamp(float64(overlap) / math.Max(1, float64(len(wanted))))
}

// GeoFit is a loose two-way substring test. An empty investor geo is a
// substring of every brief geo and therefore counts as a full match.
func GeoFit(briefGeo, investorGeo string) float64 {
	b := strings.ToLower(strings.TrimSpace(briefGeo))
	i := strings.ToLower(strings.TrimSpace(investorGeo))

	if b == "" || strings.Contains(i, b) || strings.Contains(b, i) {
		return 1
	}
	if _, ok := broadGeoMarkers[i]; ok {
		return broadGeoFit
	}
	return 0
}

// Momentum treats missing news as neutral rather than negative.
func Momentum(inv investor.Investor) float64 {
	if inv.HasNews() {
		return 1
	}
	return neutralMomentum
}

// Rationale lists the contributing factors in a fixed order.
func Rationale(stageFit, sectorFit, geoFit float64, hasNews bool) string {
	bits := make([]string, 0, 4)

	switch {
	case stageFit >= 0.9:
		bits = append(bits, "stage aligns")
	case stageFit >= 0.7:
		bits = append(bits, "nearby stage")
	}
	if sectorFit >= 0.5 {
		bits = append(bits, "sector overlap")
	}
	if geoFit >= 0.9 {
		bits = append(bits, "geo fit")
	}
	if hasNews {
		bits = append(bits, "recent activity")
	}

	if len(bits) == 0 {
		return fallbackRationale
	}
	return strings.Join(bits, ", ")
}

// Rank scores every investor and returns them ordered by fit score, highest
// first. Equal scores keep their input order. Nothing is dropped.
func Rank(brief investor.Brief, investors []investor.Investor) []Match {
	out := make([]Match, 0, len(investors))
	for _, inv := range investors {
		out = append(out, Match{
			Investor: inv.Clone(),
			Score:    ScoreOne(brief, inv),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.FitScore > out[j].Score.FitScore
	})

	return out
}

// Top returns at most k matches; k <= 0 returns all of them.
func Top(matches []Match, k int) []Match {
	if k <= 0 || k >= len(matches) {
		return matches
	}
	return matches[:k]
}

func lowerSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out[item] = struct{}{}
		}
	}
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// round rounds the exact binary value of v to the given number of decimal
// places, sending exact halves to the even digit.
func round(v float64, places int) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return out
}
