package scoring

import (
	"math"
	"testing"

	"github.com/spigell/fundraiser/internal/investor"
)

func TestSectorFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		brief  []string
		inv    []string
		expect float64
	}{
		{"half overlap", []string{"ai", "fintech"}, []string{"ai"}, 0.5},
		{"no brief sectors", nil, []string{"ai"}, 0},
		{"case insensitive", []string{"AI"}, []string{"ai", "bio"}, 1},
		{"duplicates collapse", []string{"ai", "ai", "fintech"}, []string{"AI"}, 0.5},
		{"no investor sectors", []string{"ai"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SectorFit(tt.brief, tt.inv); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestGeoFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		brief  string
		inv    string
		expect float64
	}{
		{"empty brief geo", "", "apac", 1},
		{"brief substring of investor", "us", "us/eu", 1},
		{"investor substring of brief", "San Francisco, US", "us", 1},
		{"broad marker", "us", "global", 0.5},
		{"remote marker", "berlin", "Remote", 0.5},
		{"no match", "us", "apac", 0},
		// Literal substring semantics: short tokens match inside longer strings.
		{"short token quirk", "us", "austin", 1},
		// An empty investor geo is contained in every brief geo.
		{"empty investor geo quirk", "us", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GeoFit(tt.brief, tt.inv); got != tt.expect {
				t.Fatalf("GeoFit(%q, %q): expected %v, got %v", tt.brief, tt.inv, tt.expect, got)
			}
		})
	}
}

func TestMomentum(t *testing.T) {
	if got := Momentum(investor.Investor{}); got != 0.5 {
		t.Fatalf("expected neutral momentum, got %v", got)
	}
	if got := Momentum(investor.Investor{RecentNews: []string{"raised fund III"}}); got != 1 {
		t.Fatalf("expected full momentum, got %v", got)
	}
}

func TestRationale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stage  float64
		sector float64
		geo    float64
		news   bool
		expect string
	}{
		{"all factors", 1, 1, 1, true, "stage aligns, sector overlap, geo fit, recent activity"},
		{"nearby stage", 0.75, 0, 0, false, "nearby stage"},
		{"adjacent stage is silent", 0.4, 0.5, 0.5, false, "sector overlap"},
		{"fallback", 0, 0.3, 0.5, false, "general thesis alignment"},
		{"geo and news", 0, 0, 1, true, "geo fit, recent activity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Rationale(tt.stage, tt.sector, tt.geo, tt.news); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestScoreOne(t *testing.T) {
	brief := investor.Brief{Sectors: []string{"ai"}, Stage: "seed", Geo: "us"}
	inv := investor.Investor{
		Name:       "Jane",
		Fund:       "Acme",
		Stages:     []string{"Seed"},
		Sectors:    []string{"AI"},
		Geo:        "US",
		RecentNews: []string{"led a round"},
	}

	got := ScoreOne(brief, inv)

	if got.FitScore != 100 {
		t.Fatalf("expected perfect score, got %v", got.FitScore)
	}
	if got.StageFit != 1 || got.SectorFit != 1 || got.GeoFit != 1 || got.Momentum != 1 {
		t.Fatalf("unexpected sub-scores: %+v", got)
	}
	if got.Rationale != "stage aligns, sector overlap, geo fit, recent activity" {
		t.Fatalf("unexpected rationale: %q", got.Rationale)
	}
}

func TestScoreOneEmptyInput(t *testing.T) {
	got := ScoreOne(investor.Brief{}, investor.Investor{})

	// stage 0, sector 0, geo 1 (no brief geo), momentum 0.5
	if got.FitScore != 20 {
		t.Fatalf("expected 20, got %v", got.FitScore)
	}
	if got.StageFit != 0 || got.SectorFit != 0 {
		t.Fatalf("unexpected sub-scores: %+v", got)
	}
	if got.Rationale != "geo fit" {
		t.Fatalf("unexpected rationale: %q", got.Rationale)
	}
}

func TestScoreOneEquivalentStage(t *testing.T) {
	brief := investor.Brief{Sectors: []string{"ai", "fintech"}, Stage: "seed", Geo: "us"}
	inv := investor.Investor{Stages: []string{"pre-series-a"}, Sectors: []string{"ai"}, Geo: "apac"}

	got := ScoreOne(brief, inv)

	if got.StageFit != 0.75 || got.SectorFit != 0.5 || got.GeoFit != 0 || got.Momentum != 0.5 {
		t.Fatalf("unexpected sub-scores: %+v", got)
	}
	// 0.4*0.75 + 0.35*0.5 + 0 + 0.1*0.5 = 0.525
	if math.Abs(got.FitScore-52.5) > 1e-9 {
		t.Fatalf("expected 52.5, got %v", got.FitScore)
	}
	if got.Rationale != "nearby stage, sector overlap" {
		t.Fatalf("unexpected rationale: %q", got.Rationale)
	}
}

func TestScoreOneRoundsHalvesToEven(t *testing.T) {
	t.Parallel()

	sectors := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = string(rune('a' + i))
		}
		return out
	}

	tests := []struct {
		name      string
		brief     []string
		inv       []string
		fitScore  float64
		sectorFit float64
	}{
		// 100 * (0.35*0.75 + 0.15 + 0.05) is exactly 46.25
		{"three of four sectors", sectors(4), sectors(3), 46.2, 0.75},
		{"one of eight sectors", sectors(8), sectors(1), 24.4, 0.12},
		{"five of eight sectors", sectors(8), sectors(5), 41.9, 0.62},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			brief := investor.Brief{Stage: "seed", Sectors: tt.brief, Geo: "us"}
			inv := investor.Investor{Stages: []string{"series-c"}, Sectors: tt.inv, Geo: "us"}

			got := ScoreOne(brief, inv)
			if got.StageFit != 0 {
				t.Fatalf("expected no stage fit, got %v", got.StageFit)
			}
			if got.SectorFit != tt.sectorFit {
				t.Fatalf("expected sector fit %v, got %v", tt.sectorFit, got.SectorFit)
			}
			if got.FitScore != tt.fitScore {
				t.Fatalf("expected fit score %v, got %v", tt.fitScore, got.FitScore)
			}
		})
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     float64
		places int
		expect float64
	}{
		{0.125, 2, 0.12},
		{0.625, 2, 0.62},
		{0.375, 2, 0.38},
		{2.5, 0, 2},
		{3.5, 0, 4},
		{52.5, 1, 52.5},
	}

	for _, tt := range tests {
		if got := round(tt.in, tt.places); got != tt.expect {
			t.Fatalf("round(%v, %d): expected %v, got %v", tt.in, tt.places, tt.expect, got)
		}
	}
}

func TestFitScoreBoundsAndPrecision(t *testing.T) {
	stages := []string{"", "angel", "seed", "series-a", "series-c", "growth"}
	sectors := [][]string{nil, {"ai"}, {"ai", "bio", "fintech"}}
	geos := []string{"", "us", "global", "apac", "us/eu"}

	for _, bs := range stages {
		for _, is := range stages {
			for _, sec := range sectors {
				for _, g := range geos {
					brief := investor.Brief{Stage: bs, Sectors: sec, Geo: g}
					inv := investor.Investor{Stages: []string{is}, Sectors: []string{"ai"}, Geo: g}
					got := ScoreOne(brief, inv).FitScore

					if got < 0 || got > 100 {
						t.Fatalf("score out of range: %v", got)
					}
					if math.Abs(got*10-math.Round(got*10)) > 1e-6 {
						t.Fatalf("score %v has more than one decimal", got)
					}
				}
			}
		}
	}
}

func TestRankIsStablePermutation(t *testing.T) {
	brief := investor.Brief{Sectors: []string{"ai"}, Stage: "seed", Geo: "us"}
	investors := []investor.Investor{
		{Name: "low-1", Stages: []string{"series-c"}, Geo: "apac"},
		{Name: "high", Stages: []string{"seed"}, Sectors: []string{"ai"}, Geo: "us"},
		{Name: "low-2", Stages: []string{"series-c"}, Geo: "apac"},
		{Name: "mid", Stages: []string{"series-a"}, Sectors: []string{"ai"}, Geo: "apac"},
		{Name: "low-3", Stages: []string{"series-c"}, Geo: "apac"},
	}

	ranked := Rank(brief, investors)

	if len(ranked) != len(investors) {
		t.Fatalf("expected %d matches, got %d", len(investors), len(ranked))
	}

	expected := []string{"high", "mid", "low-1", "low-2", "low-3"}
	for idx, name := range expected {
		if ranked[idx].Investor.Name != name {
			t.Fatalf("position %d: expected %q, got %q", idx, name, ranked[idx].Investor.Name)
		}
	}

	for idx := 1; idx < len(ranked); idx++ {
		if ranked[idx-1].Score.FitScore < ranked[idx].Score.FitScore {
			t.Fatalf("ranking not descending at %d", idx)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	investors := []investor.Investor{{Name: "a", Sectors: []string{"ai"}}}
	ranked := Rank(investor.Brief{Stage: "seed"}, investors)

	ranked[0].Investor.Sectors[0] = "changed"
	if investors[0].Sectors[0] != "ai" {
		t.Fatalf("source record mutated")
	}
}

func TestTop(t *testing.T) {
	matches := make([]Match, 5)
	if len(Top(matches, 3)) != 3 {
		t.Fatalf("expected 3")
	}
	if len(Top(matches, 0)) != 5 || len(Top(matches, 10)) != 5 {
		t.Fatalf("expected all matches")
	}
}
