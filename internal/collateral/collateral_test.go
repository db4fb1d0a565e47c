package collateral

import (
	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/scoring"
)

func sampleBrief() investor.Brief {
	return investor.Brief{
		Name:     "Orbit",
		OneLiner: "observability for AI agents",
		Sectors:  []string{"ai", "devtools"},
		Stage:    "seed",
		Traction: []string{"t1", "t2", "t3", "t4", "t5", "t6"},
		Ask:      "Closing the round in six weeks.",
	}
}

func sampleMatches(n int) []scoring.Match {
	matches := make([]scoring.Match, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, scoring.Match{
			Investor: investor.Investor{
				Name:      string(rune('A'+i%26)) + "nn",
				Fund:      string(rune('A'+i%26)) + " Capital",
				URLs:      []string{"https://a.example", "https://b.example"},
				WarmPaths: []string{"via Jane"},
			},
			Score: scoring.Score{
				FitScore:  100 - float64(i),
				StageFit:  1,
				SectorFit: 0.5,
				GeoFit:    1,
				Momentum:  0.5,
				Rationale: "stage aligns, sector overlap",
			},
		})
	}
	return matches
}
