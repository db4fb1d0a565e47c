package stage

import "testing"

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect string
	}{
		{"Seed", "seed"},
		{"preseed", "pre-seed"},
		{"Pre Seed", "pre-seed"},
		{"pre_seed", "pre-seed"},
		{"  PRE-SEED ", "pre-seed"},
		{"seed plus", "seed+"},
		{"Seed Extension", "seed+"},
		{"seed+", "seed+"},
		{"Pre-Series-A", "pre-series-a"},
		{"pre series   a", "pre-series-a"},
		{"Series A", "series-a"},
		{"series_b", "series-b"},
		{"SeriesC", "series-c"},
		{"angel", "angel"},
		{"growth / late", "growth-late"},
		{"Series D", "series-d"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := Canonical(tt.input); got != tt.expect {
				t.Fatalf("Canonical(%q): expected %q, got %q", tt.input, tt.expect, got)
			}
		})
	}
}

func TestCanonicalCoversVocabulary(t *testing.T) {
	for _, token := range Vocabulary() {
		if got := Canonical(token); got != token {
			t.Fatalf("canonical token %q is not a fixed point, got %q", token, got)
		}
	}
}

func TestFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		desired  string
		investor []string
		expect   float64
	}{
		{"empty desired", "", []string{"seed"}, FitNone},
		{"blank desired", "   ", []string{"seed"}, FitNone},
		{"exact", "seed", []string{"series-a", "seed"}, FitExact},
		{"exact after normalization", "series-a", []string{"Series A"}, FitExact},
		{"equivalence seed group", "seed", []string{"pre-series-a"}, FitEquivalent},
		{"equivalence pre-seed group", "pre-seed", []string{"angel"}, FitEquivalent},
		{"equivalence angel", "angel", []string{"pre-seed"}, FitEquivalent},
		{"equivalence series-a group", "pre-series-a", []string{"series-a"}, FitEquivalent},
		{"adjacency series-a to series-b", "series-a", []string{"series-b"}, FitAdjacent},
		{"adjacency seed to series-a", "seed", []string{"series-a"}, FitAdjacent},
		{"adjacency series-c to series-b", "series-c", []string{"series-b"}, FitAdjacent},
		{"adjacency pre-seed to seed", "pre-seed", []string{"seed"}, FitAdjacent},
		{"no relation", "angel", []string{"series-c"}, FitNone},
		{"no investor stages", "seed", nil, FitNone},
		{"unknown desired", "growth", []string{"growth-equity"}, FitNone},
		{"unknown desired exact slug", "Growth Equity", []string{"growth_equity"}, FitExact},
		{"equivalence wins over adjacency", "seed", []string{"seed+", "series-a"}, FitEquivalent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Fit(tt.desired, tt.investor); got != tt.expect {
				t.Fatalf("Fit(%q, %v): expected %v, got %v", tt.desired, tt.investor, tt.expect, got)
			}
		})
	}
}

func TestFitLevelsAreDiscrete(t *testing.T) {
	allowed := map[float64]bool{FitExact: true, FitEquivalent: true, FitAdjacent: true, FitNone: true}
	stages := append(Vocabulary(), "", "growth", "Series D")

	for _, desired := range stages {
		for _, inv := range stages {
			got := Fit(desired, []string{inv})
			if !allowed[got] {
				t.Fatalf("Fit(%q, [%q]) returned non-tier value %v", desired, inv, got)
			}
		}
	}
}

func TestVocabularyIsCopy(t *testing.T) {
	v := Vocabulary()
	v[0] = "mutated"
	if Vocabulary()[0] != Angel {
		t.Fatalf("vocabulary must not be mutable by callers")
	}
}
