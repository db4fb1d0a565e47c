package investor

import "testing"

func rec(name, fund string, urls ...string) Investor {
	return ApplyDefaults(Investor{Name: name, Fund: fund, URLs: urls}, nil, "")
}

func TestMergeDeduplicatesByIdentity(t *testing.T) {
	live := []Investor{rec("Jane", "Acme"), rec("Bob", "Beta Capital")}
	seed := []Investor{rec("jane ", "ACME"), rec("Carol", "Gamma Ventures")}

	merged := Merge(live, seed)

	if len(merged) != 3 {
		t.Fatalf("expected 3 investors, got %d", len(merged))
	}

	expected := []string{"Jane", "Bob", "Carol"}
	for idx, name := range expected {
		if merged[idx].Name != name {
			t.Fatalf("position %d: expected %q, got %q", idx, name, merged[idx].Name)
		}
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	src := []Investor{rec("Jane", "Acme"), rec("Bob", "Beta"), rec("Jane", "Acme", "https://acme.vc")}

	once := Merge(src, nil)
	twice := Merge(once, once)

	if len(once) != 2 || len(twice) != 2 {
		t.Fatalf("expected 2 identities, got %d and %d", len(once), len(twice))
	}
	for idx := range once {
		if once[idx].Key() != twice[idx].Key() {
			t.Fatalf("identity order changed at %d", idx)
		}
	}
}

func TestMergePrefersRecordWithURLs(t *testing.T) {
	bare := rec("Jane", "Acme")
	linked := rec("Jane", "Acme", "https://acme.vc")

	tests := []struct {
		name   string
		first  []Investor
		second []Investor
	}{
		{name: "linked first", first: []Investor{linked}, second: []Investor{bare}},
		{name: "linked second", first: []Investor{bare}, second: []Investor{linked}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(tt.first, tt.second)
			if len(merged) != 1 {
				t.Fatalf("expected 1 investor, got %d", len(merged))
			}
			if !merged[0].HasURLs() || merged[0].URLs[0] != "https://acme.vc" {
				t.Fatalf("expected merged record to carry urls, got %+v", merged[0].URLs)
			}
		})
	}
}

func TestMergeKeepsFirstWhenBothHaveURLs(t *testing.T) {
	a := rec("Jane", "Acme", "https://first.example")
	b := rec("Jane", "Acme", "https://second.example")

	merged := Merge([]Investor{a}, []Investor{b})
	if merged[0].URLs[0] != "https://first.example" {
		t.Fatalf("expected first-seen record, got %v", merged[0].URLs)
	}
}

func TestMergeEmpty(t *testing.T) {
	if merged := Merge(nil, nil); len(merged) != 0 {
		t.Fatalf("expected empty result, got %d", len(merged))
	}
}
