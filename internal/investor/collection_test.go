package investor

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestInvestorsExcludePreservesOrder(t *testing.T) {
	a, b, c := rec("A", "Fa"), rec("B", "Fb"), rec("C", "Fc")
	v := &Investors{Items: []Investor{a, b, c}}

	removed := v.Exclude([]string{b.Key(), "unknown"})

	if !reflect.DeepEqual(removed, []string{b.Key()}) {
		t.Fatalf("unexpected removed keys: %v", removed)
	}
	if v.Len() != 2 || v.Items[0].Name != "A" || v.Items[1].Name != "C" {
		t.Fatalf("unexpected remaining items: %+v", v.Items)
	}
}

func TestInvestorsExcludeFunds(t *testing.T) {
	v := &Investors{Items: []Investor{rec("A", "Acme Capital"), rec("B", "Beta")}}

	removed := v.ExcludeFunds([]string{" acme capital ", ""})
	if len(removed) != 1 || v.Len() != 1 || v.Items[0].Name != "B" {
		t.Fatalf("unexpected result: removed=%v items=%+v", removed, v.Items)
	}
}

func TestInvestorsExcludeWithoutURLs(t *testing.T) {
	v := &Investors{Items: []Investor{rec("A", "Fa"), rec("B", "Fb", "https://b.vc")}}

	removed := v.ExcludeWithoutURLs()
	if len(removed) != 1 || v.Items[0].Name != "B" {
		t.Fatalf("unexpected result: removed=%v items=%+v", removed, v.Items)
	}
}

func TestInvestorsFind(t *testing.T) {
	v := &Investors{Items: []Investor{rec("Jane", "Acme"), rec("Bob", "Acme")}}

	if got := v.FindByFund("acme", "bob"); got == nil || got.Name != "Bob" {
		t.Fatalf("unexpected match: %+v", got)
	}
	if got := v.FindByFund("ACME", ""); got == nil || got.Name != "Jane" {
		t.Fatalf("unexpected match: %+v", got)
	}
	if got := v.FindByKey(IdentityKey("Bob", "Acme")); got == nil || got.Name != "Bob" {
		t.Fatalf("unexpected match by key: %+v", got)
	}
	if v.FindByKey("nope") != nil {
		t.Fatalf("expected nil for unknown key")
	}
}

func TestExcludedInvestorsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacted.json")

	empty, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if len(empty.Items) != 0 {
		t.Fatalf("expected empty list")
	}

	v := &Investors{Items: []Investor{rec("Jane", "Acme", "https://acme.vc")}}
	empty.Append(v.ToExcluded())
	empty.Append(v.ToExcluded())

	if len(empty.Items) != 1 {
		t.Fatalf("expected duplicate keys to be collapsed, got %d", len(empty.Items))
	}

	if err := empty.ToFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(loaded.Keys(), []string{IdentityKey("Jane", "Acme")}) {
		t.Fatalf("unexpected keys: %v", loaded.Keys())
	}
	if loaded.Items[0].URL != "https://acme.vc" {
		t.Fatalf("unexpected url: %q", loaded.Items[0].URL)
	}
}
