package investor

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// Investors is an ordered candidate pool.
type Investors struct {
	Items []Investor
}

// ExcludedInvestors is the persisted list of investors that were already contacted.
type ExcludedInvestors struct {
	Items []*ExcludedInvestor
}

type ExcludedInvestor struct {
	Key        string
	Name       string
	Fund       string
	URL        string
	ExcludedAt time.Time
}

func (v *Investors) Len() int {
	return len(v.Items)
}

func (v *Investors) Keys() []string {
	keys := make([]string, 0, len(v.Items))
	for _, inv := range v.Items {
		keys = append(keys, inv.Key())
	}
	return keys
}

func (v *Investors) FindByKey(key string) *Investor {
	for idx := range v.Items {
		if v.Items[idx].Key() == key {
			return &v.Items[idx]
		}
	}
	return nil
}

// FindByFund returns the first investor whose fund (and name, when given)
// matches case-insensitively.
func (v *Investors) FindByFund(fund, name string) *Investor {
	for idx := range v.Items {
		inv := &v.Items[idx]
		if !strings.EqualFold(strings.TrimSpace(inv.Fund), strings.TrimSpace(fund)) {
			continue
		}
		if name != "" && !strings.EqualFold(strings.TrimSpace(inv.Name), strings.TrimSpace(name)) {
			continue
		}
		return inv
	}
	return nil
}

// Exclude removes every investor whose identity key is in keys, preserving the
// order of the remaining candidates. It returns the removed keys.
func (v *Investors) Exclude(keys []string) []string {
	return v.excludeBy(func(inv *Investor) bool {
		return contains(keys, inv.Key())
	})
}

// ExcludeFunds removes investors whose fund name matches one of funds.
func (v *Investors) ExcludeFunds(funds []string) []string {
	lowered := make([]string, 0, len(funds))
	for _, f := range funds {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			lowered = append(lowered, f)
		}
	}
	return v.excludeBy(func(inv *Investor) bool {
		return contains(lowered, strings.ToLower(strings.TrimSpace(inv.Fund)))
	})
}

// ExcludeWithoutURLs removes investors that carry no link data.
func (v *Investors) ExcludeWithoutURLs() []string {
	return v.excludeBy(func(inv *Investor) bool {
		return !inv.HasURLs()
	})
}

func (v *Investors) excludeBy(drop func(inv *Investor) bool) []string {
	var excluded []string
	kept := v.Items[:0]
	for idx := range v.Items {
		inv := v.Items[idx]
		if drop(&inv) {
			excluded = append(excluded, inv.Key())
			continue
		}
		kept = append(kept, inv)
	}
	v.Items = kept
	return excluded
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func (v *Investors) ToExcluded() *ExcludedInvestors {
	excluded := &ExcludedInvestors{}
	now := time.Now().UTC()
	for _, inv := range v.Items {
		url := ""
		if len(inv.URLs) > 0 {
			url = inv.URLs[0]
		}
		excluded.Items = append(excluded.Items, &ExcludedInvestor{
			Key:        inv.Key(),
			Name:       inv.Name,
			Fund:       inv.Fund,
			URL:        url,
			ExcludedAt: now,
		})
	}
	return excluded
}

func (v *Investors) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "investors_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// GetExcludedFromFile loads the contacted list. A missing or empty file yields
// an empty list.
func GetExcludedFromFile(path string) (*ExcludedInvestors, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedInvestors{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedInvestors{}, nil
	}

	var excluded ExcludedInvestors
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose keys are not yet recorded.
func (e *ExcludedInvestors) Append(s *ExcludedInvestors) {
	known := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.Key] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.Key]; ok {
			continue
		}
		known[item.Key] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedInvestors) Keys() []string {
	keys := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		keys = append(keys, item.Key)
	}
	return keys
}

func (e *ExcludedInvestors) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
