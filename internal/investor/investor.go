// Package investor holds the brief and investor records shared by discovery,
// scoring and collateral generation, together with the source merger.
package investor

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/fundraiser/internal/stage"
)

const (
	DefaultAsk  = "Raising intro meetings with aligned investors."
	defaultName = "Investor"
	defaultGeo  = "global"
)

var (
	ErrNoSectors = errors.New("please select at least one sector")
	ErrNoStage   = errors.New("please select a stage")

	defaultSectors = []string{"ai", "infra"}
)

// Brief is the requesting startup's fundraising profile.
type Brief struct {
	Name         string   `json:"name" yaml:"name" mapstructure:"name"`
	OneLiner     string   `json:"one_liner" yaml:"one_liner" mapstructure:"one_liner"`
	Sectors      []string `json:"sector" yaml:"sector" mapstructure:"sector"`
	Stage        string   `json:"stage" yaml:"stage" mapstructure:"stage"`
	RoundSizeUSD *float64 `json:"round_size_usd,omitempty" yaml:"round_size_usd" mapstructure:"round_size_usd"`
	Geo          string   `json:"geo,omitempty" yaml:"geo" mapstructure:"geo"`
	Traction     []string `json:"traction" yaml:"traction" mapstructure:"traction"`
	Ask          string   `json:"ask" yaml:"ask" mapstructure:"ask"`
}

// Normalize canonicalizes the stage, lowercases sectors and fills the default ask.
func (b *Brief) Normalize() {
	b.Stage = stage.Canonical(b.Stage)

	sectors := make([]string, 0, len(b.Sectors))
	for _, s := range b.Sectors {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		sectors = append(sectors, s)
	}
	b.Sectors = sectors

	b.Geo = strings.TrimSpace(b.Geo)
	if strings.TrimSpace(b.Ask) == "" {
		b.Ask = DefaultAsk
	}
	if b.Traction == nil {
		b.Traction = []string{}
	}
}

// Validate enforces the request-level rules. The scoring core never calls it.
func (b *Brief) Validate() error {
	if len(b.Sectors) == 0 {
		return ErrNoSectors
	}
	if b.Stage == "" {
		return ErrNoStage
	}
	return nil
}

// Investor is a candidate capital source.
type Investor struct {
	Name               string   `json:"name" mapstructure:"name"`
	Fund               string   `json:"fund" mapstructure:"fund"`
	Stages             []string `json:"stages" mapstructure:"stages"`
	Sectors            []string `json:"sectors" mapstructure:"sectors"`
	CheckMin           *float64 `json:"check_min,omitempty" mapstructure:"check_min"`
	CheckMax           *float64 `json:"check_max,omitempty" mapstructure:"check_max"`
	Geo                string   `json:"geo,omitempty" mapstructure:"geo"`
	NotableInvestments []string `json:"notable_investments" mapstructure:"notable_investments"`
	RecentNews         []string `json:"recent_news" mapstructure:"recent_news"`
	URLs               []string `json:"urls" mapstructure:"urls"`
	WarmPaths          []string `json:"warm_paths" mapstructure:"warm_paths"`
	UniqueKey          string   `json:"unique_key,omitempty" mapstructure:"unique_key"`
}

// IdentityKey derives the deduplication key from a display name and fund name.
func IdentityKey(name, fund string) string {
	raw := strings.ToLower(strings.TrimSpace(name + "|" + fund))
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Key returns the stored identity key, computing it when absent.
func (i *Investor) Key() string {
	if i.UniqueKey != "" {
		return i.UniqueKey
	}
	return IdentityKey(i.Name, i.Fund)
}

// HasURLs reports whether the record carries any link data.
func (i *Investor) HasURLs() bool {
	return len(i.URLs) > 0
}

// HasNews reports whether enrichment attached recent activity.
func (i *Investor) HasNews() bool {
	return len(i.RecentNews) > 0
}

// Clone returns a deep copy so callers can attach results without touching
// the source record.
func (i Investor) Clone() Investor {
	out := i
	out.Stages = cloneStrings(i.Stages)
	out.Sectors = cloneStrings(i.Sectors)
	out.NotableInvestments = cloneStrings(i.NotableInvestments)
	out.RecentNews = cloneStrings(i.RecentNews)
	out.URLs = cloneStrings(i.URLs)
	out.WarmPaths = cloneStrings(i.WarmPaths)
	if i.CheckMin != nil {
		v := *i.CheckMin
		out.CheckMin = &v
	}
	if i.CheckMax != nil {
		v := *i.CheckMax
		out.CheckMax = &v
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ApplyDefaults fills every absent field so scoring never sees a missing
// collection. Requested sectors and stage are used where the record is silent.
func ApplyDefaults(inv Investor, sectors []string, requestedStage string) Investor {
	out := inv.Clone()

	out.Name = strings.TrimSpace(out.Name)
	out.Fund = strings.TrimSpace(out.Fund)
	if out.Name == "" {
		out.Name = out.Fund
	}
	if out.Fund == "" {
		out.Fund = out.Name
	}
	if out.Name == "" {
		out.Name = defaultName
		out.Fund = defaultName
	}

	if len(out.Stages) == 0 {
		if s := strings.TrimSpace(requestedStage); s != "" {
			out.Stages = []string{s}
		} else {
			out.Stages = []string{stage.Seed}
		}
	}
	if len(out.Sectors) == 0 {
		if len(sectors) > 0 {
			out.Sectors = cloneStrings(sectors)
		} else {
			out.Sectors = cloneStrings(defaultSectors)
		}
	}
	if strings.TrimSpace(out.Geo) == "" {
		out.Geo = defaultGeo
	}
	if out.URLs == nil {
		out.URLs = []string{}
	}
	if out.NotableInvestments == nil {
		out.NotableInvestments = []string{}
	}
	if out.RecentNews == nil {
		out.RecentNews = []string{}
	}
	if out.WarmPaths == nil {
		out.WarmPaths = []string{}
	}

	out.UniqueKey = IdentityKey(out.Name, out.Fund)
	return out
}

// LoadCatalog reads the static seed catalog. Records go through
// ApplyDefaults with the seed stage, which also assigns identity keys.
func LoadCatalog(path string) ([]Investor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading investor catalog %q: %w", path, err)
	}

	var catalog []Investor
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decoding investor catalog %q: %w", path, err)
	}

	for idx := range catalog {
		catalog[idx] = ApplyDefaults(catalog[idx], nil, stage.Seed)
	}
	return catalog, nil
}
