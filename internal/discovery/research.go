// Package discovery assembles the candidate investor pool from live web
// search and the static seed catalog.
package discovery

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/stage"
)

// Enricher attaches recent highlights to candidates.
type Enricher interface {
	Enrich(ctx context.Context, investors []investor.Investor) []investor.Investor
}

// Researcher combines live discovery, the seed catalog and optional enrichment.
type Researcher struct {
	live     *Live
	catalog  []investor.Investor
	enricher Enricher
	logger   *zap.Logger
}

// NewResearcher wires the research sources. live and enricher may be nil.
func NewResearcher(live *Live, catalog []investor.Investor, enricher Enricher, log *zap.Logger) *Researcher {
	return &Researcher{
		live:     live,
		catalog:  catalog,
		enricher: enricher,
		logger:   logger.OrNop(log),
	}
}

// Research returns the merged candidate pool for the brief. Live results
// come first. Enrichment runs only when allowScrape is set.
func (r *Researcher) Research(ctx context.Context, brief investor.Brief, allowScrape bool) []investor.Investor {
	sectors := nonEmpty(brief.Sectors)
	requested := strings.ToLower(strings.TrimSpace(brief.Stage))
	geo := strings.TrimSpace(brief.Geo)

	if len(sectors) == 0 && requested == "" && geo == "" {
		r.logger.Info("brief has no signal, nothing to research")
		return []investor.Investor{}
	}

	if requested == "" {
		requested = stage.Seed
	}

	live := r.live.Discover(ctx, sectors, requested, geo)
	seed := FilterSeedRelevance(r.catalog, sectors, requested)
	merged := investor.Merge(live, seed)

	r.logger.Info("research finished",
		zap.Int("live", len(live)),
		zap.Int("seed", len(seed)),
		zap.Int("merged", len(merged)),
	)

	if allowScrape && r.enricher != nil {
		merged = r.enricher.Enrich(ctx, merged)
	}

	return merged
}

// FilterSeedRelevance keeps catalog investors that share a sector with the
// request or list the requested stage. Stage hits sort first, then larger
// sector overlaps. Ties keep catalog order.
func FilterSeedRelevance(catalog []investor.Investor, sectors []string, requested string) []investor.Investor {
	wanted := make(map[string]struct{}, len(sectors))
	for _, s := range sectors {
		wanted[strings.ToLower(s)] = struct{}{}
	}
	requested = stage.Canonical(requested)

	type scored struct {
		inv        investor.Investor
		stageMatch int
		overlap    int
	}

	relevant := make([]scored, 0, len(catalog))
	for _, inv := range catalog {
		overlap := 0
		seen := make(map[string]struct{}, len(inv.Sectors))
		for _, s := range inv.Sectors {
			s = strings.ToLower(s)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			if _, ok := wanted[s]; ok {
				overlap++
			}
		}

		stageMatch := 0
		if requested != "" {
			if _, ok := stage.CanonicalSet(inv.Stages)[requested]; ok {
				stageMatch = 1
			}
		}

		if overlap == 0 && stageMatch == 0 {
			continue
		}
		relevant = append(relevant, scored{inv: inv.Clone(), stageMatch: stageMatch, overlap: overlap})
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].stageMatch != relevant[j].stageMatch {
			return relevant[i].stageMatch > relevant[j].stageMatch
		}
		return relevant[i].overlap > relevant[j].overlap
	})

	out := make([]investor.Investor, len(relevant))
	for i, s := range relevant {
		out[i] = s.inv
	}
	return out
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
