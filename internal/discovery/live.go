package discovery

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
)

// MaxLiveResults caps the number of candidates one live discovery returns.
const MaxLiveResults = 80

type Searcher interface {
	Search(ctx context.Context, query string) ([]OrganicResult, error)
}

// Live turns web search results into investor candidates.
type Live struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewLive returns a live discoverer. A nil searcher disables live discovery.
func NewLive(searcher Searcher, log *zap.Logger) *Live {
	return &Live{searcher: searcher, logger: logger.OrNop(log)}
}

// Discover runs every query for the signal and collects fund candidates.
// Failed queries are skipped. Candidates sharing an identity keep the
// position of the first sighting and the content of the last one.
func (l *Live) Discover(ctx context.Context, sectors []string, stage, geo string) []investor.Investor {
	if l == nil || l.searcher == nil {
		return []investor.Investor{}
	}

	queries := QueryStrings(sectors, stage, geo)
	if len(queries) == 0 {
		return []investor.Investor{}
	}

	index := make(map[string]int)
	results := make([]investor.Investor, 0)

	for _, query := range queries {
		if ctx.Err() != nil {
			break
		}

		hits, err := l.searcher.Search(ctx, query)
		if err != nil {
			l.logger.Warn("live search failed, skipping query", zap.String("query", query), zap.Error(err))
			continue
		}

		for _, hit := range hits {
			for _, fund := range ParseFunds(hit.Title, hit.Snippet, hit.Link) {
				candidate := investor.Investor{Fund: fund}
				if hit.Link != "" {
					candidate.URLs = []string{hit.Link}
				}
				inv := investor.ApplyDefaults(candidate, sectors, stage)

				if idx, ok := index[inv.UniqueKey]; ok {
					results[idx] = inv
					continue
				}
				index[inv.UniqueKey] = len(results)
				results = append(results, inv)
			}
		}
	}

	if len(results) > MaxLiveResults {
		results = results[:MaxLiveResults]
	}

	l.logger.Info("live discovery finished", zap.Int("queries", len(queries)), zap.Int("candidates", len(results)))

	return results
}
