// Package enrichment fetches investor pages and distills recent activity
// from them.
package enrichment

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
)

const (
	maxInvestors = 20
	maxURLs      = 3
	fetchWorkers = 4
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

type Enricher struct {
	fetcher Fetcher
	workers int
	logger  *zap.Logger
}

func NewEnricher(fetcher Fetcher, log *zap.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		workers: fetchWorkers,
		logger:  logger.OrNop(log),
	}
}

// Enrich returns a copy of investors where the leading records carry
// highlights from their pages as recent news. Records whose pages yield no
// highlight keep their existing news.
func (e *Enricher) Enrich(ctx context.Context, investors []investor.Investor) []investor.Investor {
	out := make([]investor.Investor, len(investors))
	for i, inv := range investors {
		out[i] = inv.Clone()
	}
	if e == nil || e.fetcher == nil {
		return out
	}

	limit := len(out)
	if limit > maxInvestors {
		limit = maxInvestors
	}

	texts := make([][]string, limit)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < limit; i++ {
		urls := out[i].URLs
		if len(urls) > maxURLs {
			urls = urls[:maxURLs]
		}
		texts[i] = make([]string, len(urls))
		for j, u := range urls {
			g.Go(func() error {
				texts[i][j] = e.fetcher.Fetch(gctx, u)
				return nil
			})
		}
	}
	_ = g.Wait()

	enriched := 0
	for i := 0; i < limit; i++ {
		blobs := make([]string, 0, len(texts[i]))
		for _, txt := range texts[i] {
			if txt != "" {
				blobs = append(blobs, txt)
			}
		}
		if len(blobs) == 0 {
			continue
		}

		highlights := RecentHighlights(strings.Join(blobs, " "), DefaultHighlights)
		if len(highlights) == 0 {
			continue
		}
		out[i].RecentNews = highlights
		enriched++

		logger.WithFields(e.logger, logger.InvestorFields(out[i].Name, out[i].Fund, out[i].Key())...).
			Debug("attached recent highlights", zap.Int("highlights", len(highlights)))
	}

	e.logger.Info("enrichment finished", zap.Int("considered", limit), zap.Int("enriched", enriched))

	return out
}
