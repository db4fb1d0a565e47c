// Package pipeline runs one fundraising request end to end: research,
// filtering, ranking, persistence, exports and the one-pager.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/collateral"
	"github.com/spigell/fundraiser/internal/filtering"
	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/scoring"
	"github.com/spigell/fundraiser/internal/writer"
)

const DefaultTopK = 25

// DefaultExports is used when a request does not name any export kinds.
var DefaultExports = []string{collateral.KindCSV}

type Researcher interface {
	Research(ctx context.Context, brief investor.Brief, allowScrape bool) []investor.Investor
}

type Exporter interface {
	Export(ctx context.Context, kinds []string, brief investor.Brief, matches []scoring.Match) map[string]string
}

type Store interface {
	SaveMatches(ctx context.Context, runID string, matches []scoring.Match) error
}

type EmailWriter interface {
	Write(ctx context.Context, inv investor.Investor, score scoring.Score, brief investor.Brief, useLLM bool) string
}

// Deps wires the collaborators. Every field except Researcher may be nil.
type Deps struct {
	Researcher Researcher
	Exporter   Exporter
	Store      Store
	Writer     EmailWriter
	Filters    func() []filtering.Filter
	Logger     *zap.Logger
}

// Request is a single generation request. A nil Exports slice means
// DefaultExports; an empty one disables exports.
type Request struct {
	Brief       investor.Brief
	TopK        int
	AllowScrape bool
	Exports     []string
	Filters     *filtering.Config
}

type Result struct {
	RunID    string            `json:"run_id"`
	Brief    investor.Brief    `json:"brief"`
	Matches  []scoring.Match   `json:"matches"`
	Exports  map[string]string `json:"exports"`
	OnePager string            `json:"one_pager"`
}

type Pipeline struct {
	researcher Researcher
	exporter   Exporter
	store      Store
	writer     EmailWriter
	filters    func() []filtering.Filter
	logger     *zap.Logger
}

func New(deps Deps) *Pipeline {
	filters := deps.Filters
	if filters == nil {
		filters = filtering.DefaultSteps
	}

	w := deps.Writer
	if w == nil {
		w = writer.New(nil, nil, deps.Logger)
	}

	return &Pipeline{
		researcher: deps.Researcher,
		exporter:   deps.Exporter,
		store:      deps.Store,
		writer:     w,
		filters:    filters,
		logger:     logger.OrNop(deps.Logger),
	}
}

// Run executes the request. Collaborator failures are logged and leave the
// matching part of the result empty; ranking always runs.
func (p *Pipeline) Run(ctx context.Context, req Request) Result {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID))

	brief := req.Brief
	brief.Normalize()

	result := Result{
		RunID:   runID,
		Brief:   brief,
		Matches: []scoring.Match{},
		Exports: map[string]string{},
	}

	var candidates []investor.Investor
	if p.researcher != nil {
		candidates = p.researcher.Research(ctx, brief, req.AllowScrape)
	}
	log.Info("candidates collected", zap.Int("count", len(candidates)))

	// Filters compact the pool in place, so they get their own copy.
	pool := &investor.Investors{Items: append([]investor.Investor(nil), candidates...)}
	filtered, err := filtering.Run(ctx, req.Filters, filtering.Deps{Logger: log}, p.filters(), pool)
	if err != nil {
		log.Warn("filtering failed, keeping the unfiltered pool", zap.Error(err))
		filtered = &investor.Investors{Items: candidates}
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	result.Matches = scoring.Top(scoring.Rank(brief, filtered.Items), topK)
	log.Info("ranked candidates", zap.Int("matches", len(result.Matches)), zap.Int("top_k", topK))

	if p.store != nil && len(result.Matches) > 0 {
		if err := p.store.SaveMatches(ctx, runID, result.Matches); err != nil {
			log.Warn("saving matches failed", zap.Error(err))
		}
	}

	kinds := req.Exports
	if kinds == nil {
		kinds = DefaultExports
	}
	if p.exporter != nil && len(kinds) > 0 {
		if exports := p.exporter.Export(ctx, kinds, brief, result.Matches); exports != nil {
			result.Exports = exports
		}
	}

	result.OnePager = collateral.OnePagerMarkdown(brief, result.Matches)
	return result
}

// DraftEmail drafts one outreach email. Without a score the stub rationale
// stands in for the computed one.
func (p *Pipeline) DraftEmail(ctx context.Context, inv investor.Investor, score *scoring.Score, brief investor.Brief, useLLM bool) string {
	s := scoring.Score{Rationale: writer.StubRationale}
	if score != nil {
		s = *score
	}
	return p.writer.Write(ctx, inv, s, brief, useLLM)
}

// DraftTop fills EmailDraft for the first n matches in place and returns how
// many were drafted.
func (p *Pipeline) DraftTop(ctx context.Context, brief investor.Brief, matches []scoring.Match, n int, useLLM bool) int {
	if n <= 0 || n > len(matches) {
		n = len(matches)
	}
	for i := 0; i < n; i++ {
		score := matches[i].Score
		matches[i].EmailDraft = p.DraftEmail(ctx, matches[i].Investor, &score, brief, useLLM)
	}
	return n
}
