// Package writer produces outreach drafts for ranked investors. It asks an
// optional drafting provider first and always falls back to a fixed template.
package writer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/ai"
	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/scoring"
)

const (
	DefaultBudget = 5

	// StubRationale is used when an email is requested without a computed score.
	StubRationale = "Context fit based on your brief."
	// GenericFallback is returned when even the template cannot be produced.
	GenericFallback = "Hi — quick intro; we're building something relevant to your thesis. Could we grab 15 minutes next week?"

	defaultScoreRationale = "Thesis alignment."
	defaultTraction       = "early traction with design partners"
	defaultRound          = "a seed round"
)

// Budget caps the number of provider drafts in one batch. A nil Budget is unlimited.
type Budget struct {
	mu        sync.Mutex
	remaining int
}

func NewBudget(n int) *Budget {
	if n < 0 {
		n = 0
	}
	return &Budget{remaining: n}
}

// Take consumes one draft from the budget and reports whether it was available.
func (b *Budget) Take() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

func (b *Budget) Remaining() int {
	if b == nil {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

type Writer struct {
	drafter ai.Drafter
	budget  *Budget
	logger  *zap.Logger
}

// New returns a Writer. drafter and budget may be nil.
func New(drafter ai.Drafter, budget *Budget, log *zap.Logger) *Writer {
	return &Writer{
		drafter: drafter,
		budget:  budget,
		logger:  logger.OrNop(log),
	}
}

// Write drafts an email for inv. It never fails: provider errors, empty
// provider output and an exhausted budget all produce the template email.
func (w *Writer) Write(ctx context.Context, inv investor.Investor, score scoring.Score, brief investor.Brief, useLLM bool) string {
	name := strings.TrimSpace(inv.Name)
	if name == "" {
		name = "Investor"
	}
	fund := strings.TrimSpace(inv.Fund)
	if fund == "" {
		fund = "Fund"
	}
	rationale := Rationale(inv, score)

	if !useLLM || w == nil || w.drafter == nil {
		return FallbackEmail(name, fund, rationale, brief)
	}

	log := logger.WithFields(w.logger, logger.InvestorFields(name, fund, inv.Key())...)

	if !w.budget.Take() {
		log.Debug("drafting budget exhausted, using template")
		return FallbackEmail(name, fund, rationale, brief)
	}

	text, err := w.drafter.Draft(ctx, ai.DraftRequest{
		InvestorName: name,
		Fund:         fund,
		Rationale:    rationale,
		Brief:        brief,
	})
	if err != nil {
		log.Warn("drafting failed, using template", zap.Error(err))
		return FallbackEmail(name, fund, rationale, brief)
	}

	if text = strings.TrimSpace(text); text == "" {
		log.Warn("drafting returned empty text, using template")
		return FallbackEmail(name, fund, rationale, brief)
	}

	return text
}

// Rationale explains why the investor was picked, in the form used by the
// email body. The trailing space is part of the format.
func Rationale(inv investor.Investor, score scoring.Score) string {
	why := strings.TrimSpace(score.Rationale)
	if why == "" {
		why = defaultScoreRationale
	}
	return fmt.Sprintf("%s invests at %s in %s. %s ",
		inv.Fund,
		strings.Join(inv.Stages, ", "),
		strings.Join(inv.Sectors, ", "),
		why,
	)
}

// FallbackEmail renders the deterministic outreach template.
func FallbackEmail(investorName, fund, rationale string, brief investor.Brief) string {
	traction := brief.Traction
	if len(traction) > 2 {
		traction = traction[:2]
	}
	quickHits := strings.Join(traction, "; ")
	if quickHits == "" {
		quickHits = defaultTraction
	}

	round := defaultRound
	if brief.RoundSizeUSD != nil {
		round = FormatUSD(*brief.RoundSizeUSD)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: Intro — %s × %s\n\n", brief.Name, fund)
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName(investorName))
	fmt.Fprintf(&b, "I'm building %s — %s.\n", brief.Name, brief.OneLiner)
	fmt.Fprintf(&b, "Why you: %s\n\n", rationale)
	fmt.Fprintf(&b, "Quick hits: %s.\n", quickHits)
	fmt.Fprintf(&b, "We're raising %s.\n", round)
	b.WriteString("Open to a 15-min intro next week?\n\n")
	fmt.Fprintf(&b, "— %s team", brief.Name)
	return b.String()
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// FormatUSD renders whole dollars with thousands separators, e.g. $1,500,000.
func FormatUSD(v float64) string {
	if v < 0 {
		return "-" + FormatUSD(-v)
	}
	digits := strconv.FormatFloat(v, 'f', 0, 64)
	var out strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	return "$" + out.String()
}
