// Package collateral renders ranked matches into shareable artifacts: the
// one-pager, spreadsheets, a PDF and a Notion page.
package collateral

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/scoring"
)

const (
	onePagerTraction  = 5
	onePagerInvestors = 10
	defaultWhyNow     = "Raising intros to aligned investors."
	defaultTraction   = "Early traction with design partners."
)

// OnePagerMarkdown summarizes the brief and the strongest matches.
func OnePagerMarkdown(brief investor.Brief, matches []scoring.Match) string {
	lines := []string{
		fmt.Sprintf("# %s — One Pager", brief.Name),
		fmt.Sprintf("**One-liner:** %s", brief.OneLiner),
		fmt.Sprintf("**Sector:** %s · **Stage:** %s · **Geo:** %s", strings.Join(brief.Sectors, ", "), brief.Stage, geoOrNA(brief.Geo)),
		"",
		"## Why Now",
		"- " + whyNow(brief.Ask),
		"",
		"## Traction",
	}

	if len(brief.Traction) > 0 {
		for _, t := range head(brief.Traction, onePagerTraction) {
			lines = append(lines, "- "+t)
		}
	} else {
		lines = append(lines, "- "+defaultTraction)
	}

	lines = append(lines, "", "## Top Target Investors (Why)")
	for _, m := range headMatches(matches, onePagerInvestors) {
		lines = append(lines, fmt.Sprintf("- **%s** — %s (score %s)", investorLabel(m.Investor), m.Score.Rationale, FormatScore(m.Score.FitScore)))
	}

	return strings.Join(lines, "\n")
}

// FormatScore renders a score the way it appears in every export: shortest
// decimal form, always with a fractional part.
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func investorLabel(inv investor.Investor) string {
	return fmt.Sprintf("%s (%s)", inv.Name, inv.Fund)
}

func summaryLine(brief investor.Brief) string {
	return fmt.Sprintf("Sector: %s · Stage: %s · Geo: %s", strings.Join(brief.Sectors, ", "), brief.Stage, geoOrNA(brief.Geo))
}

func geoOrNA(geo string) string {
	if strings.TrimSpace(geo) == "" {
		return "N/A"
	}
	return geo
}

func whyNow(ask string) string {
	if strings.TrimSpace(ask) == "" {
		return defaultWhyNow
	}
	return ask
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func headMatches(matches []scoring.Match, n int) []scoring.Match {
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}
