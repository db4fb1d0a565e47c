package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/ai"
	"github.com/spigell/fundraiser/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	systemInstruction   = "You write short founder-to-investor outreach emails. Plain text only, no markdown."
)

// Drafter writes outreach emails with Gemini.
type Drafter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Drafter = (*Drafter)(nil)

func NewDrafter(generator contentGenerator, log *zap.Logger, maxLogLength int) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Drafter{
		generator: generator,
		logger:    logger.OrNop(log),
		maxLogLen: maxLogLength,
	}
}

func (d *Drafter) Draft(ctx context.Context, req ai.DraftRequest) (string, error) {
	if d == nil || d.generator == nil {
		return "", fmt.Errorf("gemini drafter is not initialized")
	}

	briefJSON, err := json.MarshalIndent(req.Brief, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal brief payload: %w", err)
	}

	prompt := buildPrompt(req.InvestorName, req.Fund, req.Rationale, string(briefJSON))
	log := logger.WithFields(d.logger, logger.InvestorFields(req.InvestorName, req.Fund, "")...)

	log.Debug("gemini draft request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, d.maxLogLen)),
	)

	raw, err := d.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", err
	}

	log.Debug("gemini draft response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, d.maxLogLen)),
	)

	return cleanDraft(raw), nil
}

func buildPrompt(name, fund, rationale, briefJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Write an intro email to {{INVESTOR_NAME}} at {{FUND}}.\nBrief:\n{{BRIEF_JSON}}\nRationale: {{RATIONALE}}"
	}
	return strings.NewReplacer(
		"{{INVESTOR_NAME}}", name,
		"{{FUND}}", fund,
		"{{RATIONALE}}", strings.TrimSpace(rationale),
		"{{BRIEF_JSON}}", briefJSON,
	).Replace(template)
}

// cleanDraft strips a surrounding code fence some models add despite the instruction.
func cleanDraft(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
