package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/fundraiser/internal/ai"
	"github.com/spigell/fundraiser/internal/investor"
)

type stubGenerator struct {
	system string
	prompt string
	output string
	err    error
}

func (s *stubGenerator) GenerateContent(ctx context.Context, system, prompt string) (string, error) {
	s.system = system
	s.prompt = prompt
	return s.output, s.err
}

func TestDrafterBuildsPrompt(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	gen := &stubGenerator{output: "```text\nSubject: Intro\n\nHi Jane\n```"}
	d := NewDrafter(gen, zap.New(core), 0)

	got, err := d.Draft(context.Background(), ai.DraftRequest{
		InvestorName: "Jane Doe",
		Fund:         "Acme Ventures",
		Rationale:    "stage aligns",
		Brief:        investor.Brief{Name: "Orbit", OneLiner: "infra for agents", Sectors: []string{"ai"}, Stage: "seed"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Subject: Intro\n\nHi Jane" {
		t.Fatalf("unexpected draft %q", got)
	}

	for _, want := range []string{"Jane Doe", "Acme Ventures", "stage aligns", `"one_liner": "infra for agents"`} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("prompt is missing %q:\n%s", want, gen.prompt)
		}
	}
	if strings.Contains(gen.prompt, "{{") {
		t.Fatalf("prompt has unreplaced placeholders:\n%s", gen.prompt)
	}
	if gen.system == "" {
		t.Fatalf("expected system instruction")
	}

	entries := observed.FilterMessage("gemini draft request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["fund"] != "Acme Ventures" {
		t.Fatalf("expected fund field on log entry, got %v", entries[0].ContextMap())
	}
}

func TestDrafterPropagatesErrors(t *testing.T) {
	d := NewDrafter(&stubGenerator{err: errors.New("boom")}, nil, 10)
	if _, err := d.Draft(context.Background(), ai.DraftRequest{Fund: "Acme"}); err == nil {
		t.Fatalf("expected error")
	}

	var nilDrafter *Drafter
	if _, err := nilDrafter.Draft(context.Background(), ai.DraftRequest{}); err == nil {
		t.Fatalf("expected error for nil drafter")
	}
}
