package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/scoring"
)

func TestLoadBrief(t *testing.T) {
	dir := t.TempDir()

	yamlBrief := filepath.Join(dir, "brief.yaml")
	if err := os.WriteFile(yamlBrief, []byte(`name: Acme
one_liner: agents for ops
sector: [ai, infra]
stage: Pre Seed
round_size_usd: 1500000
traction:
  - 10 design partners
`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	jsonBrief := filepath.Join(dir, "brief.json")
	if err := os.WriteFile(jsonBrief, []byte(`{"name":"Acme","sector":["ai"],"stage":"seed","geo":"US"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	brief, err := loadBrief(yamlBrief)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if brief.Name != "Acme" || len(brief.Sectors) != 2 || brief.Stage != "Pre Seed" {
		t.Fatalf("unexpected yaml brief: %+v", brief)
	}
	if brief.RoundSizeUSD == nil || *brief.RoundSizeUSD != 1500000 {
		t.Fatalf("expected round size, got %v", brief.RoundSizeUSD)
	}

	brief, err = loadBrief(jsonBrief)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if brief.Geo != "US" || brief.Sectors[0] != "ai" {
		t.Fatalf("unexpected json brief: %+v", brief)
	}

	if _, err := loadBrief(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing brief")
	}
}

func TestGetConfigReadsEnvironment(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("ALLOWED_DOMAINS", "a16z.com,sequoiacap.com")
	t.Setenv("LLM_EMAIL_BUDGET", "3")
	t.Setenv("DATABASE_DSN", "sqlite://test.db")

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			t.Fatalf("bind: %v", err)
		}
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.AI.Gemini.APIKey != "g-key" {
		t.Fatalf("expected gemini key from env, got %q", config.AI.Gemini.APIKey)
	}
	if config.AI.EmailBudget != 3 {
		t.Fatalf("expected email budget 3, got %d", config.AI.EmailBudget)
	}
	if len(config.AllowedDomains) != 2 || config.AllowedDomains[1] != "sequoiacap.com" {
		t.Fatalf("unexpected allowed domains: %v", config.AllowedDomains)
	}
	if config.Database.DSN != "sqlite://test.db" {
		t.Fatalf("unexpected dsn: %q", config.Database.DSN)
	}
	if config.Search == nil || config.Notion == nil {
		t.Fatalf("expected optional sections to be initialized")
	}
}

func TestRedacted(t *testing.T) {
	config := &Config{
		Database: &DatabaseConfig{DSN: "postgres://u:p@db/x"},
		Search:   &SearchConfig{APIKey: "serp"},
		Notion:   &NotionConfig{Token: "", ParentPageID: "page"},
		AI:       &AIConfig{Gemini: &GeminiConfig{APIKey: "gemini", Model: "m"}},
	}

	out := redacted(config)

	if out.Database.DSN != "***" || out.Search.APIKey != "***" || out.AI.Gemini.APIKey != "***" {
		t.Fatalf("expected secrets to be masked: %+v", out)
	}
	if out.Notion.Token != "" || out.Notion.ParentPageID != "page" || out.AI.Gemini.Model != "m" {
		t.Fatalf("unexpected redaction: %+v", out)
	}
	if config.Search.APIKey != "serp" || config.AI.Gemini.APIKey != "gemini" {
		t.Fatalf("original config must not change")
	}
}

func TestMatchesToInvestors(t *testing.T) {
	matches := []scoring.Match{
		{Investor: investor.Investor{Name: "Jane", Fund: "Alpha"}},
		{Investor: investor.Investor{Name: "Bob", Fund: "Beta"}},
	}

	got := matchesToInvestors(matches)
	if got.Len() != 2 || got.Items[1].Fund != "Beta" {
		t.Fatalf("unexpected investors: %+v", got.Items)
	}

	excluded := got.ToExcluded()
	if len(excluded.Items) != 2 || excluded.Items[0].Key != investor.IdentityKey("Jane", "Alpha") {
		t.Fatalf("unexpected excluded list: %+v", excluded.Items)
	}
}
