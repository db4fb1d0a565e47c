package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/ai"
	"github.com/spigell/fundraiser/internal/ai/gemini"
	"github.com/spigell/fundraiser/internal/collateral"
	"github.com/spigell/fundraiser/internal/discovery"
	"github.com/spigell/fundraiser/internal/enrichment"
	"github.com/spigell/fundraiser/internal/filtering"
	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/pipeline"
	"github.com/spigell/fundraiser/internal/secrets"
	"github.com/spigell/fundraiser/internal/store"
	"github.com/spigell/fundraiser/internal/writer"
)

// components holds everything a command needs once the config is resolved.
type components struct {
	pipeline *pipeline.Pipeline
	exporter *collateral.Exporter
	catalog  []investor.Investor
	store    *store.Store
}

func (c *components) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

func filterConfig(config *Config) *filtering.Config {
	return &filtering.Config{
		ExcludeFile:  config.ExcludeFile,
		ExcludeFunds: config.ExcludeFunds,
		RequireURLs:  config.RequireURLs,
	}
}

// buildComponents wires the pipeline. Missing optional services (search,
// notion, database, drafting) are logged and left out.
func buildComponents(ctx context.Context, config *Config, budget *writer.Budget, log *zap.Logger) *components {
	c := &components{}

	catalog, err := investor.LoadCatalog(config.Catalog)
	if err != nil {
		log.Warn("seed catalog is not available", zap.Error(err))
	}
	c.catalog = catalog
	log.Info("loaded seed catalog", zap.String("path", config.Catalog), zap.Int("count", len(catalog)))

	researcher := discovery.NewResearcher(
		newLive(config, log),
		catalog,
		enrichment.NewEnricher(enrichment.NewHTTPFetcher(config.AllowedDomains, log), log),
		log,
	)

	c.exporter = collateral.NewExporter(config.ExportsDir, collateral.NewPDFRenderer(), newPublisher(config, log), log)

	deps := pipeline.Deps{
		Researcher: researcher,
		Exporter:   c.exporter,
		Writer:     writer.New(newDrafter(ctx, config.AI, log), budget, log),
		Logger:     log,
	}

	if dsn := strings.TrimSpace(config.Database.DSN); dsn != "" {
		st, err := openStore(ctx, dsn)
		if err != nil {
			log.Warn("persistence disabled", zap.Error(err))
		} else {
			c.store = st
			deps.Store = st
		}
	}

	c.pipeline = pipeline.New(deps)
	return c
}

func openStore(ctx context.Context, dsn string) (*store.Store, error) {
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newLive(config *Config, log *zap.Logger) *discovery.Live {
	key, err := secrets.Optional(secrets.Source{
		Name:  "serpapi key",
		Value: config.Search.APIKey,
		File:  config.Search.APIKeyFile,
		Env:   "SERPAPI_API_KEY",
	})
	if err != nil {
		log.Warn("live discovery disabled", zap.Error(err))
		return nil
	}
	if key == "" {
		log.Info("live discovery disabled", zap.String("hint", "set SERPAPI_API_KEY or search.api-key"))
		return nil
	}

	client := discovery.NewSerpClient(key, log)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	return discovery.NewLive(client, log)
}

func newPublisher(config *Config, log *zap.Logger) collateral.Publisher {
	token, err := secrets.Optional(secrets.Source{
		Name:  "notion token",
		Value: config.Notion.Token,
		File:  config.Notion.TokenFile,
		Env:   "NOTION_API_KEY",
	})
	if err != nil {
		log.Warn("notion export disabled", zap.Error(err))
		return nil
	}

	client := collateral.NewNotionClient(token, strings.TrimSpace(config.Notion.ParentPageID), log)
	if !client.Configured() {
		return nil
	}
	return client
}

// newDrafter returns nil when drafting is disabled or not configured, which
// makes the writer use its template.
func newDrafter(ctx context.Context, config *AIConfig, log *zap.Logger) ai.Drafter {
	if config == nil || !config.Enabled {
		return nil
	}

	drafter, err := newGeminiDrafter(ctx, config, log)
	if err != nil {
		if errors.Is(err, secrets.ErrNotConfigured) {
			log.Info("llm drafting disabled, using the email template", zap.Error(err))
		} else {
			log.Warn("llm drafting disabled, using the email template", zap.Error(err))
		}
		return nil
	}
	return drafter
}

func newGeminiDrafter(ctx context.Context, config *AIConfig, log *zap.Logger) (ai.Drafter, error) {
	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   "GOOGLE_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GOOGLE_API_KEY or ai.gemini.api-key-file)", err)
	}

	genLogger := logger.WithFields(log, logger.ProviderFields("gemini", config.Gemini.Model)...).
		With(zap.Int("ai_retry_attempts", config.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewDrafter(generator, logger.WithFields(log, logger.ProviderFields("gemini", generator.Model())...), config.Gemini.MaxLogLength), nil
}
