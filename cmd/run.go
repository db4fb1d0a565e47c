package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/fundraiser/internal/collateral"
	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/pipeline"
	"github.com/spigell/fundraiser/internal/scoring"
	"github.com/spigell/fundraiser/internal/writer"
)

const (
	PromptDraftEmails         = "Draft emails for top matches"
	PromptExport              = "Export matches"
	PromptOnePager            = "Show one-pager"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append all matches to contacted file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Research and rank investors for a brief",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("brief", "b", "brief.yaml", "startup brief in YAML or JSON")
	runCmd.Flags().IntP("top-k", "k", pipeline.DefaultTopK, "how many ranked investors to keep")
	runCmd.Flags().StringSlice("exports", pipeline.DefaultExports, "exports to produce: csv, xlsx, pdf, notion")
	runCmd.Flags().Bool("allow-scrape", false, "fetch investor pages to attach recent highlights")
	runCmd.Flags().Bool("use-llm", true, "draft emails with the configured llm provider")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for actions, draft emails for the top matches and exit")
	runCmd.Flags().StringP("exclude-file", "e", "", "file with already contacted investors to exclude. Default is unset.")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the fundraiser", zap.String("version", resolveVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	briefPath, _ := cmd.Flags().GetString("brief")
	brief, err := loadBrief(briefPath)
	if err != nil {
		logger.Fatal("loading the brief", zap.Error(err))
	}

	check := brief
	check.Normalize()
	if err := check.Validate(); err != nil {
		logger.Fatal("invalid brief", zap.Error(err), zap.String("path", briefPath))
	}

	budget := writer.NewBudget(config.AI.EmailBudget)
	c := buildComponents(ctx, config, budget, logger)
	defer c.Close()

	topK, _ := cmd.Flags().GetInt("top-k")
	exports, _ := cmd.Flags().GetStringSlice("exports")
	allowScrape, _ := cmd.Flags().GetBool("allow-scrape")
	useLLM, _ := cmd.Flags().GetBool("use-llm")

	logger.Info("starting the research",
		zap.String("startup", brief.Name),
		zap.Strings("sectors", check.Sectors),
		zap.String("stage", check.Stage),
	)

	res := c.pipeline.Run(ctx, pipeline.Request{
		Brief:       brief,
		TopK:        topK,
		AllowScrape: allowScrape,
		Exports:     exports,
		Filters:     filterConfig(config),
	})

	if len(res.Matches) == 0 {
		logger.Info("exiting", zap.String("reason", "no investors matched the brief"))
		return
	}

	reportMatches(logger, res)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		drafted := c.pipeline.DraftTop(ctx, res.Brief, res.Matches, config.AI.EmailBudget, useLLM)
		logger.Info("drafted emails", zap.Int("count", drafted))
		if err := handleAction(ctx, PromptMatchesToFile, c, logger, res, useLLM); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	items := []string{PromptDraftEmails, PromptExport, PromptOnePager, PromptMatchesToFile}
	if viper.GetString("exclude-file") != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	prompt := promptui.Select{
		Label: "What next?",
		Items: append(items, PromptExit),
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, c, logger, res, useLLM); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, c *components, logger *zap.Logger, res pipeline.Result, useLLM bool) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptDraftEmails:
		return draftEmails(ctx, c, logger, res, useLLM)
	case PromptExport:
		return exportMatches(ctx, c, logger, res)
	case PromptOnePager:
		fmt.Println(res.OnePager)
		return nil
	case PromptMatchesToFile:
		filename, err := matchesToInvestors(res.Matches).DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, res)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func draftEmails(ctx context.Context, c *components, logger *zap.Logger, res pipeline.Result, useLLM bool) error {
	countPrompt := promptui.Prompt{
		Label:   "How many top matches",
		Default: strconv.Itoa(min(writer.DefaultBudget, len(res.Matches))),
		Validate: func(input string) error {
			n, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil || n <= 0 {
				return errors.New("enter a positive number")
			}
			return nil
		},
	}

	input, err := countPrompt.Run()
	if err != nil {
		return err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(input))

	drafted := c.pipeline.DraftTop(ctx, res.Brief, res.Matches, n, useLLM)
	for i := 0; i < drafted; i++ {
		m := res.Matches[i]
		fmt.Printf("\n#%d %s (%s), score %s\n%s\n", i+1, m.Investor.Name, m.Investor.Fund, collateral.FormatScore(m.Score.FitScore), m.EmailDraft)
	}

	logger.Info("drafted emails", zap.Int("count", drafted))
	return nil
}

func exportMatches(ctx context.Context, c *components, logger *zap.Logger, res pipeline.Result) error {
	kindPrompt := promptui.Select{
		Label: "Export as",
		Items: []string{collateral.KindCSV, collateral.KindXLSX, collateral.KindPDF, collateral.KindNotion, PromptBack},
	}

	_, kind, err := kindPrompt.Run()
	if err != nil {
		return err
	}
	if kind == PromptBack {
		return nil
	}

	exported := c.exporter.Export(ctx, []string{kind}, res.Brief, res.Matches)
	if location, ok := exported[kind]; ok {
		logger.Info("exported matches", zap.String("kind", kind), zap.String("location", location))
		return nil
	}

	logger.Warn("export produced nothing", zap.String("kind", kind))
	return nil
}

func appendToExcludeFile(logger *zap.Logger, res pipeline.Result) error {
	excludeFile := viper.GetString("exclude-file")

	excluded, err := investor.GetExcludedFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(matchesToInvestors(res.Matches).ToExcluded())

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to contacted file", zap.String("filename", excludeFile), zap.Int("total", len(excluded.Items)))
	return nil
}

func reportMatches(logger *zap.Logger, res pipeline.Result) {
	for i, m := range res.Matches {
		logger.Info("match",
			zap.Int("rank", i+1),
			zap.String("investor", m.Investor.Name),
			zap.String("fund", m.Investor.Fund),
			zap.String("fit_score", collateral.FormatScore(m.Score.FitScore)),
			zap.String("rationale", m.Score.Rationale),
		)
	}

	for kind, location := range res.Exports {
		logger.Info("exported matches", zap.String("kind", kind), zap.String("location", location))
	}

	logger.Info("current list of matches", zap.Int("count", len(res.Matches)), zap.String("run_id", res.RunID))
}

func matchesToInvestors(matches []scoring.Match) *investor.Investors {
	items := make([]investor.Investor, 0, len(matches))
	for _, m := range matches {
		items = append(items, m.Investor)
	}
	return &investor.Investors{Items: items}
}

// loadBrief reads a YAML or JSON brief. JSON parses as YAML.
func loadBrief(path string) (investor.Brief, error) {
	var brief investor.Brief

	data, err := os.ReadFile(path)
	if err != nil {
		return brief, fmt.Errorf("reading brief %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &brief); err != nil {
		return brief, fmt.Errorf("decoding brief %q: %w", path, err)
	}
	return brief, nil
}

// redacted returns a copy of the config safe for debug output.
func redacted(config *Config) Config {
	out := *config

	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}

	database := *config.Database
	database.DSN = mask(database.DSN)
	out.Database = &database

	search := *config.Search
	search.APIKey = mask(search.APIKey)
	out.Search = &search

	notion := *config.Notion
	notion.Token = mask(notion.Token)
	out.Notion = &notion

	aiCfg := *config.AI
	gemini := *config.AI.Gemini
	gemini.APIKey = mask(gemini.APIKey)
	aiCfg.Gemini = &gemini
	out.AI = &aiCfg

	return out
}
