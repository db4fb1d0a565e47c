package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/scoring"
	"github.com/spigell/fundraiser/internal/writer"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Draft an outreach email for one catalog investor",
	Run: func(cmd *cobra.Command, _ []string) {
		email(cmd)
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	emailCmd.Flags().StringP("brief", "b", "brief.yaml", "startup brief in YAML or JSON")
	emailCmd.Flags().String("fund", "", "fund name of the investor in the seed catalog")
	emailCmd.Flags().String("name", "", "investor name, used when a fund has several partners")
	emailCmd.Flags().Bool("use-llm", true, "draft the email with the configured llm provider")

	emailCmd.MarkFlagRequired("fund")
}

func email(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	briefPath, _ := cmd.Flags().GetString("brief")
	brief, err := loadBrief(briefPath)
	if err != nil {
		logger.Fatal("loading the brief", zap.Error(err))
	}
	brief.Normalize()

	c := buildComponents(ctx, config, writer.NewBudget(1), logger)
	defer c.Close()

	fund, _ := cmd.Flags().GetString("fund")
	name, _ := cmd.Flags().GetString("name")

	catalog := &investor.Investors{Items: c.catalog}
	inv := catalog.FindByFund(fund, name)
	if inv == nil {
		logger.Fatal("investor not found in the seed catalog",
			zap.String("fund", fund),
			zap.String("name", name),
			zap.String("catalog", config.Catalog),
		)
	}

	useLLM, _ := cmd.Flags().GetBool("use-llm")
	score := scoring.ScoreOne(brief, *inv)

	fmt.Println(c.pipeline.DraftEmail(ctx, *inv, &score, brief, useLLM))
}
