package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/fundraiser/internal/writer"
)

const (
	app = "fundraiser"
)

type Config struct {
	Catalog        string          `mapstructure:"catalog"`
	ExportsDir     string          `mapstructure:"exports-dir"`
	ExcludeFile    string          `mapstructure:"exclude-file"`
	ExcludeFunds   []string        `mapstructure:"exclude-funds"`
	RequireURLs    bool            `mapstructure:"require-urls"`
	AllowedDomains []string        `mapstructure:"allowed-domains"`
	UserAgent      string          `mapstructure:"user-agent"`
	Database       *DatabaseConfig `mapstructure:"database"`
	Search         *SearchConfig   `mapstructure:"search"`
	Notion         *NotionConfig   `mapstructure:"notion"`
	AI             *AIConfig       `mapstructure:"ai"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SearchConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type NotionConfig struct {
	Token        string `mapstructure:"token"`
	TokenFile    string `mapstructure:"token-file"`
	ParentPageID string `mapstructure:"parent-page-id"`
}

type AIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Provider    string        `mapstructure:"provider"`
	EmailBudget int           `mapstructure:"email-budget"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fundraiser finds, ranks and pitches investors that fit a startup brief",
	}
)

// envBindings maps config keys to the environment variables that may set them.
var envBindings = map[string]string{
	"ai.gemini.api-key":     "GOOGLE_API_KEY",
	"search.api-key":        "SERPAPI_API_KEY",
	"notion.token":          "NOTION_API_KEY",
	"notion.parent-page-id": "NOTION_PARENT_PAGE_ID",
	"allowed-domains":       "ALLOWED_DOMAINS",
	"ai.email-budget":       "LLM_EMAIL_BUDGET",
	"database.dsn":          "DATABASE_DSN",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional, real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("catalog", "data/seed_investors.json")
	viper.SetDefault("exports-dir", "exports")
	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.email-budget", writer.DefaultBudget)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fundraiser.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Everything can come from the environment, so only an explicit or broken config is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Database == nil {
		config.Database = &DatabaseConfig{}
	}
	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Notion == nil {
		config.Notion = &NotionConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
