package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/httpapi"
	"github.com/spigell/fundraiser/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matcher over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", httpapi.DefaultAddr, "address to listen on")

	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the fundraiser api", zap.String("version", resolveVersion()))

	// Emails are drafted one at a time on demand, so the server does not cap them.
	c := buildComponents(ctx, config, nil, logger)
	defer c.Close()

	server := httpapi.NewServer(viper.GetString("addr"), c.pipeline, viper.GetBool("debug"), logger)
	if err := server.Run(ctx); err != nil {
		logger.Error("http server stopped", zap.Error(err))
	}
}
