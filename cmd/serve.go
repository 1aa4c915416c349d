package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/api"
	"github.com/spigell/mock-interviewer/internal/history"
	"github.com/spigell/mock-interviewer/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :5000)")
	serveCmd.Flags().String("history-backend", "", "evaluation history backend: memory, redis or postgres")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("history.backend", serveCmd.Flags().Lookup("history-backend"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer func() { _ = logger.Sync() }()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the mock-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	shutdownTracing, err := setupTracing(ctx, config, logger)
	if err != nil {
		logger.Fatal("setting up tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	interviewer, err := newInterviewer(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the interviewer", zap.Error(err))
	}

	store, err := history.Open(ctx, config.History)
	if err != nil {
		logger.Fatal("opening evaluation history", zap.Error(err), zap.String("backend", config.History.Backend))
	}
	defer func() { _ = store.Close() }()

	token, err := historyToken(config)
	if err != nil {
		logger.Fatal("loading the history token", zap.Error(err))
	}
	if token == "" {
		logger.Warn("evaluation history routes are not authenticated, set history-token to protect them")
	}

	handler := api.NewHandler(interviewer, store, logger.Named("api"))
	handler.RequireHistoryToken(token)
	server := api.NewServer(config.Listen, handler.Routes(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("serving api", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutting down api server", zap.Error(err))
		}
	}
}

// redacted hides secrets before the config is logged.
func redacted(config *Config) *Config {
	if config == nil {
		return nil
	}
	clone := *config
	if config.AI != nil && config.AI.Gemini != nil {
		ai := *config.AI
		gem := *config.AI.Gemini
		if gem.APIKey != "" {
			gem.APIKey = "***"
		}
		ai.Gemini = &gem
		clone.AI = &ai
	}
	if strings.Contains(clone.History.Redis.URL, "@") {
		clone.History.Redis.URL = "***"
	}
	if clone.HistoryToken != "" {
		clone.HistoryToken = "***"
	}
	if clone.History.Postgres.DSN != "" {
		clone.History.Postgres.DSN = "***"
	}
	return &clone
}
