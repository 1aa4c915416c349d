package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/ai/gemini"
	"github.com/spigell/mock-interviewer/internal/interview"
	"github.com/spigell/mock-interviewer/internal/secrets"
	"github.com/spigell/mock-interviewer/internal/tracing"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// newInterviewer builds the Gemini adapters and the orchestrator on top of them.
func newInterviewer(ctx context.Context, config *Config, logger *zap.Logger) (*interview.Orchestrator, error) {
	if config == nil || config.AI == nil {
		return nil, errors.New("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	cfg := config.AI.Gemini
	if cfg == nil {
		return nil, errors.New("gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   geminiKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, geminiKeyEnv)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}
	generator.SetSettings(generationSettings(cfg))

	adapter := gemini.NewInterviewer(generator, logger.Named("gemini"), cfg.MaxLogLength)

	opts := []interview.Option{}
	if config.Seed != 0 {
		opts = append(opts, interview.WithSeed(config.Seed))
	}

	return interview.New(interview.Deps{
		Questions: adapter,
		Scorer:    adapter,
		Narrator:  adapter,
		Logger:    logger.Named("interview"),
	}, opts...)
}

// historyToken resolves the bearer token of the history routes. An empty
// result means they are served without authentication.
func historyToken(config *Config) (string, error) {
	if config == nil || (strings.TrimSpace(config.HistoryToken) == "" && strings.TrimSpace(config.HistoryTokenFile) == "") {
		return "", nil
	}
	return secrets.Load(secrets.Source{
		Name:  "history token",
		Value: config.HistoryToken,
		File:  config.HistoryTokenFile,
	})
}

// setupTracing installs a span-logging tracer provider as the global one when
// tracing is enabled. The returned function flushes and stops it.
func setupTracing(ctx context.Context, config *Config, logger *zap.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if config == nil || !config.Tracing.Enabled {
		return noop, nil
	}

	tp, err := tracing.NewProvider(ctx, logger.Named("trace"), config.Tracing)
	if err != nil {
		return noop, fmt.Errorf("building tracer provider: %w", err)
	}
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// generationSettings falls back to the defaults for unset values.
func generationSettings(cfg *GeminiConfig) gemini.Settings {
	settings := gemini.DefaultSettings
	if cfg.Temperature > 0 {
		settings.Temperature = cfg.Temperature
	}
	if cfg.TopP > 0 {
		settings.TopP = cfg.TopP
	}
	if cfg.TopK > 0 {
		settings.TopK = cfg.TopK
	}
	if cfg.MaxOutputTokens > 0 {
		settings.MaxOutputTokens = cfg.MaxOutputTokens
	}
	return settings
}
