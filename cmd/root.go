package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/mock-interviewer/internal/history"
	"github.com/spigell/mock-interviewer/internal/tracing"
)

const (
	app       = "mock-interviewer"
	envPrefix = "MOCK_INTERVIEWER"
)

type Config struct {
	Listen string `mapstructure:"listen"`
	// Seed makes question order and thresholds reproducible when non-zero.
	Seed    uint64         `mapstructure:"seed"`
	AI      *AIConfig      `mapstructure:"ai"`
	History history.Config `mapstructure:"history"`
	// HistoryToken is the bearer token required on the evaluation history routes.
	HistoryToken     string         `mapstructure:"history-token"`
	HistoryTokenFile string         `mapstructure:"history-token-file"`
	Tracing          tracing.Config `mapstructure:"tracing"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api-key"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Model           string  `mapstructure:"model"`
	MaxRetries      int     `mapstructure:"max-retries"`
	MaxLogLength    int     `mapstructure:"max-log-length"`
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top-p"`
	TopK            float32 `mapstructure:"top-k"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "mock-interviewer runs adaptive mock interviews backed by Gemini",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is mock-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().Uint64("seed", 0, "seed for reproducible interviews (0 means random)")
	rootCmd.PersistentFlags().Bool("trace", false, "log interview spans")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("trace"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":5000")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("ai.gemini.temperature", 0.9)
	v.SetDefault("ai.gemini.top-p", 0.95)
	v.SetDefault("ai.gemini.top-k", 64)
	v.SetDefault("ai.gemini.max-output-tokens", 8192)
	v.SetDefault("history.backend", "memory")
	v.SetDefault("history.memory.max-users", 1024)
	v.SetDefault("history.memory.max-per-user", 0)
	v.SetDefault("history.redis.url", "")
	v.SetDefault("history.redis.prefix", "")
	v.SetDefault("history.redis.connect-timeout", 5*time.Second)
	v.SetDefault("history.postgres.dsn", "")
	v.SetDefault("history-token", "")
	v.SetDefault("history-token-file", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service", app)
}

func initConfig() {
	// A missing .env is fine, variables may come from the environment.
	_ = godotenv.Load()

	if err := loadConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// loadConfig wires environment variables and reads the config file. Only an
// explicitly requested file is mandatory.
func loadConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	err := v.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
