package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/ai"
	cfgpkg "github.com/mrityunjay5004/personal-ai-data-analyst/internal/config"
)

var (
	cfgFile string
	debug   bool
	// Flags overriding config values when set
	flagModel          string
	flagHTTPTimeoutSec int

	cfg    *cfgpkg.Global
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Personal AI data analyst: upload tabular data, explore it, ask questions",
	Long: `Analyst loads a tabular dataset (CSV, XLSX, JSON), computes previews and
summary statistics, renders standard plots, and answers free-form questions
by asking an LLM to generate short analysis scripts that run in a sandbox
against the loaded data.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(initialize)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.analyst/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "LLM model name (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "LLM HTTP timeout in seconds (overrides config)")
}

func initialize() {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config")
		c = &cfgpkg.Global{}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("model") && flagModel != "" {
		cfg.Model = flagModel
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
}

// newLLMClient builds the Groq client from config, or returns nil when no
// API key is configured.
func newLLMClient() *ai.Client {
	if cfg.APIKey == "" {
		return nil
	}
	return ai.NewClient(cfg.APIKey, ai.Options{
		Model:       cfg.Model,
		HTTPTimeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		RetryMax:    cfg.RetryMaxAttempts,
		BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond,
		BaseURL:     cfg.BaseURL,
	})
}
