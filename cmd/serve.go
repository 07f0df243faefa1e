package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/server"
)

var flagListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web shell",
	Long: `Start the web UI: upload a dataset, browse suggested analyses, run
built-in plots and statistics, and ask free-form questions when an LLM API
key is configured.

Example:
  analyst serve --listen :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListenAddr, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if flagListenAddr != "" {
		cfg.ListenAddr = flagListenAddr
	}

	var llm server.Asker
	if c := newLLMClient(); c != nil {
		llm = c
		logger.Info().Str("model", c.Model()).Msg("LLM enabled for custom prompts")
	} else {
		logger.Warn().Msg("no API key configured; only built-in analyses will work")
	}

	srv := server.New(cfg, logger, llm)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
