package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/runner"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/server"
)

var flagChartOut string

var askCmd = &cobra.Command{
	Use:   "ask <file> <question>",
	Short: "Run one analysis question against a dataset from the terminal",
	Long: `Run the full query pipeline headless: load the dataset, map the question
to a built-in script or ask the LLM for one, execute it, and print the
result. Chart output is written to the path given by --chart-out.

Example:
  analyst ask sales.csv "Show summary statistics (count, mean, std, min, 25%, 50%, 75%, max) for numeric columns."`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&flagChartOut, "chart-out", "chart.png", "where to write a chart result")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	path, question := args[0], args[1]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := dataset.Load(path, f)
	if err != nil {
		return err
	}

	pipe := &server.Pipeline{
		Runner: runner.New(time.Duration(cfg.ExecTimeoutSec) * time.Second),
	}
	if c := newLLMClient(); c != nil {
		pipe.LLM = c
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	res, err := pipe.Answer(ctx, ds, question)
	if err != nil {
		return err
	}

	switch res.Kind {
	case runner.KindTable:
		if err := res.Table.WriteCSV(os.Stdout); err != nil {
			return err
		}
	case runner.KindChart:
		if err := os.WriteFile(flagChartOut, res.PNG, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Println("chart written to", flagChartOut)
	default:
		fmt.Println(res.Text)
	}
	return nil
}
