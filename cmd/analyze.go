package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/analysis"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/dataset"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/prompt"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Print a schema report and suggested analyses for a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := dataset.Load(path, f)
	if err != nil {
		return err
	}
	fmt.Println(analysis.Report(ds))
	fmt.Println("[SUGGESTED ANALYSES]")
	for _, s := range prompt.Suggestions(ds.Profile()) {
		fmt.Println("-", s)
	}
	return nil
}
