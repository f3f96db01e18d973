package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborline/shipdocs/internal/accuracy"
)

var scoreCmd = &cobra.Command{
	Use:   "score <expected.json> <actual.json>",
	Short: "Score an extraction result against ground truth",
	Long: `Compares two field -> value JSON files and prints a per-field accuracy
report. The actual file may be a plain map or a document produced by the
process command.`,
	Args: cobra.ExactArgs(2),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Bool("json", false, "emit the accuracy result as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	expected, err := loadFieldMap(args[0])
	if err != nil {
		return err
	}
	actual, err := loadFieldMap(args[1])
	if err != nil {
		return err
	}

	ac, err := scoringConfig()
	if err != nil {
		return err
	}
	result := ac.NewScorer().ScoreDocument(expected, actual)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(result)
	}
	fmt.Print(accuracy.Report(result))
	return nil
}
