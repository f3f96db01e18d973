package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborline/shipdocs/internal/accuracy"
	"github.com/harborline/shipdocs/internal/model"
)

var evalCmd = &cobra.Command{
	Use:   "eval <dir>",
	Short: "Score a directory of evaluation cases",
	Long: `Evaluates extraction quality over a corpus. The directory holds one pair of
files per case: <name>.expected.json with ground truth and <name>.actual.json
with the extraction result. Cases missing their counterpart are skipped with
a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().Bool("json", false, "emit the batch result as JSON")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate("eval"); err != nil {
		return err
	}

	expectedFiles, err := filepath.Glob(filepath.Join(args[0], "*.expected.json"))
	if err != nil {
		return eris.Wrapf(err, "eval: scan %s", args[0])
	}
	if len(expectedFiles) == 0 {
		return eris.Errorf("eval: no *.expected.json files in %s", args[0])
	}
	sort.Strings(expectedFiles)

	ac, err := scoringConfig()
	if err != nil {
		return err
	}
	scorer := ac.NewScorer()

	var results []model.DocumentAccuracy
	for _, expectedPath := range expectedFiles {
		actualPath := strings.TrimSuffix(expectedPath, ".expected.json") + ".actual.json"

		expected, err := loadFieldMap(expectedPath)
		if err != nil {
			return err
		}
		actual, err := loadFieldMap(actualPath)
		if err != nil {
			zap.L().Warn("skipping case without actual file",
				zap.String("case", filepath.Base(expectedPath)),
				zap.Error(err),
			)
			continue
		}

		results = append(results, scorer.ScoreDocument(expected, actual))
	}

	if len(results) == 0 {
		return eris.New("eval: no complete cases found")
	}
	batch := accuracy.ScoreBatch(results)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(batch)
	}
	fmt.Print(accuracy.BatchReport(batch))
	return nil
}
