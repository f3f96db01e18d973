package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborline/shipdocs/internal/accuracy"
)

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Extract and reconcile fields from a set of shipment documents",
	Long: `Reads the given documents (PDF, XLSX, CSV, plain text), runs the configured
LLM backend plus rule and spreadsheet extraction, and reconciles everything
into a single record with per-field provenance.

Examples:
  # Process a bill of lading with its packing list
  shipdocs process bol.pdf packing-list.xlsx

  # Score the result against ground truth and persist it
  shipdocs process bol.pdf --ground-truth truth.json --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.String("ground-truth", "", "JSON file with expected field values; scores the result")
	f.String("output", "", "write the document JSON to this file instead of stdout")
	f.Bool("save", false, "persist the processed document to the store")
	f.Bool("per-field", false, "query the LLM once per field instead of one combined call")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("process"); err != nil {
		return err
	}
	save, _ := cmd.Flags().GetBool("save")
	if save {
		if err := cfg.Validate("documents"); err != nil {
			return err
		}
	}

	perField, _ := cmd.Flags().GetBool("per-field")
	doc, err := processPaths(ctx, args, perField || cfg.LLM.PerField)
	if err != nil {
		return err
	}

	if groundTruth, _ := cmd.Flags().GetString("ground-truth"); groundTruth != "" {
		expected, err := loadFieldMap(groundTruth)
		if err != nil {
			return err
		}
		ac, err := scoringConfig()
		if err != nil {
			return err
		}
		result := ac.NewScorer().ScoreDocument(expected, doc.Record.Values())
		doc.Accuracy = &result
		fmt.Println(accuracy.Report(result))
	}

	if save {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveDocument(ctx, doc); err != nil {
			return err
		}
		fmt.Printf("Saved document %s\n", doc.ID)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		data, err := marshalIndent(doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return eris.Wrapf(err, "write %s", output)
		}
		return nil
	}
	return printJSON(doc)
}
