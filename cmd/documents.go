package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harborline/shipdocs/internal/store"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Inspect and manage stored documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("documents"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		docs, err := st.ListDocuments(ctx, store.DocumentFilter{Limit: limit, Offset: offset})
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			fmt.Println("No documents.")
			return nil
		}
		fmt.Printf("%-36s %-20s %-9s %s\n", "ID", "Created", "Accuracy", "Files")
		for _, d := range docs {
			acc := "-"
			if d.Accuracy != nil {
				acc = fmt.Sprintf("%.1f%%", d.Accuracy.Overall*100)
			}
			fmt.Printf("%-36s %-20s %-9s %v\n",
				d.ID, d.CreatedAt.Format("2006-01-02 15:04:05"), acc, d.Filenames)
		}
		return nil
	},
}

var documentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one stored document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("documents"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		doc, err := st.GetDocument(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(doc)
	},
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("documents"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteDocument(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted document %s\n", args[0])
		return nil
	},
}

func init() {
	documentsListCmd.Flags().Int("limit", 50, "maximum documents to list")
	documentsListCmd.Flags().Int("offset", 0, "documents to skip")

	documentsCmd.AddCommand(documentsListCmd, documentsGetCmd, documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}
