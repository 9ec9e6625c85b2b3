package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/store"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored articles as JSON or CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json or csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default articles_export.<format>)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	out := exportOut
	if out == "" {
		out = "articles_export." + format
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := store.Export(cmd.Context(), st, format, out); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	cmd.Printf("Exported articles to %s\n", out)
	return nil
}
