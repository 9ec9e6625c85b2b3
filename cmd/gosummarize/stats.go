package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		totals, err := st.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		cmd.Printf("Total articles:        %d\n", totals.Articles)
		cmd.Printf("Articles with summary: %d\n", totals.WithSummary)
		cmd.Printf("Unique authors:        %d\n", totals.UniqueAuthors)
		if !totals.LatestSavedAt.IsZero() {
			cmd.Printf("Last saved:            %s\n", totals.LatestSavedAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
