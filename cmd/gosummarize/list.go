package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/store"
)

var (
	listURL    string
	listTitle  string
	listAuthor string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored articles",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listURL, "url", "", "only URLs containing this text")
	f.StringVar(&listTitle, "title", "", "only titles containing this text")
	f.StringVar(&listAuthor, "author", "", "only authors containing this text")
	f.BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.List(cmd.Context(), store.Filter{URL: listURL, Title: listTitle, Author: listAuthor})
	if err != nil {
		return fmt.Errorf("list articles: %w", err)
	}
	if listJSON {
		if records == nil {
			records = []store.Record{}
		}
		return printJSON(cmd, records)
	}
	if len(records) == 0 {
		cmd.Println("No articles found.")
		return nil
	}
	for _, r := range records {
		cmd.Printf("%s  %s  %s\n", r.SavedAt.Format("2006-01-02 15:04"), shortID(r.ID), r.Title)
		cmd.Printf("    %s\n", r.URL)
	}
	cmd.Printf("\n%d article(s)\n", len(records))
	return nil
}

func openStore() (store.Store, error) {
	return store.Open(cfg.DataDir, cfg.StoreFormats)
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
