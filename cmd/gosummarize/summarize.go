package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/extract"
	"github.com/hyperifyio/gosummarize/internal/report"
	"github.com/hyperifyio/gosummarize/internal/score"
	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

var (
	summarizeKeywords int
	summarizeJSON     bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a local document or standard input",
	Long: `Summarizes a local file (.txt, .md, .html, .pdf or .docx) or, without a
file argument, text read from standard input. Nothing is stored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	addSummaryFlags(summarizeCmd)
	summarizeCmd.Flags().IntVarP(&summarizeKeywords, "keywords", "k", 0, "also list the N most frequent keywords")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	var art extract.Article
	if len(args) == 1 {
		var err error
		if art, err = extract.ForFile(args[0]); err != nil {
			return err
		}
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		art = extract.FromText(b)
	}

	st, err := score.ParseStrategy(cfg.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %v", summarize.ErrConfiguration, err)
	}
	sum, err := summarize.New(st)
	if err != nil {
		return err
	}
	logger := log.Logger
	sum.Log = &logger

	out, err := app.SummarizeWith(sum, cfg.SummaryRequest(art.Text), summarizeKeywords)
	if err != nil {
		return err
	}
	if summarizeJSON {
		return printJSON(cmd, struct {
			Title string `json:"title,omitempty"`
			app.TextSummary
		}{art.Title, out})
	}
	cmd.Println(report.Terminal(store.Record{
		Title:     art.Title,
		Author:    art.Author,
		Published: art.Published,
		Summary:   out.Summary,
		Stats:     out.Stats,
	}, reportWidth()))
	if len(out.Keywords) > 0 {
		cmd.Printf("Keywords: %s\n", strings.Join(out.Keywords, ", "))
	}
	return nil
}
