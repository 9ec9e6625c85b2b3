package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/aggregate"
	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/report"
)

var (
	scrapeFile    string
	scrapeFormats []string
	scrapePDFDir  string
	scrapeJSON    bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Fetch, summarize and store articles",
	Long: `Fetches every URL, extracts the article text, summarizes it and saves the
result. Duplicate URLs are processed once. A URL that fails is reported and
skipped; the command fails only when no article could be processed.`,
	RunE: runScrape,
}

func init() {
	addSummaryFlags(scrapeCmd)
	f := scrapeCmd.Flags()
	f.StringVarP(&scrapeFile, "file", "f", "", "file with one URL per line")
	f.StringSliceVar(&scrapeFormats, "format", nil, "storage formats: sqlite, json, csv")
	f.StringVar(&scrapePDFDir, "pdf", "", "also write a PDF per article into this directory")
	f.BoolVar(&scrapeJSON, "json", false, "print stored records as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	urls := append([]string{}, args...)
	if scrapeFile != "" {
		listed, err := aggregate.ReadURLFile(scrapeFile)
		if err != nil {
			return err
		}
		urls = append(urls, listed...)
	}
	if len(urls) == 0 {
		return errors.New("no URLs given; pass them as arguments or with --file")
	}

	c := cfg
	if cmd.Flags().Changed("format") {
		c.StoreFormats = scrapeFormats
	}
	if scrapePDFDir != "" {
		c.PDFDir = scrapePDFDir
	}
	a, err := app.New(cmd.Context(), c)
	if err != nil {
		return err
	}
	defer a.Close()

	batch, runErr := a.ProcessAll(cmd.Context(), urls)
	if scrapeJSON {
		if err := printJSON(cmd, batch.Records); err != nil {
			return err
		}
	} else {
		for _, rec := range batch.Records {
			cmd.Println(report.Terminal(rec, reportWidth()))
		}
	}
	for _, f := range batch.Failed {
		cmd.PrintErrf("failed: %s: %v\n", f.URL, f.Err)
	}
	cmd.PrintErrf("processed %d of %d articles\n", len(batch.Records), len(batch.Records)+len(batch.Failed))
	if runErr != nil {
		return fmt.Errorf("scrape: %w", runErr)
	}
	return nil
}
