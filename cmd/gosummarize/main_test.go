package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/summarize"
)

const sampleText = "Bees pollinate many of the crops that people eat every day. " +
	"A single colony can contain tens of thousands of worker bees. " +
	"Worker bees collect nectar and pollen from flowers near the hive. " +
	"The queen bee lays eggs throughout the warm months of the year. " +
	"Beekeepers harvest honey while leaving enough for the colony."

// resetFlags restores every flag to its default so commands run
// independently of earlier tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			var vals []string
			if def := strings.Trim(f.DefValue, "[]"); def != "" {
				vals = strings.Split(def, ",")
			}
			_ = sv.Replace(vals)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	original := app.BuildVersion
	app.BuildVersion = "test-version-1.0.0"
	defer func() { app.BuildVersion = original }()

	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gosummarize version test-version-1.0.0")
}

func TestSummarizeCmd_StdinJSON(t *testing.T) {
	out, _, err := run(t, sampleText, "summarize", "--data-dir", t.TempDir(), "--keywords", "2", "--json")
	require.NoError(t, err)

	var got struct {
		Summary       string   `json:"summary"`
		SentenceCount int      `json:"sentence_count"`
		Keywords      []string `json:"keywords"`
		Stats         struct {
			OriginalLength int `json:"original_length"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, 3, got.SentenceCount)
	assert.Len(t, got.Keywords, 2)
	assert.Contains(t, got.Keywords, "bees")
	assert.Equal(t, 54, got.Stats.OriginalLength)
}

func TestSummarizeCmd_MarkdownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bees.md")
	require.NoError(t, os.WriteFile(path, []byte("# Honey Bees\n\n"+sampleText+"\n"), 0o644))

	out, _, err := run(t, "", "summarize", path, "--min-sentences", "1", "--ratio", "0.2", "-k", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Honey Bees")
	assert.Contains(t, out, "Keywords: bees")
}

func TestSummarizeCmd_InvalidSettings(t *testing.T) {
	_, _, err := run(t, sampleText, "summarize", "--ratio", "2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, summarize.ErrConfiguration))
	assert.Equal(t, 2, exitCode(err))

	_, _, err = run(t, sampleText, "summarize", "--strategy", "magic")
	assert.Equal(t, 2, exitCode(err))
}

func TestScrapeListStatsExport(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bees" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><meta name="author" content="Ada Hive"></head><body><article><h1>All About Bees</h1><p>` + sampleText + `</p></article></body></html>`))
	}))
	defer site.Close()

	tmp := t.TempDir()
	data := filepath.Join(tmp, "data")
	common := []string{"--data-dir", data, "--cache-dir", filepath.Join(tmp, "cache")}

	out, errOut, err := run(t, "", append([]string{"scrape", site.URL + "/bees", site.URL + "/gone"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "All About Bees")
	assert.Contains(t, errOut, "failed: "+site.URL+"/gone")
	assert.Contains(t, errOut, "processed 1 of 2 articles")

	out, _, err = run(t, "", "list", "--data-dir", data, "--json")
	require.NoError(t, err)
	var records []store.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records), out)
	require.Len(t, records, 1)
	assert.Equal(t, "Ada Hive", records[0].Author)

	out, _, err = run(t, "", "list", "--data-dir", data, "--author", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No articles found.")

	out, _, err = run(t, "", "stats", "--data-dir", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Total articles:        1")
	assert.Contains(t, out, "Unique authors:        1")

	csvPath := filepath.Join(tmp, "out.csv")
	_, _, err = run(t, "", "export", "--data-dir", data, "--format", "csv", "--out", csvPath)
	require.NoError(t, err)
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), site.URL+"/bees")

	_, _, err = run(t, "", "export", "--data-dir", data, "--format", "xml", "--out", filepath.Join(tmp, "out.xml"))
	assert.ErrorIs(t, err, store.ErrUnsupportedFormat)
}

func TestScrapeCmd_Failures(t *testing.T) {
	site := httptest.NewServer(http.NotFoundHandler())
	defer site.Close()
	tmp := t.TempDir()

	_, _, err := run(t, "", "scrape", site.URL+"/a", "--data-dir", tmp, "--cache-dir", filepath.Join(tmp, "c"))
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrNoUsableArticles)
	assert.Equal(t, 2, exitCode(err))

	_, _, err = run(t, "", "scrape", "--data-dir", tmp, "--cache-dir", filepath.Join(tmp, "c"))
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestScrapeCmd_URLFile(t *testing.T) {
	tmp := t.TempDir()
	list := filepath.Join(tmp, "urls.txt")
	require.NoError(t, os.WriteFile(list, []byte("# nothing fetchable\nftp://example.com/a\n"), 0o644))

	_, errOut, err := run(t, "", "scrape", "--file", list, "--data-dir", tmp, "--cache-dir", filepath.Join(tmp, "c"), "--format", "json")
	assert.ErrorIs(t, err, app.ErrNoUsableArticles)
	assert.Contains(t, errOut, "ftp://example.com/a")
}

func TestConfigFileAndEnvLayering(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "gosummarize.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("summary:\n  ratio: 0.5\n  minSentences: 1\n"), 0o644))
	t.Setenv("SUMMARY_MIN_SENTENCES", "2")

	_, _, err := run(t, sampleText, "summarize", "--config", cfgPath, "--json")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Ratio)
	assert.Equal(t, 2, cfg.MinSentences)

	_, _, err = run(t, sampleText, "summarize", "--config", cfgPath, "--min-sentences", "4", "--json")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MinSentences)

	_, _, err = run(t, "", "stats", "--config", filepath.Join(tmp, "missing.yaml"))
	assert.ErrorIs(t, err, app.ErrInvalidConfig)
	assert.Equal(t, 2, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(app.ErrNoUsableArticles))
}
