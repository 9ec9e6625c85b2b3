package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hyperifyio/gosummarize/internal/app"
)

var (
	configPath string
	envFiles   []string
	verbose    bool
	dataDir    string
	cacheDir   string

	// cfg is resolved before every command runs.
	cfg app.Config
)

var rootCmd = &cobra.Command{
	Use:   "gosummarize",
	Short: "Scrape articles and produce extractive summaries",
	Long: `gosummarize fetches web articles, isolates their main text and keeps the
highest-scoring sentences as a summary. Articles are stored in SQLite, JSON
or CSV and can be listed, exported or served over HTTP.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: resolveConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a YAML, JSON or TOML config file")
	pf.StringArrayVar(&envFiles, "env-file", []string{".env"}, "dotenv file to load (repeatable; later files win)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	pf.StringVar(&dataDir, "data-dir", "", "directory holding the article store")
	pf.StringVar(&cacheDir, "cache-dir", "", "HTTP cache directory")
}

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, _ []string) error {
	if err := app.LoadEnvFiles(envFiles...); err != nil {
		return err
	}
	c := app.DefaultConfig()
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("%w: %v", app.ErrInvalidConfig, err)
		}
		app.ApplyFileConfig(&c, fc)
	}
	app.ApplyEnvOverrides(&c)

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		c.Verbose = verbose
	}
	if flags.Changed("data-dir") {
		c.DataDir = dataDir
	}
	if flags.Changed("cache-dir") {
		c.CacheDir = cacheDir
	}
	applySummaryFlags(cmd, &c)

	if c.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	cfg = c
	return nil
}

var (
	ratio        float64
	words        int
	minSentences int
	strategy     string
)

func addSummaryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&ratio, "ratio", 0, "fraction of sentences to keep, in (0,1]")
	f.IntVar(&words, "words", 0, "approximate summary length in words (overrides --ratio)")
	f.IntVar(&minSentences, "min-sentences", 0, "minimum sentences in a summary")
	f.StringVar(&strategy, "strategy", "", "scoring strategy: weighted or frequency")
}

func applySummaryFlags(cmd *cobra.Command, c *app.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}
	if changed("ratio") {
		c.Ratio = ratio
	}
	if changed("words") {
		c.TargetWords = words
	}
	if changed("min-sentences") {
		c.MinSentences = minSentences
	}
	if changed("strategy") {
		c.Strategy = strategy
	}
}

// reportWidth is the terminal width when stdout is a terminal, else 80.
func reportWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w >= 40 {
			return min(w, 120)
		}
	}
	return 80
}
