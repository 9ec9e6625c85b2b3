package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/gosummarize/internal/aggregate"
	"github.com/hyperifyio/gosummarize/internal/cache"
	"github.com/hyperifyio/gosummarize/internal/extract"
	"github.com/hyperifyio/gosummarize/internal/fetch"
	"github.com/hyperifyio/gosummarize/internal/report"
	"github.com/hyperifyio/gosummarize/internal/score"
	"github.com/hyperifyio/gosummarize/internal/stats"
	"github.com/hyperifyio/gosummarize/internal/store"
	"github.com/hyperifyio/gosummarize/internal/summarize"
	"github.com/hyperifyio/gosummarize/internal/textproc"
)

var (
	// ErrNoUsableArticles is returned by ProcessAll when no URL produced a
	// stored article.
	ErrNoUsableArticles = errors.New("no usable articles")
	// ErrEmptyArticle is returned when extraction leaves no text.
	ErrEmptyArticle = errors.New("article has no text")
	// ErrSave wraps store failures from Process.
	ErrSave = errors.New("save article")
)

// App wires fetching, extraction, summarization and storage.
type App struct {
	cfg        Config
	fetcher    *fetch.Client
	summarizer *summarize.Summarizer
	store      store.Store
}

// New prepares the cache, the fetch client, the summarizer and the store
// described by cfg.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := prepareCache(cfg); err != nil {
		return nil, err
	}

	strategy, err := score.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	sum, err := summarize.New(strategy)
	if err != nil {
		return nil, err
	}
	logger := log.Logger
	sum.Log = &logger

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.Open(cfg.DataDir, cfg.StoreFormats)
	if err != nil {
		return nil, err
	}

	fc := &fetch.Client{
		HTTPClient:        newScraperHTTPClient(cfg.FetchTimeout, cfg.SSLVerify),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.FetchAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		MaxConcurrent:     cfg.MaxConcurrent,
		AllowPDF:          cfg.EnablePDF,
	}
	if strings.TrimSpace(cfg.CacheDir) != "" {
		fc.Cache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	if cfg.FetchRate > 0 {
		burst := cfg.FetchBurst
		if burst < 1 {
			burst = 1
		}
		fc.Limiter = rate.NewLimiter(rate.Limit(cfg.FetchRate), burst)
	}

	log.Debug().Str("data_dir", cfg.DataDir).Strs("formats", cfg.StoreFormats).Str("strategy", strategy.String()).Msg("pipeline ready")
	return &App{cfg: cfg, fetcher: fc, summarizer: sum, store: st}, nil
}

func prepareCache(cfg Config) error {
	dir := strings.TrimSpace(cfg.CacheDir)
	if dir == "" {
		return nil
	}
	if cfg.CacheClear {
		if err := cache.ClearDir(dir); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		log.Info().Str("dir", dir).Msg("cache cleared")
	}
	if cfg.CacheMaxAge > 0 {
		n, err := cache.PurgeHTTPCacheByAge(dir, cfg.CacheMaxAge)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("purged stale cache entries")
		}
	}
	if cfg.CacheMaxBytes > 0 || cfg.CacheMaxEntries > 0 {
		if n, err := cache.EnforceHTTPCacheLimits(dir, cfg.CacheMaxBytes, cfg.CacheMaxEntries); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("cache limit enforcement failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("evicted cache entries over limit")
		}
	}
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Store exposes the configured record store.
func (a *App) Store() store.Store { return a.store }

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.cfg }

// Process fetches rawURL, summarizes the article and saves it.
func (a *App) Process(ctx context.Context, rawURL string) (store.Record, error) {
	u, err := fetch.ValidateURL(rawURL)
	if err != nil {
		return store.Record{}, err
	}
	target := u.String()
	start := time.Now()

	body, contentType, err := a.fetcher.Get(ctx, target)
	if err != nil {
		return store.Record{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	art, err := extract.FromResponse(body, contentType)
	if err != nil {
		return store.Record{}, fmt.Errorf("extract %s: %w", target, err)
	}
	content := textproc.Clean(art.Text)
	if strings.TrimSpace(content) == "" {
		return store.Record{}, fmt.Errorf("%s: %w", target, ErrEmptyArticle)
	}

	res, err := a.summarizer.Summarize(a.cfg.SummaryRequest(content))
	if err != nil {
		return store.Record{}, err
	}
	rec := store.Prepare(store.Record{
		URL:       target,
		Title:     art.Title,
		Content:   content,
		Author:    art.Author,
		Published: art.Published,
		Metadata:  art.Metadata,
		Summary:   res.Summary,
		Stats:     stats.Compare(a.summarizer.Processor, content, res.Summary),
	})
	if err := a.store.Save(ctx, rec); err != nil {
		return store.Record{}, fmt.Errorf("%w %s: %w", ErrSave, target, err)
	}
	// A re-processed URL keeps the ID it was first stored under.
	if saved, err := a.store.List(ctx, store.Filter{URL: target}); err == nil {
		for _, s := range saved {
			if s.URL == target {
				rec.ID = s.ID
				break
			}
		}
	}

	if dir := strings.TrimSpace(a.cfg.PDFDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("create pdf dir")
		} else {
			path := derivePDFPath(dir, rec.Title, rec.URL)
			if err := report.WritePDF(rec, path); err != nil {
				log.Warn().Err(err).Str("url", target).Msg("pdf export failed")
			} else {
				log.Debug().Str("path", path).Msg("wrote pdf")
			}
		}
	}

	log.Info().
		Str("url", target).
		Str("title", rec.Title).
		Int("words", rec.Stats.OriginalLength).
		Int("summary_words", rec.Stats.SummaryLength).
		Bool("fallback", res.Fallback).
		Dur("elapsed", time.Since(start)).
		Msg("article processed")
	return rec, nil
}

// Failure records a URL that could not be processed.
type Failure struct {
	URL string
	Err error
}

// Batch is the outcome of ProcessAll.
type Batch struct {
	Records []store.Record
	Failed  []Failure
}

// ProcessAll normalizes and de-duplicates urls, then processes them one at a
// time. A failing URL is logged and skipped. ErrNoUsableArticles is returned
// alongside the batch when nothing succeeded.
func (a *App) ProcessAll(ctx context.Context, urls []string) (Batch, error) {
	var out Batch
	for _, u := range aggregate.MergeAndNormalize(urls) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rec, err := a.Process(ctx, u)
		if err != nil {
			out.Failed = append(out.Failed, Failure{URL: u, Err: err})
			log.Warn().Err(err).Str("url", u).Msg("article failed")
			continue
		}
		out.Records = append(out.Records, rec)
	}
	if len(out.Records) == 0 {
		return out, ErrNoUsableArticles
	}
	return out, nil
}

// TextSummary is the result of summarizing caller-provided text.
type TextSummary struct {
	summarize.Result
	Keywords []string           `json:"keywords,omitempty"`
	Stats    stats.SummaryStats `json:"stats"`
}

// SummarizeText summarizes req.Text without fetching or storing anything.
// A non-empty strategy overrides the configured one. keywords > 0 also
// returns that many top keywords.
func (a *App) SummarizeText(req summarize.Request, strategy string, keywords int) (TextSummary, error) {
	sum := a.summarizer
	if s := strings.TrimSpace(strategy); s != "" {
		st, err := score.ParseStrategy(s)
		if err != nil {
			return TextSummary{}, fmt.Errorf("%w: %v", summarize.ErrConfiguration, err)
		}
		if sum, err = summarize.New(st); err != nil {
			return TextSummary{}, err
		}
		sum.Log = a.summarizer.Log
	}
	return SummarizeWith(sum, req, keywords)
}

// SummarizeWith cleans req.Text, summarizes it with sum and compares the
// result with the cleaned text.
func SummarizeWith(sum *summarize.Summarizer, req summarize.Request, keywords int) (TextSummary, error) {
	req.Text = textproc.Clean(req.Text)
	res, err := sum.Summarize(req)
	if err != nil {
		return TextSummary{}, err
	}
	out := TextSummary{Result: res, Stats: stats.Compare(sum.Processor, req.Text, res.Summary)}
	if keywords > 0 {
		out.Keywords = sum.Keywords(req.Text, keywords)
	}
	return out, nil
}
