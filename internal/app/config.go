package app

import (
	"time"

	"github.com/hyperifyio/gosummarize/internal/summarize"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Summarization
	Ratio        float64
	TargetWords  int
	MinSentences int
	Strategy     string

	// Storage
	DataDir      string
	StoreFormats []string
	// PDFDir, when set, receives one PDF per processed article.
	PDFDir string

	// Fetching
	UserAgent     string
	FetchAttempts int
	FetchTimeout  time.Duration
	// FetchRate is the request budget per second; zero disables pacing.
	FetchRate     float64
	FetchBurst    int
	MaxConcurrent int
	EnablePDF     bool
	SSLVerify     bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxBytes    int64
	CacheMaxEntries  int
	CacheClear       bool
	CacheStrictPerms bool

	// API
	ListenAddr string
	APIKey     string

	Verbose bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Ratio:         summarize.DefaultRatio,
		MinSentences:  summarize.DefaultMinSentences,
		Strategy:      "weighted",
		DataDir:       "data",
		StoreFormats:  []string{"sqlite"},
		UserAgent:     "gosummarize/" + BuildVersion + " (+https://github.com/hyperifyio/gosummarize)",
		FetchAttempts: 3,
		FetchTimeout:  15 * time.Second,
		FetchRate:     1,
		FetchBurst:    1,
		MaxConcurrent: 4,
		SSLVerify:     true,
		CacheDir:      ".gosummarize-cache",
		ListenAddr:    ":8080",
	}
}

// SummaryRequest builds the summarizer request for text from the configured
// length settings.
func (c Config) SummaryRequest(text string) summarize.Request {
	return summarize.Request{
		Text:         text,
		Ratio:        c.Ratio,
		TargetWords:  c.TargetWords,
		MinSentences: c.MinSentences,
	}
}
