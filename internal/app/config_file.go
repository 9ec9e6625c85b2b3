package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/gosummarize/internal/score"
	"github.com/hyperifyio/gosummarize/internal/store"
)

// ErrInvalidConfig marks settings rejected by ValidateConfig.
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration reads "15s"-style strings from YAML, JSON and TOML files.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Summary struct {
		Ratio        float64 `yaml:"ratio" json:"ratio" toml:"ratio"`
		Words        int     `yaml:"words" json:"words" toml:"words"`
		MinSentences int     `yaml:"minSentences" json:"minSentences" toml:"minSentences"`
		Strategy     string  `yaml:"strategy" json:"strategy" toml:"strategy"`
	} `yaml:"summary" json:"summary" toml:"summary"`

	Storage struct {
		DataDir string   `yaml:"dataDir" json:"dataDir" toml:"dataDir"`
		Formats []string `yaml:"formats" json:"formats" toml:"formats"`
		PDFDir  string   `yaml:"pdfDir" json:"pdfDir" toml:"pdfDir"`
	} `yaml:"storage" json:"storage" toml:"storage"`

	Fetch struct {
		UserAgent     string   `yaml:"userAgent" json:"userAgent" toml:"userAgent"`
		Attempts      int      `yaml:"attempts" json:"attempts" toml:"attempts"`
		Timeout       Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
		Rate          float64  `yaml:"rate" json:"rate" toml:"rate"`
		Burst         int      `yaml:"burst" json:"burst" toml:"burst"`
		MaxConcurrent int      `yaml:"maxConcurrent" json:"maxConcurrent" toml:"maxConcurrent"`
		EnablePDF     bool     `yaml:"enablePDF" json:"enablePDF" toml:"enablePDF"`
		SSLVerify     *bool    `yaml:"sslVerify" json:"sslVerify" toml:"sslVerify"`
	} `yaml:"fetch" json:"fetch" toml:"fetch"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir" toml:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge" toml:"maxAge"`
		MaxBytes    int64    `yaml:"maxBytes" json:"maxBytes" toml:"maxBytes"`
		MaxEntries  int      `yaml:"maxEntries" json:"maxEntries" toml:"maxEntries"`
		Clear       bool     `yaml:"clear" json:"clear" toml:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms" toml:"strictPerms"`
	} `yaml:"cache" json:"cache" toml:"cache"`

	Server struct {
		Listen string `yaml:"listen" json:"listen" toml:"listen"`
		APIKey string `yaml:"apiKey" json:"apiKey" toml:"apiKey"`
	} `yaml:"server" json:"server" toml:"server"`

	Verbose bool `yaml:"verbose" json:"verbose" toml:"verbose"`
}

// LoadConfigFile reads YAML, JSON or TOML into FileConfig, chosen by file
// extension. Unknown extensions are tried as YAML, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			fc = FileConfig{}
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. Callers apply it
// to defaults before environment overrides and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Summary.Ratio != 0 {
		cfg.Ratio = fc.Summary.Ratio
	}
	if fc.Summary.Words != 0 {
		cfg.TargetWords = fc.Summary.Words
	}
	if fc.Summary.MinSentences != 0 {
		cfg.MinSentences = fc.Summary.MinSentences
	}
	if fc.Summary.Strategy != "" {
		cfg.Strategy = fc.Summary.Strategy
	}

	if fc.Storage.DataDir != "" {
		cfg.DataDir = fc.Storage.DataDir
	}
	if len(fc.Storage.Formats) > 0 {
		cfg.StoreFormats = append([]string{}, fc.Storage.Formats...)
	}
	if fc.Storage.PDFDir != "" {
		cfg.PDFDir = fc.Storage.PDFDir
	}

	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.Attempts != 0 {
		cfg.FetchAttempts = fc.Fetch.Attempts
	}
	if fc.Fetch.Timeout != 0 {
		cfg.FetchTimeout = time.Duration(fc.Fetch.Timeout)
	}
	if fc.Fetch.Rate != 0 {
		cfg.FetchRate = fc.Fetch.Rate
	}
	if fc.Fetch.Burst != 0 {
		cfg.FetchBurst = fc.Fetch.Burst
	}
	if fc.Fetch.MaxConcurrent != 0 {
		cfg.MaxConcurrent = fc.Fetch.MaxConcurrent
	}
	if fc.Fetch.EnablePDF {
		cfg.EnablePDF = true
	}
	if fc.Fetch.SSLVerify != nil {
		cfg.SSLVerify = *fc.Fetch.SSLVerify
	}

	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge != 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if fc.Cache.MaxBytes != 0 {
		cfg.CacheMaxBytes = fc.Cache.MaxBytes
	}
	if fc.Cache.MaxEntries != 0 {
		cfg.CacheMaxEntries = fc.Cache.MaxEntries
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if fc.Server.Listen != "" {
		cfg.ListenAddr = fc.Server.Listen
	}
	if fc.Server.APIKey != "" {
		cfg.APIKey = fc.Server.APIKey
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig rejects settings the pipeline cannot run with. Errors wrap
// ErrInvalidConfig.
func ValidateConfig(cfg Config) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if !(cfg.Ratio > 0 && cfg.Ratio <= 1) {
		return invalid("ratio %v must be in (0,1]", cfg.Ratio)
	}
	if cfg.TargetWords < 0 {
		return invalid("word target %d is negative", cfg.TargetWords)
	}
	if cfg.MinSentences < 1 {
		return invalid("minimum sentences %d must be at least 1", cfg.MinSentences)
	}
	if _, err := score.ParseStrategy(cfg.Strategy); err != nil {
		return invalid("%v", err)
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return invalid("data dir is required")
	}
	for _, f := range cfg.StoreFormats {
		if !store.ValidFormat(f) {
			return invalid("unknown store format %q", f)
		}
	}
	if cfg.FetchAttempts < 0 || cfg.FetchTimeout < 0 || cfg.FetchRate < 0 || cfg.FetchBurst < 0 || cfg.MaxConcurrent < 0 {
		return invalid("negative fetch limits are not allowed")
	}
	if cfg.CacheMaxAge < 0 || cfg.CacheMaxBytes < 0 || cfg.CacheMaxEntries < 0 {
		return invalid("negative cache limits are not allowed")
	}
	return nil
}
