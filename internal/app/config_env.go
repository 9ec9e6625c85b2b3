package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. It runs after the config file so env takes precedence over the file
// while flags remain highest precedence. Unparseable values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	setFloat := func(dst *float64, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				*dst = v
			}
		}
	}
	setInt := func(dst *int, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				*dst = v
			}
		}
	}
	setString := func(dst *string, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			*dst = s
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}

	setFloat(&cfg.Ratio, "SUMMARY_RATIO")
	setInt(&cfg.TargetWords, "SUMMARY_WORDS")
	setInt(&cfg.MinSentences, "SUMMARY_MIN_SENTENCES")
	setString(&cfg.Strategy, "SUMMARY_STRATEGY")

	setString(&cfg.DataDir, "DATA_DIR")
	if s := strings.TrimSpace(os.Getenv("STORE_FORMATS")); s != "" {
		cfg.StoreFormats = SplitList(s)
	}
	setString(&cfg.PDFDir, "PDF_DIR")

	setString(&cfg.UserAgent, "USER_AGENT")
	setInt(&cfg.FetchAttempts, "FETCH_ATTEMPTS")
	setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT")
	setFloat(&cfg.FetchRate, "FETCH_RATE")
	setBool(&cfg.EnablePDF, "ENABLE_PDF")
	setBool(&cfg.SSLVerify, "SSL_VERIFY")

	setString(&cfg.CacheDir, "CACHE_DIR")
	setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")

	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.APIKey, "API_KEY")
	setBool(&cfg.Verbose, "VERBOSE")
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
