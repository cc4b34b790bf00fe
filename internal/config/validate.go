package config

import (
	"fmt"
	"os"

	"github.com/ytget/fbgrabber/internal/queue"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "": true,
}

// ValidateQueue checks a queue snapshot. A download directory that does not
// exist yet is fine; it is created on first use.
func ValidateQueue(cfg queue.Config) []string {
	var errs []string

	if cfg.DownloadDir == "" {
		errs = append(errs, "download.dir: required")
	} else if info, err := os.Stat(cfg.DownloadDir); err == nil && !info.IsDir() {
		errs = append(errs, fmt.Sprintf("download.dir: %s is not a directory", cfg.DownloadDir))
	}

	if cfg.MaxConcurrent < queue.MinConcurrent || cfg.MaxConcurrent > queue.MaxConcurrent {
		errs = append(errs, fmt.Sprintf("download.max_concurrent: must be between %d and %d, got %d",
			queue.MinConcurrent, queue.MaxConcurrent, cfg.MaxConcurrent))
	}

	if cfg.CookiesFile != "" {
		info, err := os.Stat(cfg.CookiesFile)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("download.cookies_file: %s does not exist", cfg.CookiesFile))
		case info.IsDir():
			errs = append(errs, fmt.Sprintf("download.cookies_file: %s is a directory", cfg.CookiesFile))
		}
	}

	return errs
}

// Validate checks the file configuration for errors.
// Returns a slice of error messages (empty if valid).
func (f *File) Validate() []string {
	errs := ValidateQueue(f.QueueConfig())

	if !validLogLevels[f.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", f.Log.Level))
	}
	if !validLogFormats[f.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be text or json; got %q", f.Log.Format))
	}
	if f.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl: must not be negative")
	}

	return errs
}
