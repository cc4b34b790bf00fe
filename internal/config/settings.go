package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/fbgrabber/internal/platform"
	"github.com/ytget/fbgrabber/internal/queue"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyMaxParallel        = "max_parallel_downloads"
	KeyCookiesFile        = "cookies_file"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultMaxParallel        = queue.DefaultMaxConcurrent
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = false
	fallbackDownloadDir       = "FBGrabber"
)

// Settings manages desktop configuration stored in Fyne preferences
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		defaultDir, err := platform.GetDefaultDownloadDir()
		if err != nil {
			defaultDir = fallbackDownloadDir
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.app.Preferences().Int(KeyMaxParallel)
	if value <= 0 {
		s.SetMaxParallelDownloads(DefaultMaxParallel)
		return DefaultMaxParallel
	}
	return value
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	count = min(max(count, queue.MinConcurrent), queue.MaxConcurrent)
	s.app.Preferences().SetInt(KeyMaxParallel, count)
}

// GetCookiesFile returns the cookies file path, empty when unset
func (s *Settings) GetCookiesFile() string {
	return s.app.Preferences().String(KeyCookiesFile)
}

// SetCookiesFile sets the cookies file path; empty clears it
func (s *Settings) SetCookiesFile(path string) {
	if path == "" {
		s.app.Preferences().RemoveValue(KeyCookiesFile)
		return
	}
	s.app.Preferences().SetString(KeyCookiesFile, path)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to auto-reveal completed downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to auto-reveal completed downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}

// QueueConfig returns the snapshot consumed by the queue orchestrator.
func (s *Settings) QueueConfig() queue.Config {
	return queue.Config{
		DownloadDir:   s.GetDownloadDirectory(),
		MaxConcurrent: s.GetMaxParallelDownloads(),
		CookiesFile:   s.GetCookiesFile(),
	}
}

// Apply validates cfg and stores it. Nothing is stored when validation fails.
func (s *Settings) Apply(cfg queue.Config) error {
	if errs := ValidateQueue(cfg); len(errs) > 0 {
		return &ConfigError{Errors: errs}
	}
	s.SetDownloadDirectory(cfg.DownloadDir)
	s.SetMaxParallelDownloads(cfg.MaxConcurrent)
	s.SetCookiesFile(cfg.CookiesFile)
	return nil
}
