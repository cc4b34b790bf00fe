package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/ytget/fbgrabber/internal/platform"
	"github.com/ytget/fbgrabber/internal/queue"
)

// EnvPrefix prefixes environment overrides, e.g. FBGRABBER_DOWNLOAD_DIR.
const EnvPrefix = "FBGRABBER_"

// File is the configuration used by the command line tool.
type File struct {
	Download DownloadConfig `toml:"download"`
	Log      LogConfig      `toml:"log"`
	Cache    CacheConfig    `toml:"cache"`
}

type DownloadConfig struct {
	Dir            string        `toml:"dir"`
	MaxConcurrent  int           `toml:"max_concurrent"`
	CookiesFile    string        `toml:"cookies_file"`
	ResolveTimeout time.Duration `toml:"resolve_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// CacheConfig controls the catalog cache used by `formats`.
type CacheConfig struct {
	TTL time.Duration `toml:"ttl"`
}

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "fbgrabber", "config.toml")
}

// Discover finds the config file. Search order:
//  1. FBGRABBER_CONFIG environment variable
//  2. ./fbgrabber.toml
//  3. $XDG_CONFIG_HOME/fbgrabber/config.toml
//
// It returns "" without error when no file exists; defaults are used then.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvPrefix + "CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%sCONFIG=%s: %w", EnvPrefix, envPath, err)
		}
		return envPath, nil
	}

	for _, p := range []string{"./fbgrabber.toml", DefaultPath()} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// LoadEnvFiles loads .env style files into the process environment. Missing
// files are skipped; variables already set are not overridden.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("no env file", "path", p)
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadFile reads path (if not empty), substitutes ${VAR} references, applies
// defaults and FBGRABBER_* overrides and validates the result.
func LoadFile(path string) (*File, error) {
	var cfg File

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}

		content, missing := substituteEnvVars(string(data))
		if len(missing) > 0 {
			return nil, &ConfigError{Path: path, Missing: missing}
		}

		if _, err := toml.Decode(content, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return &cfg, nil
}

func (f *File) applyDefaults() {
	if f.Download.Dir == "" {
		if dir, err := platform.GetDefaultDownloadDir(); err == nil {
			f.Download.Dir = dir
		} else {
			f.Download.Dir = fallbackDownloadDir
		}
	}
	if f.Download.MaxConcurrent == 0 {
		f.Download.MaxConcurrent = queue.DefaultMaxConcurrent
	}
	if f.Download.ResolveTimeout == 0 {
		f.Download.ResolveTimeout = 60 * time.Second
	}
	if f.Log.Level == "" {
		f.Log.Level = "info"
	}
	if f.Log.Format == "" {
		f.Log.Format = "text"
	}
	if f.Cache.TTL == 0 {
		f.Cache.TTL = 10 * time.Minute
	}
}

func (f *File) applyEnv() error {
	if v, ok := lookupEnv("DOWNLOAD_DIR"); ok {
		f.Download.Dir = v
	}
	if v, ok := lookupEnv("COOKIES_FILE"); ok {
		f.Download.CookiesFile = v
	}
	if v, ok := lookupEnv("MAX_CONCURRENT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_CONCURRENT: %w", EnvPrefix, err)
		}
		f.Download.MaxConcurrent = n
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		f.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookupEnv("LOG_FORMAT"); ok {
		f.Log.Format = strings.ToLower(v)
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// QueueConfig returns the snapshot consumed by the queue orchestrator.
func (f *File) QueueConfig() queue.Config {
	return queue.Config{
		DownloadDir:   f.Download.Dir,
		MaxConcurrent: f.Download.MaxConcurrent,
		CookiesFile:   f.Download.CookiesFile,
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment references and reports the ones
// that could not be resolved. Unresolved references are left unchanged.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]

		value, ok := os.LookupEnv(name)
		if ok && (value != "" || op == "") {
			return value
		}

		switch op {
		case ":-":
			return arg
		case ":?":
			missing = append(missing, fmt.Sprintf("%s: %s", name, arg))
		default:
			missing = append(missing, name)
		}
		return match
	})
	return out, missing
}
