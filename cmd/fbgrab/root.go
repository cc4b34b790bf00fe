package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/fbgrabber/internal/config"
	"github.com/ytget/fbgrabber/internal/download"
	"github.com/ytget/fbgrabber/internal/logger"
	"github.com/ytget/fbgrabber/internal/model"
	"github.com/ytget/fbgrabber/internal/platform"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "fbgrab",
	Short: "Download social media videos from the command line",
	Long: `fbgrab - command line front end of FB Grabber

Inspect the available formats of a video, download one or more videos
concurrently, or list the entries of a playlist.

Configuration is read from --config, $FBGRABBER_CONFIG, ./fbgrabber.toml
or ~/.config/fbgrabber/config.toml, in that order.`,
	SilenceUsage: true,
}

// Execute runs the root command with interrupt handling
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("fbgrab {{.Version}}\n")
}

// PlaylistExpander lists the videos of a playlist URL
type PlaylistExpander interface {
	Expand(ctx context.Context, url string) ([]model.PlaylistEntry, error)
}

// runtime holds the collaborators a command needs
type runtime struct {
	cfg       *config.File
	logger    *slog.Logger
	resolver  download.Resolver
	fetcher   download.Fetcher
	playlists PlaylistExpander
	out       io.Writer
	json      bool
}

// newRuntime loads configuration and builds the production collaborators
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, err
	}

	path := configPath
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	log.Debug("configuration loaded", "path", path, "download_dir", cfg.Download.Dir)

	service := download.NewService(log)
	service.SetCookiesFile(cfg.Download.CookiesFile)
	service.SetResolveTimeout(cfg.Download.ResolveTimeout)

	var resolver download.Resolver = service
	if cfg.Cache.TTL > 0 {
		resolver = download.NewCachedResolver(service, cfg.Cache.TTL, download.DefaultCatalogCleanup)
	}

	return &runtime{
		cfg:       cfg,
		logger:    log,
		resolver:  resolver,
		fetcher:   service,
		playlists: platform.NewPlaylistExpander(log),
		out:       cmd.OutOrStdout(),
		json:      jsonOutput,
	}, nil
}

func (rt *runtime) printJSON(v any) {
	enc := json.NewEncoder(rt.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		rt.logger.Error("encoding output", "error", err)
	}
}

// truncate shortens s to n runes with a trailing ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// printJSONLine writes v as one compact JSON line
func printJSONLine(w io.Writer, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
