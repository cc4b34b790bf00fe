package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/fbgrabber/internal/platform"
)

// Defaults for the yt-dlp backed service.
const (
	DefaultResolveTimeout   = 60 * time.Second
	DefaultProgressInterval = 500 * time.Millisecond
	// DefaultNetworkRetries is passed to yt-dlp's own retry logic.
	DefaultNetworkRetries = "3"
)

// workSuffix marks a transfer that has not been moved to its final name yet.
const workSuffix = ".download"

// Service implements Resolver and Fetcher on top of yt-dlp.
type Service struct {
	mu               sync.RWMutex
	cookiesFile      string
	resolveTimeout   time.Duration
	progressInterval time.Duration

	names  *platform.NameRegistry
	moveMu sync.Mutex
	logger *slog.Logger
}

// NewService creates a new yt-dlp service
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolveTimeout:   DefaultResolveTimeout,
		progressInterval: DefaultProgressInterval,
		names:            platform.NewNameRegistry(),
		logger:           logger,
	}
}

// SetCookiesFile sets the cookies file used when a request carries none.
func (s *Service) SetCookiesFile(path string) {
	s.mu.Lock()
	s.cookiesFile = path
	s.mu.Unlock()
}

// SetResolveTimeout sets the timeout for catalog resolution
func (s *Service) SetResolveTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	s.mu.Lock()
	s.resolveTimeout = timeout
	s.mu.Unlock()
}

func (s *Service) settings() (cookies string, timeout time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookiesFile, s.resolveTimeout
}

// command returns a fresh yt-dlp command carrying the shared options.
func (s *Service) command(cookies string) *ytdlp.Command {
	dl := ytdlp.New().NoPlaylist()
	if cookies != "" {
		dl = dl.Cookies(cookies)
	}
	return dl
}

// Resolve lists the variants available for url.
func (s *Service) Resolve(ctx context.Context, url string) (*Catalog, error) {
	cookies, timeout := s.settings()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Debug("resolving formats", "url", url)

	dl := s.command(cookies).SkipDownload().DumpSingleJSON()
	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, &ResolutionError{URL: url, Err: err}
	}

	info, err := decodeInfo(result.Stdout)
	if err != nil {
		return nil, &ResolutionError{URL: url, Err: err}
	}

	catalog := &Catalog{
		URL:     url,
		Title:   info.Title,
		Formats: info.formatOptions(),
	}
	s.logger.Info("formats resolved", "url", url, "title", catalog.Title, "formats", len(catalog.Formats))
	return catalog, nil
}

// Fetch downloads req into req.Dir under a name derived from req.Title.
func (s *Service) Fetch(ctx context.Context, req FetchRequest, onProgress func(ProgressEvent)) (string, error) {
	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: %s", ErrCanceled, req.URL)
	}

	if err := platform.CreateDirectoryIfNotExists(req.Dir); err != nil {
		return "", &FetchError{URL: req.URL, Err: fmt.Errorf("create download directory: %w", err)}
	}

	stem := s.names.Reserve(req.Dir, platform.SanitizeFilename(req.Title))
	defer s.names.Release(stem)
	work := stem + workSuffix

	cookies := req.CookiesFile
	if cookies == "" {
		cookies, _ = s.settings()
	}

	dl := s.command(cookies).
		Retries(DefaultNetworkRetries).
		Output(work + ".%(ext)s").
		PrintJSON()
	if req.FormatID != "" {
		dl = dl.Format(req.FormatID)
	}

	dl.ProgressFunc(s.progressInterval, func(update ytdlp.ProgressUpdate) {
		if onProgress == nil {
			return
		}
		onProgress(newProgressEvent(
			string(update.Status),
			float64(update.DownloadedBytes),
			float64(update.TotalBytes),
			update.Started,
			update.ETA(),
			time.Now(),
		))
	})

	s.logger.Info("download starting", "url", req.URL, "format", req.FormatID, "output", stem)

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Info("download canceled", "url", req.URL)
			return "", fmt.Errorf("%w: %s", ErrCanceled, req.URL)
		}
		s.logger.Warn("download failed", "url", req.URL, "error", err)
		return "", &FetchError{URL: req.URL, Err: err}
	}

	workPath := outputPath(result, work)
	if workPath == "" {
		return "", &FetchError{URL: req.URL, Err: fmt.Errorf("output file not found for %s", filepath.Base(stem))}
	}
	s.moveMu.Lock()
	path, err := finalize(workPath, stem)
	s.moveMu.Unlock()
	if err != nil {
		return "", &FetchError{URL: req.URL, Err: fmt.Errorf("move %s into place: %w", filepath.Base(workPath), err)}
	}

	s.logger.Info("download finished", "url", req.URL, "path", path)
	return path, nil
}

// outputPath prefers the filename reported by yt-dlp and falls back to
// scanning the directory for the reserved stem.
func outputPath(result *ytdlp.Result, stem string) string {
	if result != nil {
		info, err := result.GetExtractedInfo()
		if err == nil && len(info) > 0 && info[0].Filename != nil && *info[0].Filename != "" {
			return *info[0].Filename
		}
	}
	return findByStem(stem)
}

// finalize moves a finished transfer from its working name to stem plus the
// transfer's extension, taking the next free "stem (n)" name when that path
// already exists.
func finalize(workPath, stem string) (string, error) {
	target := platform.EnsureUniquePath(stem + filepath.Ext(workPath))
	if err := os.Rename(workPath, target); err != nil {
		return "", err
	}
	return target, nil
}

// findByStem returns the first completed file named stem.<ext>.
func findByStem(stem string) string {
	dir, base := filepath.Split(stem)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, base+".") {
			continue
		}
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			continue
		}
		return filepath.Join(dir, name)
	}
	return ""
}

// newProgressEvent builds a ProgressEvent, deriving speed from the elapsed
// time since the transfer started.
func newProgressEvent(status string, downloaded, total float64, started time.Time, eta time.Duration, now time.Time) ProgressEvent {
	ev := ProgressEvent{
		Status:          status,
		DownloadedBytes: downloaded,
		TotalBytes:      total,
	}
	if !started.IsZero() {
		if elapsed := now.Sub(started).Seconds(); elapsed > 0 {
			ev.Speed = downloaded / elapsed
		}
	}
	if eta > 0 {
		ev.ETA = eta.Seconds()
	}
	return ev
}
