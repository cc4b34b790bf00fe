package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ytpl "github.com/ytget/ytdlp/v2"

	"github.com/ytget/fbgrabber/internal/model"
)

// DefaultPlaylistTimeout bounds a single playlist expansion.
const DefaultPlaylistTimeout = 60 * time.Second

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// VideoURLTemplate builds a watch URL from a playlist item id.
const VideoURLTemplate = "https://www.youtube.com/watch?v=%s"

// ErrNotPlaylist is returned when a URL carries no playlist id.
var ErrNotPlaylist = errors.New("not a playlist URL")

// PlaylistLister lists the items of a playlist by id.
type PlaylistLister interface {
	List(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error)
}

// PlaylistExpander turns a playlist URL into individual video entries.
type PlaylistExpander struct {
	lister  PlaylistLister
	timeout time.Duration
	logger  *slog.Logger
}

// NewPlaylistExpander creates an expander backed by the ytdlp library.
func NewPlaylistExpander(logger *slog.Logger) *PlaylistExpander {
	return NewPlaylistExpanderWithLister(ytplLister{}, logger)
}

// NewPlaylistExpanderWithLister creates an expander over a custom lister.
func NewPlaylistExpanderWithLister(lister PlaylistLister, logger *slog.Logger) *PlaylistExpander {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistExpander{
		lister:  lister,
		timeout: DefaultPlaylistTimeout,
		logger:  logger,
	}
}

// SetTimeout sets the timeout for a single expansion
func (p *PlaylistExpander) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

// Expand resolves the playlist behind url. Entries without a video id are
// skipped.
func (p *PlaylistExpander) Expand(ctx context.Context, url string) ([]model.PlaylistEntry, error) {
	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotPlaylist, url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	items, err := p.lister.List(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		if it.URL == "" {
			it.URL = fmt.Sprintf(VideoURLTemplate, it.VideoID)
		}
		it.Title = CleanTitle(it.Title, it.VideoID)
		entries = append(entries, it)
	}

	p.logger.Info("playlist expanded", "playlist_id", playlistID, "entries", len(entries))
	return entries, nil
}

// IsPlaylistURL reports whether url carries a playlist parameter.
func IsPlaylistURL(url string) bool {
	return ExtractPlaylistID(url) != ""
}

// ExtractPlaylistID returns the first list= value of url, or "".
func ExtractPlaylistID(url string) string {
	_, rest, found := strings.Cut(url, PlaylistParam)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(rest, ParamSeparator)
	return id
}

type ytplLister struct{}

func (ytplLister) List(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error) {
	d := ytpl.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, model.PlaylistEntry{VideoID: it.VideoID, Title: it.Title})
	}
	return entries, nil
}
