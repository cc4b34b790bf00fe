package download

//go:generate mockgen -destination=mocks/resolver.go -package=mocks . Resolver,Fetcher

import (
	"context"

	"github.com/ytget/fbgrabber/internal/model"
)

// Resolver turns a page URL into its title and encoding variants.
type Resolver interface {
	// Resolve returns the catalog for url. Errors wrap ErrResolution.
	Resolve(ctx context.Context, url string) (*Catalog, error)
}

// Fetcher downloads one variant of a URL.
type Fetcher interface {
	// Fetch downloads req and returns the final file path. onProgress is
	// called from the fetching goroutine, in production order. Errors wrap
	// ErrFetch, or ErrCanceled when ctx was cancelled.
	Fetch(ctx context.Context, req FetchRequest, onProgress func(ProgressEvent)) (string, error)
}

// Catalog is the result of resolving a URL.
type Catalog struct {
	URL     string
	Title   string
	Formats []model.FormatOption
}

// FetchRequest describes a single transfer.
type FetchRequest struct {
	URL      string
	FormatID string // empty selects the best available variant
	Title    string
	Dir      string
	// CookiesFile is passed to yt-dlp when set.
	CookiesFile string
}

// ProgressEvent is a raw progress notification.
type ProgressEvent struct {
	Status             string
	DownloadedBytes    float64
	TotalBytes         float64
	TotalBytesEstimate float64
	Speed              float64 // bytes per second
	ETA                float64 // seconds
}
