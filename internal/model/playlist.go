package model

// PlaylistEntry is a single video found while expanding a playlist URL
type PlaylistEntry struct {
	VideoID string
	Title   string
	URL     string
}
