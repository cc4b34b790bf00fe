// Package download resolves media URLs into their encoding variants and
// fetches a chosen variant to disk. The production implementation drives
// yt-dlp through github.com/lrstanley/go-ytdlp.
package download
