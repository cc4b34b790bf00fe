package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CodecNone is the codec value yt-dlp reports for an absent stream
const CodecNone = "none"

// Stream kinds derived from codec presence
const (
	StreamKindVideoAudio = "video+audio"
	StreamKindVideoOnly  = "video only"
	StreamKindAudioOnly  = "audio only"
)

// FormatDisplaySeparator joins the parts of FormatOption.DisplayText
const FormatDisplaySeparator = " • "

// FormatOption describes one fetchable encoding variant. Values are produced
// once by catalog resolution and never mutated.
type FormatOption struct {
	FormatID   string
	Ext        string
	Resolution string // e.g. "720p", empty for audio
	FPS        *int
	VCodec     string
	ACodec     string
	FileSize   *int64 // declared or estimated
	Note       string
	TBR        *float64 // target bitrate, kbit/s
}

// FormatSortKey orders variants: height, frame rate, bitrate, size
type FormatSortKey struct {
	Height   int
	FPS      int
	TBR      float64
	FileSize int64
}

// Less reports whether k sorts before other in ascending order
func (k FormatSortKey) Less(other FormatSortKey) bool {
	if k.Height != other.Height {
		return k.Height < other.Height
	}
	if k.FPS != other.FPS {
		return k.FPS < other.FPS
	}
	if k.TBR != other.TBR {
		return k.TBR < other.TBR
	}
	return k.FileSize < other.FileSize
}

// HasVideo returns true if the variant carries a video stream
func (f FormatOption) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != CodecNone
}

// HasAudio returns true if the variant carries an audio stream
func (f FormatOption) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != CodecNone
}

// Kind returns the combined stream kind label
func (f FormatOption) Kind() string {
	switch {
	case f.HasVideo() && f.HasAudio():
		return StreamKindVideoAudio
	case f.HasVideo():
		return StreamKindVideoOnly
	case f.HasAudio():
		return StreamKindAudioOnly
	default:
		return ""
	}
}

// Height parses the vertical resolution from the resolution label, 0 if absent
func (f FormatOption) Height() int {
	if f.Resolution == "" {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSuffix(f.Resolution, "p"))
	if err != nil {
		return 0
	}
	return h
}

// SortKey returns the key used to rank variants
func (f FormatOption) SortKey() FormatSortKey {
	key := FormatSortKey{Height: f.Height()}
	if f.FPS != nil {
		key.FPS = *f.FPS
	}
	if f.TBR != nil {
		key.TBR = *f.TBR
	}
	if f.FileSize != nil {
		key.FileSize = *f.FileSize
	}
	return key
}

// DisplayText returns a one-line description for variant pickers
func (f FormatOption) DisplayText() string {
	var parts []string
	if f.Resolution != "" {
		parts = append(parts, f.Resolution)
	}
	if f.FPS != nil && *f.FPS > 0 {
		parts = append(parts, fmt.Sprintf("%dfps", *f.FPS))
	}
	if f.HasVideo() {
		parts = append(parts, f.VCodec)
	}
	if f.HasAudio() {
		parts = append(parts, f.ACodec)
	}
	if f.FileSize != nil && *f.FileSize > 0 {
		parts = append(parts, fmt.Sprintf("%.1f MB", float64(*f.FileSize)/(1024*1024)))
	}
	if f.Ext != "" {
		parts = append(parts, f.Ext)
	}
	if f.Note != "" {
		parts = append(parts, f.Note)
	}
	return strings.Join(parts, FormatDisplaySeparator)
}

// Streamless reports whether both codecs are explicitly "none". A missing
// codec means the resolver did not say, not that the stream is absent.
func (f FormatOption) Streamless() bool {
	return f.VCodec == CodecNone && f.ACodec == CodecNone
}

// SortFormats drops streamless variants and returns the rest ordered best
// first. Ties keep catalog order.
func SortFormats(formats []FormatOption) []FormatOption {
	out := make([]FormatOption, 0, len(formats))
	for _, f := range formats {
		if f.Streamless() {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].SortKey().Less(out[i].SortKey())
	})
	return out
}
