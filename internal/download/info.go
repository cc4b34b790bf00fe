package download

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ytget/fbgrabber/internal/model"
)

// videoInfo is the subset of yt-dlp's info JSON the downloader reads.
type videoInfo struct {
	Title   string       `json:"title"`
	Formats []formatInfo `json:"formats"`
}

type formatInfo struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	Height         *float64 `json:"height"`
	FPS            *float64 `json:"fps"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
	FileSize       *float64 `json:"filesize"`
	FileSizeApprox *float64 `json:"filesize_approx"`
	FormatNote     *string  `json:"format_note"`
	TBR            *float64 `json:"tbr"`
}

var errNoInfo = errors.New("yt-dlp returned no metadata")

// decodeInfo parses the last JSON object printed by yt-dlp.
func decodeInfo(stdout string) (*videoInfo, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info videoInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		return &info, nil
	}
	return nil, errNoInfo
}

// formatOptions converts raw formats into options, dropping variants whose
// codecs are both "none". Missing codecs are kept as unknown.
func (v *videoInfo) formatOptions() []model.FormatOption {
	out := make([]model.FormatOption, 0, len(v.Formats))
	for _, f := range v.Formats {
		opt := model.FormatOption{
			FormatID: f.FormatID,
			Ext:      f.Ext,
			VCodec:   deref(f.VCodec),
			ACodec:   deref(f.ACodec),
			Note:     deref(f.FormatNote),
			TBR:      positive(f.TBR),
		}
		if f.Height != nil && *f.Height > 0 {
			opt.Resolution = strconv.Itoa(int(*f.Height)) + "p"
		}
		if fps := positive(f.FPS); fps != nil {
			n := int(*fps)
			opt.FPS = &n
		}
		size := positive(f.FileSize)
		if size == nil {
			size = positive(f.FileSizeApprox)
		}
		if size != nil {
			n := int64(*size)
			opt.FileSize = &n
		}
		out = append(out, opt)
	}
	return model.SortFormats(out)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func positive(f *float64) *float64 {
	if f == nil || *f <= 0 {
		return nil
	}
	return f
}
