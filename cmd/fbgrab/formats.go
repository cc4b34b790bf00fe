package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytget/fbgrabber/internal/download"
	"github.com/ytget/fbgrabber/internal/platform"
)

var formatsCmd = &cobra.Command{
	Use:   "formats <url>",
	Short: "List the formats available for a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		refresh, _ := cmd.Flags().GetBool("refresh")
		return runFormats(cmd.Context(), rt, args[0], refresh)
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
	formatsCmd.Flags().Bool("refresh", false, "Ignore a cached format list")
}

// forgetter is implemented by resolvers that cache catalogs
type forgetter interface {
	Forget(url string)
}

// formatRow is the JSON shape of one variant
type formatRow struct {
	ID         string   `json:"id"`
	Ext        string   `json:"ext"`
	Resolution string   `json:"resolution,omitempty"`
	FPS        *int     `json:"fps,omitempty"`
	Kind       string   `json:"kind"`
	VCodec     string   `json:"vcodec,omitempty"`
	ACodec     string   `json:"acodec,omitempty"`
	Size       *int64   `json:"size,omitempty"`
	Bitrate    *float64 `json:"tbr,omitempty"`
	Note       string   `json:"note,omitempty"`
}

func runFormats(ctx context.Context, rt *runtime, url string, refresh bool) error {
	url = strings.TrimSpace(url)
	if f, ok := rt.resolver.(forgetter); ok && refresh {
		f.Forget(url)
	}
	catalog, err := rt.resolver.Resolve(ctx, url)
	if err != nil {
		return fmt.Errorf("formats: %w", err)
	}
	title := platform.CleanTitle(catalog.Title, platform.DefaultTitlePlaceholder)

	if rt.json {
		rows := make([]formatRow, 0, len(catalog.Formats))
		for _, f := range catalog.Formats {
			rows = append(rows, formatRow{
				ID:         f.FormatID,
				Ext:        f.Ext,
				Resolution: f.Resolution,
				FPS:        f.FPS,
				Kind:       f.Kind(),
				VCodec:     f.VCodec,
				ACodec:     f.ACodec,
				Size:       f.FileSize,
				Bitrate:    f.TBR,
				Note:       f.Note,
			})
		}
		rt.printJSON(map[string]any{"url": catalog.URL, "title": title, "formats": rows})
		return nil
	}

	printCatalog(rt, title, catalog)
	return nil
}

func printCatalog(rt *runtime, title string, catalog *download.Catalog) {
	printf(rt.out, "%s\n\n", title)
	if len(catalog.Formats) == 0 {
		printf(rt.out, "No downloadable formats\n")
		return
	}

	printf(rt.out, "  %-12s %-5s %-7s %-4s %-12s %-10s %s\n", "ID", "EXT", "RES", "FPS", "KIND", "SIZE", "NOTE")
	printf(rt.out, "  %s\n", strings.Repeat("-", 70))
	for _, f := range catalog.Formats {
		fps := "-"
		if f.FPS != nil && *f.FPS > 0 {
			fps = strconv.Itoa(*f.FPS)
		}
		size := "-"
		if f.FileSize != nil && *f.FileSize > 0 {
			size = platform.HumanBytes(float64(*f.FileSize))
		}
		res := f.Resolution
		if res == "" {
			res = "-"
		}
		printf(rt.out, "  %-12s %-5s %-7s %-4s %-12s %-10s %s\n",
			truncate(f.FormatID, 12), f.Ext, res, fps, f.Kind(), size, truncate(f.Note, 24))
	}
}
