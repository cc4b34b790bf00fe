package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytget/fbgrabber/internal/platform"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist <url>",
	Short: "List the videos of a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return runPlaylist(cmd.Context(), rt, args[0])
	},
}

func init() {
	rootCmd.AddCommand(playlistCmd)
}

func runPlaylist(ctx context.Context, rt *runtime, url string) error {
	url = strings.TrimSpace(url)
	if !platform.IsPlaylistURL(url) {
		return fmt.Errorf("%s: %w", url, platform.ErrNotPlaylist)
	}

	entries, err := rt.playlists.Expand(ctx, url)
	if err != nil {
		return fmt.Errorf("playlist: %w", err)
	}

	if rt.json {
		rt.printJSON(entries)
		return nil
	}

	if len(entries) == 0 {
		printf(rt.out, "Playlist is empty\n")
		return nil
	}
	printf(rt.out, "Videos (%d):\n\n", len(entries))
	printf(rt.out, "  %3s │ %-44s │ %s\n", "#", "TITLE", "URL")
	printf(rt.out, "  %s\n", strings.Repeat("─", 80))
	for i, e := range entries {
		printf(rt.out, "  %3d │ %-44s │ %s\n", i+1, truncate(e.Title, 44), e.URL)
	}
	return nil
}
