package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	service := NewService(nil)

	if service.resolveTimeout != DefaultResolveTimeout {
		t.Errorf("Expected resolveTimeout %v, got %v", DefaultResolveTimeout, service.resolveTimeout)
	}
	if service.progressInterval != DefaultProgressInterval {
		t.Errorf("Expected progressInterval %v, got %v", DefaultProgressInterval, service.progressInterval)
	}
	if service.names == nil {
		t.Error("Expected name registry to be initialized")
	}
}

func TestSetResolveTimeout(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		expected time.Duration
	}{
		{"positive", 5 * time.Second, 5 * time.Second},
		{"zero ignored", 0, DefaultResolveTimeout},
		{"negative ignored", -time.Second, DefaultResolveTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(nil)
			service.SetResolveTimeout(tt.timeout)
			_, got := service.settings()
			if got != tt.expected {
				t.Errorf("expected timeout %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSetCookiesFile(t *testing.T) {
	service := NewService(nil)
	service.SetCookiesFile("/tmp/cookies.txt")
	cookies, _ := service.settings()
	assert.Equal(t, "/tmp/cookies.txt", cookies)
}

func TestFetch_CanceledBeforeStart(t *testing.T) {
	service := NewService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := service.Fetch(ctx, FetchRequest{URL: "https://example.com/v", Dir: t.TempDir()}, func(ProgressEvent) {
		called = true
	})

	assert.ErrorIs(t, err, ErrCanceled)
	assert.False(t, called)
}

func TestFetch_DirectoryError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	service := NewService(nil)
	_, err := service.Fetch(context.Background(), FetchRequest{URL: "u", Dir: filepath.Join(file, "sub")}, nil)

	assert.ErrorIs(t, err, ErrFetch)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "u", fe.URL)
}

func TestNewProgressEvent(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 10, 0, time.UTC)
	started := now.Add(-10 * time.Second)

	ev := newProgressEvent("downloading", 1000, 4000, started, 30*time.Second, now)

	assert.Equal(t, "downloading", ev.Status)
	assert.Equal(t, 1000.0, ev.DownloadedBytes)
	assert.Equal(t, 4000.0, ev.TotalBytes)
	assert.InDelta(t, 100.0, ev.Speed, 0.001)
	assert.Equal(t, 30.0, ev.ETA)
}

func TestNewProgressEvent_NotStarted(t *testing.T) {
	ev := newProgressEvent("starting", 0, 0, time.Time{}, 0, time.Now())
	assert.Zero(t, ev.Speed)
	assert.Zero(t, ev.ETA)
}

func TestFindByStem(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "clip")

	assert.Equal(t, "", findByStem(stem))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4.part"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip (1).mp4"), nil, 0o644))
	assert.Equal(t, "", findByStem(stem))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "clip.mp4"), findByStem(stem))
}

func TestFinalize(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "clip")
	work := filepath.Join(dir, "clip.download.mp4")
	require.NoError(t, os.WriteFile(work, []byte("video"), 0o644))

	path, err := finalize(work, stem)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip.mp4"), path)
	assert.NoFileExists(t, work)
	assert.FileExists(t, path)
}

func TestFinalize_ExistingTargetGetsSuffix(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "clip")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip (1).mp4"), []byte("old"), 0o644))
	work := filepath.Join(dir, "clip.download.mp4")
	require.NoError(t, os.WriteFile(work, []byte("new"), 0o644))

	path, err := finalize(work, stem)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip (2).mp4"), path)

	data, err := os.ReadFile(filepath.Join(dir, "clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "existing file is not overwritten")
}

func TestFinalize_MissingWorkFile(t *testing.T) {
	dir := t.TempDir()
	_, err := finalize(filepath.Join(dir, "gone.download.mp4"), filepath.Join(dir, "gone"))
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	cause := errors.New("HTTP Error 404")

	rerr := &ResolutionError{URL: "https://example.com", Err: cause}
	assert.ErrorIs(t, rerr, ErrResolution)
	assert.ErrorIs(t, rerr, cause)
	assert.Contains(t, rerr.Error(), "https://example.com")

	ferr := &FetchError{URL: "https://example.com", Err: cause}
	assert.ErrorIs(t, ferr, ErrFetch)
	assert.NotErrorIs(t, ferr, ErrCanceled)
	assert.Equal(t, "HTTP Error 404", ferr.Error())
}
