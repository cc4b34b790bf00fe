package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQueueItem(t *testing.T) {
	item := NewQueueItem(7, "https://facebook.com/watch?v=1", "hd", "Title", "720p")

	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, QueueStatusPending, item.Status)
	assert.Equal(t, "hd", item.FormatID)
	assert.Equal(t, "720p", item.QualityText)
	assert.Zero(t, item.Attempts)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestQueueItem_TerminalFieldsAreExclusive(t *testing.T) {
	item := NewQueueItem(1, "https://example.com/v", "", "Clip", "Best")
	item.ResetForDispatch()
	item.Progress = 42

	item.Fail(QueueStatusFailed, "network down")
	assert.Equal(t, QueueStatusFailed, item.Status)
	assert.Equal(t, "network down", item.Error)
	assert.Empty(t, item.OutputPath)
	assert.InDelta(t, 42, item.Progress, 0.001, "failure keeps last progress")

	item.ResetForDispatch()
	assert.Equal(t, QueueStatusPending, item.Status)
	assert.Empty(t, item.Error)
	assert.Zero(t, item.Progress)
	assert.Equal(t, 2, item.Attempts)

	item.Complete("/tmp/Clip.mp4")
	assert.Equal(t, QueueStatusCompleted, item.Status)
	assert.Equal(t, "/tmp/Clip.mp4", item.OutputPath)
	assert.Empty(t, item.Error)
	assert.InDelta(t, 100, item.Progress, 0.001)
}

func TestQueueItem_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		output   string
		url      string
		expected string
	}{
		{"Video Title", "", "https://facebook.com/v/1", "Video Title"},
		{"", "/downloads/My Clip.mp4", "https://facebook.com/v/1", "My Clip"},
		{"https://facebook.com/v/1", "", "https://facebook.com/v/1", "https://facebook.com/v/1"},
		{"", "", "https://facebook.com/v/2", "https://facebook.com/v/2"},
	}

	for _, test := range tests {
		item := &QueueItem{Title: test.title, OutputPath: test.output, URL: test.url}
		assert.Equal(t, test.expected, item.GetDisplayTitle())
	}
}
