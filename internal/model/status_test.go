package model

import "testing"

func TestQueueStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   QueueStatus
		expected bool
	}{
		{QueueStatusPending, true},
		{QueueStatusDownloading, true},
		{QueueStatusCompleted, false},
		{QueueStatusFailed, false},
		{QueueStatusCanceled, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("QueueStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestQueueStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   QueueStatus
		expected bool
	}{
		{QueueStatusPending, false},
		{QueueStatusDownloading, false},
		{QueueStatusCompleted, true},
		{QueueStatusFailed, true},
		{QueueStatusCanceled, true},
	}

	for _, test := range tests {
		result := test.status.IsTerminal()
		if result != test.expected {
			t.Errorf("QueueStatus(%s).IsTerminal() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestQueueStatus_DisplayText(t *testing.T) {
	tests := []struct {
		status   QueueStatus
		expected string
	}{
		{QueueStatusPending, "Queued"},
		{QueueStatusDownloading, "Downloading"},
		{QueueStatusCompleted, "Completed"},
		{QueueStatusFailed, "Failed"},
		{QueueStatusCanceled, "Canceled"},
		{QueueStatus(42), "Unknown"},
	}

	for _, test := range tests {
		if got := test.status.DisplayText(); got != test.expected {
			t.Errorf("QueueStatus(%d).DisplayText() = %s, expected %s", int(test.status), got, test.expected)
		}
	}
}

func TestQueueStatus_String(t *testing.T) {
	if got := QueueStatusDownloading.String(); got != "downloading" {
		t.Errorf("QueueStatus.String() = %s, expected downloading", got)
	}
}
