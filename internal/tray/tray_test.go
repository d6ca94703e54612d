package tray

import "testing"

// TestEmojiForStatus verifies the status-to-indicator mapping used for the
// tray title. The systray rendering itself is not exercised here.
func TestEmojiForStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"streaming", "streaming", "🔴"},
		{"idle", "idle", "🟢"},
		{"error", "error", "⚪️"},
		{"unknown falls back to idle", "bogus", "🟢"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emojiForStatus(tt.status); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
