package updater

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// testLogger creates a logger for tests (discards output)
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

func TestNewerVersion(t *testing.T) {
	tests := []struct {
		running string
		latest  string
		want    bool
	}{
		{"1.0.0", "v1.1.0", true},
		{"1.0.0", "1.0.1", true},
		{"v1.2.0", "v1.2.0", false},
		{"1.3.0", "v1.2.9", false},
		{"1.0.0", "v2.0.0-rc.1", true},
		{"dev", "v1.0.0", false},
		{"1.0.0", "nightly", false},
		{"", "v1.0.0", false},
	}

	for _, tt := range tests {
		if got := NewerVersion(tt.running, tt.latest); got != tt.want {
			t.Errorf("NewerVersion(%q, %q) = %v, want %v", tt.running, tt.latest, got, tt.want)
		}
	}
}

func checkerWith(version, tag string, err error) (*Checker, *[]string) {
	c := New(version, testLogger())
	c.latestRelease = func(ctx context.Context) (string, string, error) {
		return tag, "https://example.invalid/releases/" + tag, err
	}
	notified := &[]string{}
	c.notify = func(title, message string) error {
		*notified = append(*notified, message)
		return nil
	}
	return c, notified
}

func TestCheckNotifiesOnNewerRelease(t *testing.T) {
	c, notified := checkerWith("1.0.0", "v1.1.0", nil)
	c.Check(context.Background(), false)

	if len(*notified) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(*notified))
	}
	if !strings.Contains((*notified)[0], "1.1.0") {
		t.Errorf("Notification %q does not name the new version", (*notified)[0])
	}
}

func TestCheckSilentWhenUpToDate(t *testing.T) {
	c, notified := checkerWith("1.1.0", "v1.1.0", nil)
	c.Check(context.Background(), false)

	if len(*notified) != 0 {
		t.Errorf("Startup check notified although up to date: %v", *notified)
	}
}

func TestCheckInteractiveReportsUpToDate(t *testing.T) {
	c, notified := checkerWith("1.1.0", "v1.1.0", nil)
	c.Check(context.Background(), true)

	if len(*notified) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(*notified))
	}
	if !strings.Contains((*notified)[0], "latest") {
		t.Errorf("Notification %q should confirm the version is current", (*notified)[0])
	}
}

func TestCheckFailure(t *testing.T) {
	c, notified := checkerWith("1.0.0", "", errors.New("rate limited"))

	// Silent checks swallow the failure entirely.
	c.Check(context.Background(), false)
	if len(*notified) != 0 {
		t.Errorf("Startup check notified about a failed lookup: %v", *notified)
	}

	// Menu-triggered checks tell the user something went wrong.
	c.Check(context.Background(), true)
	if len(*notified) != 1 {
		t.Errorf("Expected 1 notification for an interactive failure, got %d", len(*notified))
	}
}

func TestCheckDevBuildNeverUpdates(t *testing.T) {
	c, notified := checkerWith("dev", "v99.0.0", nil)
	c.Check(context.Background(), false)

	if len(*notified) != 0 {
		t.Errorf("A dev build offered an update: %v", *notified)
	}
}
