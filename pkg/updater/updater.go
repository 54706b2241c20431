// Package updater checks the public GitHub releases of this project for a
// newer version. Checks are best-effort: failures are logged and never
// interrupt the application.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/go-github/v69/github"
	"golang.org/x/mod/semver"
)

const (
	repoOwner    = "Unvanquished"
	repoName     = "unvanquished-tray-browser"
	checkTimeout = 15 * time.Second
)

// Checker queries the GitHub releases API. The releases of this repository
// are public, so the client is anonymous.
type Checker struct {
	version string
	logger  *slog.Logger

	// Injection points for tests.
	latestRelease func(ctx context.Context) (tag, url string, err error)
	notify        func(title, message string) error
}

// New creates a release checker for the given running version.
func New(version string, logger *slog.Logger) *Checker {
	client := github.NewClient(nil)
	return &Checker{
		version: version,
		logger:  logger.With("component", "updater"),
		latestRelease: func(ctx context.Context) (string, string, error) {
			release, _, err := client.Repositories.GetLatestRelease(ctx, repoOwner, repoName)
			if err != nil {
				return "", "", err
			}
			return release.GetTagName(), release.GetHTMLURL(), nil
		},
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Check looks for a newer release and notifies the user when one exists.
// When interactive (a menu-triggered check), an up-to-date result is also
// notified; the silent startup check only speaks up about new versions.
func (c *Checker) Check(ctx context.Context, interactive bool) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	tag, url, err := c.latestRelease(ctx)
	if err != nil {
		c.logger.Warn("Release check failed", "error", err)
		if interactive {
			c.sendNotification("Could not check for updates.")
		}
		return
	}

	if !NewerVersion(c.version, tag) {
		c.logger.Debug("Running the latest version", "version", c.version, "latest", tag)
		if interactive {
			c.sendNotification(fmt.Sprintf("You are running the latest version (%s).", c.version))
		}
		return
	}

	c.logger.Info("Newer release available", "running", c.version, "latest", tag)
	c.sendNotification(fmt.Sprintf("Version %s is available: %s", strings.TrimPrefix(tag, "v"), url))
}

func (c *Checker) sendNotification(message string) {
	if err := c.notify("Unvanquished Tray", message); err != nil {
		c.logger.Debug("Notification failed", "error", err)
	}
}

// NewerVersion reports whether latest is a strictly newer semantic version
// than running. Non-semver versions (e.g. the "dev" placeholder of local
// builds) never trigger an update.
func NewerVersion(running, latest string) bool {
	running = canonical(running)
	latest = canonical(latest)
	if !semver.IsValid(running) || !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(latest, running) > 0
}

func canonical(v string) string {
	if v == "" {
		return v
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
