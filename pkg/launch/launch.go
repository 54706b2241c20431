// Package launch starts the game client, either bare or connecting to a
// server via the unv:// URI scheme.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/gen2brain/beeep"
)

// ErrNoHandler reports that no mechanism to dispatch the launch exists on
// this system: neither a registered unv:// opener nor the game binary.
var ErrNoHandler = errors.New("no handler for unv:// URIs and no game binary found")

const gameBinary = "unvanquished"

// Request asks the launcher to start the game. An empty Address launches the
// client without connecting anywhere.
type Request struct {
	Address string
}

// Launcher consumes launch requests on its own goroutine so process spawning
// never runs on the tray loop. Launch failures are surfaced as a desktop
// notification, never as a crash.
type Launcher struct {
	logger   *slog.Logger
	requests chan Request

	// Injection points for tests.
	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
	notify   func(title, message string) error
}

// New creates a launcher. Run must be called to start consuming requests.
func New(logger *slog.Logger) *Launcher {
	return &Launcher{
		logger:   logger.With("component", "launch"),
		requests: make(chan Request, 4),
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Requests is the channel the tray presenter feeds.
func (l *Launcher) Requests() chan<- Request {
	return l.requests
}

// Run consumes launch requests until ctx is cancelled.
func (l *Launcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-l.requests:
			var err error
			if req.Address == "" {
				err = l.LaunchGame()
			} else {
				err = l.Launch(req.Address)
			}
			if err != nil {
				l.logger.Warn("Launch failed", "address", req.Address, "error", err)
				if nerr := l.notify("Unvanquished Tray", err.Error()); nerr != nil {
					l.logger.Debug("Notification failed", "error", nerr)
				}
			}
		}
	}
}

// Launch dispatches unv://<address> through the platform opener, falling back
// to the game binary with an explicit +connect.
func (l *Launcher) Launch(address string) error {
	uri := fmt.Sprintf("unv://%s", address)

	opener, args := platformOpener()
	if path, err := l.lookPath(opener); err == nil {
		if err := l.start(path, append(args, uri)...); err != nil {
			return fmt.Errorf("%w: %s failed: %v", ErrNoHandler, opener, err)
		}
		l.logger.Debug("Passed URI to opener", "uri", uri, "opener", opener)
		return nil
	}

	// No opener installed; talk to the game client directly.
	path, err := l.lookPath(gameBinary)
	if err != nil {
		return ErrNoHandler
	}
	if err := l.start(path, "+connect", uri); err != nil {
		return fmt.Errorf("%w: starting %s failed: %v", ErrNoHandler, gameBinary, err)
	}
	l.logger.Debug("Passed URI directly to game client", "uri", uri)
	return nil
}

// LaunchGame starts the game client without connecting to a server.
func (l *Launcher) LaunchGame() error {
	path, err := l.lookPath(gameBinary)
	if err != nil {
		return ErrNoHandler
	}
	if err := l.start(path); err != nil {
		return fmt.Errorf("%w: starting %s failed: %v", ErrNoHandler, gameBinary, err)
	}
	l.logger.Debug("Started game client")
	return nil
}

// platformOpener names the OS mechanism that dispatches registered URI
// schemes.
func platformOpener() (name string, args []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
