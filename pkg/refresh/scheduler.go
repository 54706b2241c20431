package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/Unvanquished/unvanquished-tray-browser/pkg/master"
)

// Fetcher produces server-list snapshots. Implemented by master.Client.
type Fetcher interface {
	FetchServers(ctx context.Context) (*master.Snapshot, error)
}

// Update is what the scheduler hands to the tray presenter. Snapshot is the
// latest known-good snapshot; BadgeUnknown is set once consecutive fetch
// failures cross the configured threshold.
type Update struct {
	Snapshot     *master.Snapshot
	Delta        Delta
	BadgeUnknown bool
}

// Config holds scheduler settings.
type Config struct {
	Interval         time.Duration
	FailureThreshold int // 0 disables the unknown badge
}

// Scheduler runs the fetch loop. All fetch activity happens on the single
// Run goroutine: timer ticks during an outstanding fetch are dropped and
// manual refresh requests join the in-flight fetch instead of starting a
// second one. The scheduler owns the one retained previous snapshot.
type Scheduler struct {
	config  Config
	fetcher Fetcher
	logger  *slog.Logger

	updates  chan Update
	manual   chan struct{}
	configCh chan Config

	// Loop-local state, touched only by Run.
	prev     *master.Snapshot
	failures int
	unknown  bool
	lastErr  string
}

// New creates a scheduler. Run must be called to start it.
func New(cfg Config, fetcher Fetcher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		config:   cfg,
		fetcher:  fetcher,
		logger:   logger.With("component", "refresh"),
		updates:  make(chan Update, 8),
		manual:   make(chan struct{}, 1),
		configCh: make(chan Config, 1),
	}
}

// Updates delivers tray state changes in the order they were decided.
func (s *Scheduler) Updates() <-chan Update {
	return s.updates
}

// RefreshNow requests an immediate fetch. If a fetch is already in flight
// the request subscribes to its result; it never issues a duplicate.
func (s *Scheduler) RefreshNow() {
	select {
	case s.manual <- struct{}{}:
	default: // a request is already queued
	}
}

// SetConfig applies new interval and threshold settings to a running loop.
func (s *Scheduler) SetConfig(cfg Config) {
	select {
	case s.configCh <- cfg:
	default:
		// A pending config is replaced by draining it first.
		select {
		case <-s.configCh:
		default:
		}
		s.configCh <- cfg
	}
}

type fetchResult struct {
	snapshot *master.Snapshot
	err      error
}

// Run executes the refresh loop until ctx is cancelled. An outstanding fetch
// is abandoned on shutdown; its goroutine finishes into a buffered channel.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	var inflight chan fetchResult

	start := func() {
		ch := make(chan fetchResult, 1)
		inflight = ch
		fctx, cancel := context.WithTimeout(ctx, s.config.Interval)
		go func() {
			defer cancel()
			snapshot, err := s.fetcher.FetchServers(fctx)
			ch <- fetchResult{snapshot: snapshot, err: err}
		}()
	}

	start() // populate the tray right away

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if inflight == nil {
				start()
			}
			// An outstanding fetch absorbs the tick.

		case <-s.manual:
			if inflight == nil {
				s.logger.Debug("Manual refresh requested")
				start()
			}

		case cfg := <-s.configCh:
			if cfg.Interval != s.config.Interval {
				ticker.Reset(cfg.Interval)
			}
			s.config = cfg
			s.logger.Info("Scheduler settings applied",
				"interval", cfg.Interval,
				"failure_threshold", cfg.FailureThreshold)

		case res := <-inflight:
			inflight = nil
			s.handleResult(ctx, res)
		}
	}
}

func (s *Scheduler) handleResult(ctx context.Context, res fetchResult) {
	if res.err != nil {
		s.handleFailure(ctx, res.err)
		return
	}

	s.failures = 0
	s.lastErr = ""

	wasUnknown := s.unknown
	s.unknown = false

	delta := Reconcile(s.prev, res.snapshot)
	if wasUnknown {
		// Coming back from the unknown badge always redraws it.
		delta.BadgeChanged = true
	}
	s.prev = res.snapshot

	if !delta.BadgeChanged && !delta.MenuChanged {
		return
	}

	s.logger.Debug("Publishing update",
		"servers", len(res.snapshot.Servers),
		"badge_changed", delta.BadgeChanged,
		"menu_changed", delta.MenuChanged)

	s.publish(ctx, Update{Snapshot: res.snapshot, Delta: delta})
}

func (s *Scheduler) handleFailure(ctx context.Context, err error) {
	s.failures++

	// Log new errors at Info, repeats at Debug.
	if msg := err.Error(); msg != s.lastErr {
		s.lastErr = msg
		s.logger.Info("Fetch failed, keeping last known state",
			"error", err, "consecutive_failures", s.failures)
	} else {
		s.logger.Debug("Fetch failed again", "error", err, "consecutive_failures", s.failures)
	}

	threshold := s.config.FailureThreshold
	if threshold <= 0 || s.failures < threshold || s.unknown {
		return
	}

	s.unknown = true
	s.logger.Warn("Consecutive fetch failures crossed threshold, marking badge unknown",
		"threshold", threshold)
	s.publish(ctx, Update{
		Snapshot:     s.prev,
		Delta:        Delta{BadgeChanged: true},
		BadgeUnknown: true,
	})
}

func (s *Scheduler) publish(ctx context.Context, u Update) {
	select {
	case s.updates <- u:
	case <-ctx.Done():
	}
}
