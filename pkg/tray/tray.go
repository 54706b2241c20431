// Package tray owns the system tray icon and context menu. All systray
// mutation happens on the single update goroutine, as most platform tray
// backends are not safe to touch from multiple goroutines.
package tray

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"fyne.io/systray"

	"github.com/Unvanquished/unvanquished-tray-browser/pkg/launch"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/master"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/refresh"
)

const (
	maxServerNameChars = 60
	maxMapNameChars    = 20
)

// Scheduler is the slice of the refresh loop the tray consumes.
type Scheduler interface {
	Updates() <-chan refresh.Update
	RefreshNow()
}

// Config holds the system tray configuration
type Config struct {
	Scheduler       Scheduler
	Launch          chan<- launch.Request
	Logger          *slog.Logger
	HighPlayerCount int // green badge at or above this
	MaxMenuServers  int
	CheckUpdates    func() // invoked from the menu, may be nil
	OnReady         func() // called when the tray is ready
	OnExit          func() // called when the tray is exiting
}

var globalConfig Config

// Run starts the system tray application (blocking call).
// This must be called from the main goroutine.
func Run(cfg Config) {
	globalConfig = cfg
	SetHighPlayerCount(cfg.HighPlayerCount)
	systray.Run(onReady, onExit)
}

// The badge-color threshold is reloadable at runtime; the slot pool is not,
// since systray menu items cannot be removed once added.
var (
	settingsMu      sync.RWMutex
	highPlayerCount int
)

// SetHighPlayerCount applies a new badge-color threshold. It takes effect at
// the next badge render.
func SetHighPlayerCount(count int) {
	settingsMu.Lock()
	highPlayerCount = count
	settingsMu.Unlock()
}

// badgeIcon renders the count badge with the current threshold.
func badgeIcon(players int) ([]byte, error) {
	settingsMu.RLock()
	count := highPlayerCount
	settingsMu.RUnlock()
	return CountIcon(players, count)
}

// Pre-allocated server menu slots. fyne.io/systray cannot remove menu items,
// so slots are created once and shown, hidden, and retitled as the server
// list changes.
var (
	serverSlots   []*systray.MenuItem
	noServersItem *systray.MenuItem

	// Maps slot index to the server address launched on click.
	slotMu    sync.RWMutex
	slotAddrs []string
)

// onReady is called when the system tray is ready
func onReady() {
	cfg := globalConfig

	systray.SetIcon(PlainIcon())
	systray.SetTitle("Unvanquished Tray")
	systray.SetTooltip("Unvanquished Tray: waiting for server list")

	cfg.Logger.Info("System tray initialized")

	serverSlots = make([]*systray.MenuItem, cfg.MaxMenuServers)
	slotAddrs = make([]string, cfg.MaxMenuServers)
	for i := range serverSlots {
		serverSlots[i] = systray.AddMenuItem("", "Connect to this server")
		serverSlots[i].Hide()
	}

	noServersItem = systray.AddMenuItem("No servers", "")
	noServersItem.Disable()

	systray.AddSeparator()
	mRefresh := systray.AddMenuItem("Refresh now", "Query the master server immediately")
	mLaunch := systray.AddMenuItem("Launch Unvanquished", "Start the game without connecting")
	mUpdates := systray.AddMenuItem("Check for updates", "Look for a newer release")
	if cfg.CheckUpdates == nil {
		mUpdates.Hide()
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	if cfg.OnReady != nil {
		go cfg.OnReady()
	}

	// Server slot clicks only enqueue a launch request, so they may run off
	// the update goroutine.
	for i := range serverSlots {
		go func(i int) {
			for range serverSlots[i].ClickedCh {
				connectSlot(cfg, i)
			}
		}(i)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		cfg.Logger.Info("Received shutdown signal, exiting")
		systray.Quit()
	}()

	// Single goroutine applying scheduler updates and static menu clicks,
	// serializing every icon and menu mutation.
	go func() {
		for {
			select {
			case update, ok := <-cfg.Scheduler.Updates():
				if !ok {
					return
				}
				applyUpdate(cfg, update)

			case <-mRefresh.ClickedCh:
				cfg.Logger.Debug("Manual refresh requested from menu")
				cfg.Scheduler.RefreshNow()

			case <-mLaunch.ClickedCh:
				cfg.Launch <- launch.Request{}

			case <-mUpdates.ClickedCh:
				if cfg.CheckUpdates != nil {
					cfg.CheckUpdates()
				}

			case <-mQuit.ClickedCh:
				cfg.Logger.Info("Exit requested from system tray")
				systray.Quit()
			}
		}
	}()
}

// onExit is called when the system tray is exiting
func onExit() {
	cfg := globalConfig
	cfg.Logger.Info("System tray exiting")
	if cfg.OnExit != nil {
		cfg.OnExit()
	}
}

// connectSlot enqueues a launch request for the server shown in slot i.
func connectSlot(cfg Config, i int) {
	slotMu.RLock()
	addr := slotAddrs[i]
	slotMu.RUnlock()
	if addr == "" {
		return
	}
	cfg.Logger.Info("Connect requested from menu", "address", addr)
	cfg.Launch <- launch.Request{Address: addr}
}

// applyUpdate redraws the parts of the tray the scheduler flagged as changed.
func applyUpdate(cfg Config, update refresh.Update) {
	if update.BadgeUnknown {
		setIcon(cfg, UnknownIcon)
		systray.SetTooltip("Unvanquished Tray: master server unreachable")
		return
	}

	snapshot := update.Snapshot
	if update.Delta.BadgeChanged {
		players := snapshot.MaxPlaying()
		setIcon(cfg, func() ([]byte, error) {
			return badgeIcon(players)
		})
	}
	if update.Delta.MenuChanged {
		rebuildMenu(snapshot.Servers)
	}

	systray.SetTooltip(statusTooltip(snapshot.Servers))
}

func setIcon(cfg Config, render func() ([]byte, error)) {
	data, err := render()
	if err != nil {
		// Keep the previous icon; the menu still reflects the update.
		cfg.Logger.Error("Failed to render tray icon", "error", err)
		return
	}
	systray.SetIcon(data)
}

// rebuildMenu retitles the slot pool to match the snapshot order. The
// top-ranked server occupies the first slot.
func rebuildMenu(servers []master.ServerRecord) {
	slotMu.Lock()
	defer slotMu.Unlock()

	for i, item := range serverSlots {
		if i < len(servers) {
			item.SetTitle(entryTitle(servers[i]))
			slotAddrs[i] = servers[i].Address
			item.Show()
		} else {
			slotAddrs[i] = ""
			item.Hide()
		}
	}

	if len(servers) == 0 {
		noServersItem.Show()
	} else {
		noServersItem.Hide()
	}
}

// entryTitle formats one server menu entry, e.g.
// "4+1 on Unlimited Potential (plat23, 56 ms)".
func entryTitle(rec master.ServerRecord) string {
	return fmt.Sprintf("%d+%d on %s (%s, %d ms)",
		rec.NumPlaying,
		rec.NumSpectating,
		master.Truncate(rec.Name, maxServerNameChars),
		master.Truncate(rec.Map, maxMapNameChars),
		rec.Ping.Milliseconds())
}

// statusTooltip summarizes the snapshot for the icon tooltip.
func statusTooltip(servers []master.ServerRecord) string {
	return fmt.Sprintf("Unvanquished: %d playing on %d servers",
		totalPlaying(servers), len(servers))
}

func totalPlaying(servers []master.ServerRecord) int {
	total := 0
	for _, rec := range servers {
		total += rec.NumPlaying
	}
	return total
}
