package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/Unvanquished/unvanquished-tray-browser/pkg/config"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/launch"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/logger"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/master"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/refresh"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/tray"
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/updater"
)

// Version information (set by GoReleaser during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.Command{
		Name:    "unvtray",
		Usage:   "A minimalistic Unvanquished server browser living in the system tray",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.BoolFlag{
				Name:  "oneshot",
				Usage: "Query the master server once, print the server list and exit",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath()
	}

	// An explicitly requested config file must exist; the default location
	// may be absent, in which case the built-in defaults apply.
	cfg, err := config.LoadFromFile(configPath, explicit)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Setup(cfg.Logging)

	masterClient := master.NewClient(master.Config{
		Host:       cfg.Master.Host,
		Port:       cfg.Master.Port,
		Protocol:   cfg.Master.Protocol,
		MaxServers: cfg.Master.MaxServers,
		Timeout:    cfg.Master.Timeout(),
	}, log)

	if cmd.Bool("oneshot") {
		return oneshot(ctx, masterClient)
	}

	log.Info("Starting Unvanquished Tray",
		"version", version,
		"commit", commit,
		"built", date)
	log.Info("Configuration loaded",
		"config_file", configPath,
		"master", cfg.Master.Host,
		"interval", cfg.Refresh.Interval())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := refresh.New(refresh.Config{
		Interval:         cfg.Refresh.Interval(),
		FailureThreshold: cfg.Refresh.Threshold(),
	}, masterClient, log)

	launcher := launch.New(log)
	checker := updater.New(version, log)

	go scheduler.Run(ctx)
	go launcher.Run(ctx)

	if cfg.Updates.CheckUpdatesOnStartup() {
		go checker.Check(ctx, false)
	}

	// Live-reload tunables when a config file is present.
	if _, err := os.Stat(configPath); err == nil {
		go func() {
			err := config.Watch(ctx, configPath, log, func(next *config.Config) {
				scheduler.SetConfig(refresh.Config{
					Interval:         next.Refresh.Interval(),
					FailureThreshold: next.Refresh.Threshold(),
				})
				tray.SetHighPlayerCount(next.Tray.HighPlayerCount)
			})
			if err != nil {
				log.Warn("Config watcher unavailable", "error", err)
			}
		}()
	}

	// Blocks until the tray exits; everything else stops via ctx.
	tray.Run(tray.Config{
		Scheduler:       scheduler,
		Launch:          launcher.Requests(),
		Logger:          log,
		HighPlayerCount: cfg.Tray.HighPlayerCount,
		MaxMenuServers:  cfg.Tray.MaxMenuServers,
		CheckUpdates: func() {
			go checker.Check(ctx, true)
		},
		OnExit: cancel,
	})

	log.Info("Shutdown complete")
	return nil
}

// oneshot prints the current server list to stdout, mostly useful for
// debugging connectivity without a desktop session.
func oneshot(ctx context.Context, client *master.Client) error {
	snapshot, err := client.FetchServers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch server list: %w", err)
	}

	for _, rec := range snapshot.Servers {
		fmt.Printf("%21s | %4d ms | %2d+%d players | %3d bots | %-20s | %s\n",
			rec.Address,
			rec.Ping.Milliseconds(),
			rec.NumPlaying,
			rec.NumSpectating,
			rec.NumBots,
			master.Truncate(rec.Map, 20),
			rec.Name)
	}
	return nil
}

// defaultConfigPath is the conventional per-user location, e.g.
// ~/.config/unvtray/config.yaml on Linux.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "unvtray", "config.yaml")
}
