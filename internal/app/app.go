// Package app assembles the host bridge: configuration, logging, shell
// registration, the notification surface, the event dispatcher, transfer
// history, and the external core handle. Run owns the lifecycle end to end.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"dropgate/internal/config"
	"dropgate/internal/core"
	"dropgate/internal/dispatch"
	"dropgate/internal/eventbus"
	"dropgate/internal/history"
	"dropgate/internal/notifications"
	"dropgate/internal/runtime/supervisor"
	"dropgate/internal/shellreg"
	"dropgate/internal/storage"
	logx "dropgate/pkg/logx"
)

const shutdownTimeout = 10 * time.Second

// Options carries what the command line resolved.
type Options struct {
	ConfigPath string
	// Args are the positional overrides: [port] [mode].
	Args []string
}

// Run blocks until ctx is canceled (termination signal) or startup fails.
// Only core construction is fatal; every other subsystem degrades with a
// logged warning.
func Run(ctx context.Context, opts Options) error {
	mgr := config.NewManager(opts.ConfigPath)
	cfg, err := mgr.Parse()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	portOK := cfg.ApplyArgs(opts.Args)
	mgr.Commit(cfg)

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.ConsoleLogging(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logs.Close()
	mgr.SetLogger(log)

	if !portOK {
		log.Warn("invalid port argument ignored", logx.Int("port", cfg.Transfer.Port))
	}

	requestTimeout, err := config.ParseDurationOrDefault(
		"notifications.request_timeout", cfg.Notifications.RequestTimeout, config.DefaultRequestTimeout)
	if err != nil {
		return err
	}
	infoTimeout, err := config.ParseDurationOrDefault(
		"notifications.info_timeout", cfg.Notifications.InfoTimeout, config.DefaultInfoTimeout)
	if err != nil {
		return err
	}

	name := deviceName(cfg)
	root, err := storageRoot(cfg)
	if err != nil {
		return fmt.Errorf("storage root: %w", err)
	}
	mode := config.ParseMode(cfg.Transfer.Mode)
	log.Info("starting",
		logx.String("device", name),
		logx.String("storage", root),
		logx.Int("port", cfg.Transfer.Port),
		logx.String("mode", mode.String()))

	// Shell registration must precede the first notification so the server
	// can route by our identity. Best-effort.
	if path, changed, err := shellreg.Register(shellreg.Entry{
		Identity: cfg.Notifications.Identity,
		Name:     cfg.Notifications.AppName,
		Icon:     cfg.Notifications.Icon,
	}); err != nil {
		log.Warn("shell registration failed; notifications may not display", logx.Err(err))
	} else if changed {
		log.Debug("shell registration installed", logx.String("path", path))
	}

	notif := notifications.New(notifications.Config{
		Enabled:        cfg.NotificationsEnabled(),
		AppName:        cfg.Notifications.AppName,
		Identity:       cfg.Notifications.Identity,
		Icon:           cfg.Notifications.Icon,
		InfoTimeout:    infoTimeout,
		RequestTimeout: requestTimeout,
	}, log)
	notif.Initialize()

	store := openStore(cfg, log)

	bus := eventbus.New()
	sup := supervisor.New(ctx, supervisor.WithLogger(log))

	if store != nil {
		retention, err := config.ParseDurationOrDefault(
			"history.retention", historyRetention(cfg), config.DefaultRetention)
		if err != nil {
			return err
		}
		hist, err := history.New(history.Config{
			Retention:     retention,
			PruneSchedule: historySchedule(cfg),
		}, store, bus, log)
		if err != nil {
			return fmt.Errorf("history.prune_schedule: %w", err)
		}
		sup.Go("history", hist.Run)
	}

	disp := dispatch.New(log, notif, bus)

	handle, err := core.New(core.Config{
		StoragePath: root,
		Port:        cfg.Transfer.Port,
		Mode:        int(mode),
	}, log, disp.Handle)
	if err != nil {
		return fmt.Errorf("initialize transfer core: %w", err)
	}
	notif.SetResolver(handle)

	sup.GoRestart("notifications.listen", notif.Listen)
	if mgr.Path() != "" {
		sup.GoRestart("config.watch", mgr.Watch)
		sup.Go("config.apply", func(ctx context.Context) error {
			applyConfigUpdates(ctx, mgr, logs)
			return nil
		})
	}

	handle.StartService(cfg.Transfer.Port, name, cfg.Transfer.DevMode)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("ready")

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sup.Stop(stopCtx); err != nil {
		log.Warn("supervisor stop", logx.Err(err))
	}

	// Close order matters: pending prompts resolve through the core, so the
	// notification surface goes first and the handle last.
	if err := notif.Close(); err != nil {
		log.Warn("notifications close", logx.Err(err))
	}
	handle.Close()
	if store != nil {
		if err := store.Close(); err != nil {
			log.Warn("storage close", logx.Err(err))
		}
	}
	return nil
}

// openStore opens the configured history store; failures disable history
// rather than stopping the host.
func openStore(cfg *config.Config, log logx.Logger) storage.Store {
	if cfg.Storage == nil {
		return nil
	}
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	if err != nil {
		log.Warn("history disabled", logx.Err(err))
		return nil
	}
	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log)
	if err != nil {
		log.Warn("history disabled: storage open failed", logx.Err(err))
		return nil
	}
	return store
}

func historyRetention(cfg *config.Config) string {
	if cfg.History == nil {
		return ""
	}
	return cfg.History.Retention
}

func historySchedule(cfg *config.Config) string {
	if cfg.History == nil || cfg.History.PruneSchedule == "" {
		return config.DefaultPruneSchedule
	}
	return cfg.History.PruneSchedule
}

// applyConfigUpdates re-applies the logging section when the watched file
// changes. Everything else is startup-only.
func applyConfigUpdates(ctx context.Context, mgr *config.Manager, logs *logx.Service) {
	ch := mgr.Subscribe(4)
	defer mgr.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok {
				return
			}
			logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.ConsoleLogging(),
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
		}
	}
}
