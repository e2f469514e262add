package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Mansoor88-6/code-activity-agent/internal/broadcast"
	"Mansoor88-6/code-activity-agent/internal/collector"
	"Mansoor88-6/code-activity-agent/internal/config"
	"Mansoor88-6/code-activity-agent/internal/database"
	"Mansoor88-6/code-activity-agent/internal/logger"
	"Mansoor88-6/code-activity-agent/internal/models"
	"Mansoor88-6/code-activity-agent/internal/platform"
	"Mansoor88-6/code-activity-agent/internal/repository"
	"Mansoor88-6/code-activity-agent/internal/service"
	"Mansoor88-6/code-activity-agent/internal/stats"
	"Mansoor88-6/code-activity-agent/internal/tracker"
	"Mansoor88-6/code-activity-agent/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the tracking agent until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runAgent(cmd, configPath)
		},
	}
}

func runAgent(cmd *cobra.Command, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting activity agent",
		zap.String("env", cfg.Env),
		zap.String("config_path", configPath),
		zap.Strings("watch_paths", cfg.Watch.Paths),
	)

	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	platformInstance, err := platform.NewPlatform(log.Logger)
	if err != nil {
		log.Error("Failed to initialize platform", zap.Error(err))
		return err
	}
	if info, err := platformInstance.GetSystemInfo(); err == nil {
		log.Info("Platform detected",
			zap.String("os", info.OS),
			zap.String("os_version", info.OSVersion),
			zap.String("arch", info.Arch),
			zap.String("hostname", info.Hostname),
		)
	}

	events := broadcast.New[models.ActivityEvent](log.Logger)
	defer events.Close()

	monitor := tracker.NewInputMonitor(
		tracker.NewSharedState(),
		events,
		time.Duration(cfg.Tracking.IdleThreshold)*time.Second,
		time.Duration(cfg.Tracking.IdleCheckInterval)*time.Second,
		log.Logger,
	)
	hooks := tracker.NewHookAdapter(platformInstance, monitor, cfg.Tracking.InputBuffer, log.Logger)

	debouncer := watcher.NewDebouncer(
		time.Duration(cfg.Watch.DebounceMS)*time.Millisecond,
		cfg.Watch.Extensions,
		cfg.Watch.IgnorePatterns,
	)
	fsWatcher := watcher.NewFSWatcher(cfg.Watch.Paths, debouncer.IsIgnored, log.Logger)

	entryCollector := collector.NewEntryCollector(
		cfg.Collector.BatchSize,
		time.Duration(cfg.Collector.FlushInterval)*time.Second,
		log.Logger,
	)

	trackingService := service.NewTrackingService(
		fsWatcher,
		hooks,
		monitor,
		events,
		debouncer,
		watcher.NewClassifier(),
		entryCollector,
		repository.NewTimeEntryRepository(db.DB),
		service.Options{
			FileTimeout:   time.Duration(cfg.Tracking.FileTimeout) * time.Second,
			SweepInterval: time.Duration(cfg.Tracking.SweepInterval) * time.Second,
			EventBuffer:   cfg.Tracking.EventBuffer,
		},
		log.Logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := trackingService.Run(ctx)

	today := trackingService.Aggregator().Day(stats.DateKey(time.Now()))
	log.Info("Activity agent stopped",
		zap.Duration("tracked_today", today.TotalTime),
		zap.Int("languages", len(today.ByLanguage)),
	)
	return runErr
}
