package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Mansoor88-6/code-activity-agent/internal/broadcast"
	"Mansoor88-6/code-activity-agent/internal/collector"
	"Mansoor88-6/code-activity-agent/internal/models"
	"Mansoor88-6/code-activity-agent/internal/session"
	"Mansoor88-6/code-activity-agent/internal/stats"
	"Mansoor88-6/code-activity-agent/internal/tracker"
	"Mansoor88-6/code-activity-agent/internal/watcher"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	storeTimeout  = 5 * time.Second
	maxRetryQueue = 10000
)

// FileEventSource delivers raw filesystem change notifications
type FileEventSource interface {
	Start() error
	Run(ctx context.Context, handle func(watcher.Notification) error) error
	Close() error
}

// InputHooks feeds OS input events into the input monitor
type InputHooks interface {
	Start() error
	Run(ctx context.Context) error
	Stop()
}

// EntryStore persists closed time entries
type EntryStore interface {
	InsertBatch(ctx context.Context, entries []models.TimeEntry) error
}

// Options are the tracking intervals of the service
type Options struct {
	FileTimeout   time.Duration
	SweepInterval time.Duration
	EventBuffer   int
}

// TrackingService wires the file and input streams into the session registry
// and routes closed sessions into daily stats and the entry store.
type TrackingService struct {
	files      FileEventSource
	hooks      InputHooks
	monitor    *tracker.InputMonitor
	events     *broadcast.Broadcaster[models.ActivityEvent]
	debouncer  *watcher.Debouncer
	classifier *watcher.Classifier
	registry   *session.Registry
	aggregator *stats.Aggregator
	collector  *collector.EntryCollector
	store      EntryStore
	opts       Options
	now        func() time.Time
	logger     *zap.Logger

	mu      sync.Mutex
	pending []models.TimeEntry // batches the store rejected, retried on every sweep
}

// NewTrackingService creates a new tracking service
func NewTrackingService(
	files FileEventSource,
	hooks InputHooks,
	monitor *tracker.InputMonitor,
	events *broadcast.Broadcaster[models.ActivityEvent],
	debouncer *watcher.Debouncer,
	classifier *watcher.Classifier,
	entryCollector *collector.EntryCollector,
	store EntryStore,
	opts Options,
	logger *zap.Logger,
) *TrackingService {
	if opts.EventBuffer < 1 {
		opts.EventBuffer = 100
	}

	ts := &TrackingService{
		files:      files,
		hooks:      hooks,
		monitor:    monitor,
		events:     events,
		debouncer:  debouncer,
		classifier: classifier,
		aggregator: stats.NewAggregator(),
		collector:  entryCollector,
		store:      store,
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
	ts.registry = session.NewRegistry(ts.onEntryClosed, logger)
	return ts
}

// Registry returns the live session registry
func (ts *TrackingService) Registry() *session.Registry {
	return ts.registry
}

// Aggregator returns the in-memory daily totals of this run
func (ts *TrackingService) Aggregator() *stats.Aggregator {
	return ts.aggregator
}

// Run tracks until ctx is cancelled or a subsystem fails. Live sessions are
// closed and pending entries flushed before it returns.
func (ts *TrackingService) Run(ctx context.Context) error {
	ts.logger.Info("Starting tracking service")

	// subscribe before any producer runs so no transition is missed
	sub := ts.events.Subscribe(ts.opts.EventBuffer)
	defer sub.Close()

	if err := ts.hooks.Start(); err != nil {
		return err
	}
	defer ts.hooks.Stop()

	if err := ts.files.Start(); err != nil {
		return err
	}
	defer func() {
		if err := ts.files.Close(); err != nil {
			ts.logger.Warn("Failed to close file watcher", zap.Error(err))
		}
	}()

	ts.collector.Start(ts.onBatchReady)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ts.hooks.Run(gctx) })
	g.Go(func() error { return ts.monitor.Run(gctx) })
	g.Go(func() error { return ts.files.Run(gctx, ts.handleNotification) })
	g.Go(func() error { return ts.consumeActivity(gctx, sub) })
	g.Go(func() error { return ts.maintain(gctx) })

	ts.logger.Info("Tracking service started")
	err := g.Wait()
	if err != nil {
		ts.logger.Error("Tracking stopped by subsystem failure", zap.Error(err))
	}

	ts.shutdown()
	return err
}

func (ts *TrackingService) shutdown() {
	ts.logger.Info("Stopping tracking service")

	if n, err := ts.registry.CloseAll(); err != nil {
		ts.logger.Error("Live sessions could not be closed", zap.Error(err))
	} else {
		ts.logger.Info("Closed live sessions", zap.Int("count", n))
	}

	ts.collector.Stop()
	ts.retryPending()

	ts.mu.Lock()
	lost := len(ts.pending)
	ts.mu.Unlock()
	if lost > 0 {
		ts.logger.Error("Entries could not be stored", zap.Int("count", lost))
	}

	if n := ts.events.Dropped(); n > 0 {
		ts.logger.Info("Activity events dropped by slow subscribers", zap.Uint64("count", n))
	}
	ts.logger.Info("Tracking service stopped")
}

// handleNotification routes a debounced file change into the registry
func (ts *TrackingService) handleNotification(n watcher.Notification) error {
	path, ok := ts.debouncer.Process(n)
	if !ok {
		return nil
	}

	language, project := ts.classifier.Classify(path)
	if _, err := ts.registry.OnFileEvent(path, language, project); err != nil {
		return fmt.Errorf("failed to record file event: %w", err)
	}
	return nil
}

// consumeActivity applies idle and resume transitions to the registry
func (ts *TrackingService) consumeActivity(ctx context.Context, sub *broadcast.Subscription[models.ActivityEvent]) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.C():
			if !ok {
				return nil
			}
			switch event.Kind {
			case models.KindIdleDetected:
				if _, err := ts.registry.OnIdleDetected(); err != nil {
					return fmt.Errorf("failed to pause sessions on idle: %w", err)
				}
			case models.KindActivityResumed:
				if err := ts.registry.OnActivityResumed(); err != nil {
					return fmt.Errorf("failed to handle activity resume: %w", err)
				}
			}
		}
	}
}

// maintain pauses stale sessions, prunes the debouncer, forgets cached projects,
// closes every session when the local date changes and retries entries the store rejected
func (ts *TrackingService) maintain(ctx context.Context) error {
	ticker := time.NewTicker(ts.opts.SweepInterval)
	defer ticker.Stop()

	day := stats.DateKey(ts.now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var err error
			day, err = ts.sweep(day)
			if err != nil {
				return err
			}
		}
	}
}

func (ts *TrackingService) sweep(day string) (string, error) {
	if _, err := ts.registry.PauseStale(ts.opts.FileTimeout); err != nil {
		return day, fmt.Errorf("failed to pause stale sessions: %w", err)
	}
	ts.debouncer.Prune(ts.opts.FileTimeout)
	ts.classifier.Reset()

	if today := stats.DateKey(ts.now()); today != day {
		n, err := ts.registry.CloseAll()
		if err != nil {
			return day, fmt.Errorf("failed to close sessions at day rollover: %w", err)
		}
		ts.logger.Info("Day rolled over", zap.String("from", day), zap.String("to", today), zap.Int("closed", n))
		ts.collector.Flush()
		day = today
	}

	ts.retryPending()
	return day, nil
}

// onEntryClosed is the registry sink; every closed entry arrives here exactly once
func (ts *TrackingService) onEntryClosed(entry models.TimeEntry) {
	ts.aggregator.AddEntry(entry)
	ts.collector.Add(entry)
}

func (ts *TrackingService) onBatchReady(entries []models.TimeEntry) {
	if len(entries) == 0 {
		return
	}

	if err := ts.insert(entries); err != nil {
		ts.logger.Warn("Failed to store entries, keeping them for retry",
			zap.Error(err),
			zap.Int("entry_count", len(entries)),
		)
		ts.keepPending(entries)
		return
	}
	ts.logger.Debug("Stored entries", zap.Int("entry_count", len(entries)))
}

func (ts *TrackingService) retryPending() {
	ts.mu.Lock()
	entries := ts.pending
	ts.pending = nil
	ts.mu.Unlock()

	if len(entries) == 0 {
		return
	}
	if err := ts.insert(entries); err != nil {
		ts.logger.Warn("Retry of pending entries failed", zap.Error(err), zap.Int("entry_count", len(entries)))
		ts.keepPending(entries)
		return
	}
	ts.logger.Info("Stored pending entries", zap.Int("entry_count", len(entries)))
}

func (ts *TrackingService) keepPending(entries []models.TimeEntry) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.pending = append(ts.pending, entries...)
	if over := len(ts.pending) - maxRetryQueue; over > 0 {
		ts.pending = ts.pending[over:]
		ts.logger.Error("Retry queue full, oldest entries dropped", zap.Int("count", over))
	}
}

func (ts *TrackingService) insert(entries []models.TimeEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	err := ts.store.InsertBatch(ctx, entries)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("store timed out after %s: %w", storeTimeout, err)
	}
	return err
}
