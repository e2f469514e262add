package tracker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"Mansoor88-6/code-activity-agent/internal/platform"

	"go.uber.org/zap"
)

// dropLogInterval limits how often a full queue is logged from the hook thread
const dropLogInterval = 10 * time.Second

// HookAdapter decouples the OS input hook from the monitor: host callbacks only
// enqueue, and Run drains the queue into the InputMonitor on its own goroutine.
type HookAdapter struct {
	source  platform.InputSource
	monitor *InputMonitor
	queue   chan platform.ActivityEvent
	dropped atomic.Uint64
	// unix nanos of the last drop warning
	lastDropLog atomic.Int64
	now         func() time.Time
	logger      *zap.Logger
}

// NewHookAdapter creates an adapter with a queue of the given size
func NewHookAdapter(source platform.InputSource, monitor *InputMonitor, buffer int, logger *zap.Logger) *HookAdapter {
	if buffer < 1 {
		buffer = 1
	}
	return &HookAdapter{
		source:  source,
		monitor: monitor,
		queue:   make(chan platform.ActivityEvent, buffer),
		now:     time.Now,
		logger:  logger,
	}
}

// Start registers the OS hooks. A failure here is fatal for input monitoring.
func (a *HookAdapter) Start() error {
	if err := a.source.StartActivityMonitoring(a.enqueue); err != nil {
		return fmt.Errorf("failed to register input hooks: %w", err)
	}
	a.logger.Info("Input hooks registered", zap.Int("queue_size", cap(a.queue)))
	return nil
}

// Stop removes the OS hooks
func (a *HookAdapter) Stop() {
	if err := a.source.StopActivityMonitoring(); err != nil {
		a.logger.Warn("Failed to remove input hooks", zap.Error(err))
	}
	if n := a.dropped.Load(); n > 0 {
		a.logger.Info("Input events dropped while queue was full", zap.Uint64("count", n))
	}
}

// Run forwards queued input to the monitor until ctx is cancelled.
// It returns an error only when the monitor's state has been poisoned.
func (a *HookAdapter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-a.queue:
			kind := InputMouse
			if event.Type.IsKeyboard() {
				kind = InputKeyboard
			}
			if err := a.monitor.HandleInput(kind, event.Timestamp); err != nil {
				return fmt.Errorf("failed to handle %s input: %w", event.Type, err)
			}
		}
	}
}

// Dropped returns how many input events were discarded because the queue was full
func (a *HookAdapter) Dropped() uint64 {
	return a.dropped.Load()
}

// enqueue runs on the host hook thread and never blocks it
func (a *HookAdapter) enqueue(event platform.ActivityEvent) {
	select {
	case a.queue <- event:
	default:
		total := a.dropped.Add(1)
		a.logDrop(total)
	}
}

// logDrop warns at most once per dropLogInterval, whichever hook thread gets there first
func (a *HookAdapter) logDrop(total uint64) {
	now := a.now().UnixNano()
	last := a.lastDropLog.Load()
	if last != 0 && now-last < int64(dropLogInterval) {
		return
	}
	if !a.lastDropLog.CompareAndSwap(last, now) {
		return
	}
	a.logger.Warn("Input queue full, dropping input events",
		zap.Uint64("dropped_total", total),
		zap.Int("queue_size", cap(a.queue)),
	)
}
