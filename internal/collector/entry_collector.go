package collector

import (
	"sync"
	"time"

	"Mansoor88-6/code-activity-agent/internal/models"

	"go.uber.org/zap"
)

// EntryCollector batches closed time entries before they are persisted.
// A batch is handed over when it reaches batchSize, on every flush interval, and on Stop.
type EntryCollector struct {
	entries       []models.TimeEntry
	batchSize     int
	flushInterval time.Duration
	onBatchReady  func([]models.TimeEntry)
	logger        *zap.Logger
	mu            sync.Mutex
	stopChan      chan struct{}
	stopped       bool
	wg            sync.WaitGroup
}

// NewEntryCollector creates a new entry collector
func NewEntryCollector(
	batchSize int,
	flushInterval time.Duration,
	logger *zap.Logger,
) *EntryCollector {
	if batchSize < 1 {
		batchSize = 1
	}
	return &EntryCollector{
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the collector with auto-flush
func (ec *EntryCollector) Start(onBatchReady func([]models.TimeEntry)) {
	ec.mu.Lock()
	ec.onBatchReady = onBatchReady
	ec.mu.Unlock()

	if ec.flushInterval > 0 {
		ec.wg.Add(1)
		go ec.autoFlushLoop()
	}

	ec.logger.Info("Entry collector started",
		zap.Int("batch_size", ec.batchSize),
		zap.Duration("flush_interval", ec.flushInterval),
	)
}

// Stop stops the auto-flush loop and hands over whatever is still pending
func (ec *EntryCollector) Stop() {
	ec.mu.Lock()
	if ec.stopped {
		ec.mu.Unlock()
		return
	}
	ec.stopped = true
	close(ec.stopChan)
	ec.mu.Unlock()

	ec.wg.Wait()
	ec.Flush()

	ec.logger.Info("Entry collector stopped")
}

// Add queues a closed entry
func (ec *EntryCollector) Add(entry models.TimeEntry) {
	ec.mu.Lock()
	ec.entries = append(ec.entries, entry)
	var batch []models.TimeEntry
	if len(ec.entries) >= ec.batchSize {
		batch = ec.take()
	}
	handler := ec.onBatchReady
	ec.mu.Unlock()

	if batch != nil {
		ec.logger.Debug("Batch size reached, flushing entries", zap.Int("count", len(batch)))
		ec.deliver(handler, batch)
	}
}

// Flush hands over all pending entries
func (ec *EntryCollector) Flush() {
	ec.mu.Lock()
	if len(ec.entries) == 0 {
		ec.mu.Unlock()
		return
	}
	batch := ec.take()
	handler := ec.onBatchReady
	ec.mu.Unlock()

	ec.logger.Debug("Flushing entries", zap.Int("count", len(batch)))
	ec.deliver(handler, batch)
}

// GetPendingCount returns the number of pending entries
func (ec *EntryCollector) GetPendingCount() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return len(ec.entries)
}

func (ec *EntryCollector) autoFlushLoop() {
	defer ec.wg.Done()

	ticker := time.NewTicker(ec.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ec.Flush()
		case <-ec.stopChan:
			return
		}
	}
}

// take must be called with mu held
func (ec *EntryCollector) take() []models.TimeEntry {
	batch := make([]models.TimeEntry, len(ec.entries))
	copy(batch, ec.entries)
	ec.entries = ec.entries[:0]
	return batch
}

func (ec *EntryCollector) deliver(handler func([]models.TimeEntry), batch []models.TimeEntry) {
	if handler == nil {
		ec.logger.Warn("Entries dropped, collector not started", zap.Int("count", len(batch)))
		return
	}
	handler(batch)
}
