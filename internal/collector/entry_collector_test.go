package collector

import (
	"sync"
	"testing"
	"time"

	"Mansoor88-6/code-activity-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type batches struct {
	mu  sync.Mutex
	got [][]models.TimeEntry
}

func (b *batches) add(batch []models.TimeEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.got = append(b.got, batch)
}

func (b *batches) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.got)
}

func entry(path string) models.TimeEntry {
	return models.TimeEntry{ID: path, Path: path, Language: "Go", Duration: time.Second}
}

func TestEntryCollector_FlushesAtBatchSize(t *testing.T) {
	b := &batches{}
	ec := NewEntryCollector(2, time.Hour, zap.NewNop())
	ec.Start(b.add)
	defer ec.Stop()

	ec.Add(entry("a.go"))
	assert.Equal(t, 1, ec.GetPendingCount())
	assert.Zero(t, b.len())

	ec.Add(entry("b.go"))
	assert.Zero(t, ec.GetPendingCount())
	require.Equal(t, 1, b.len())
	assert.Len(t, b.got[0], 2)
}

func TestEntryCollector_StopFlushesPending(t *testing.T) {
	b := &batches{}
	ec := NewEntryCollector(10, time.Hour, zap.NewNop())
	ec.Start(b.add)

	ec.Add(entry("a.go"))
	ec.Stop()
	ec.Stop()

	require.Equal(t, 1, b.len())
	assert.Equal(t, "a.go", b.got[0][0].Path)
}

func TestEntryCollector_IntervalFlush(t *testing.T) {
	b := &batches{}
	ec := NewEntryCollector(100, 10*time.Millisecond, zap.NewNop())
	ec.Start(b.add)
	defer ec.Stop()

	ec.Add(entry("a.go"))
	assert.Eventually(t, func() bool { return b.len() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestEntryCollector_FlushEmptyIsNoop(t *testing.T) {
	b := &batches{}
	ec := NewEntryCollector(5, time.Hour, zap.NewNop())
	ec.Start(b.add)
	defer ec.Stop()

	ec.Flush()
	assert.Zero(t, b.len())
}
