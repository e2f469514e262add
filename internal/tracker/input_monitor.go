package tracker

import (
	"context"
	"time"

	"Mansoor88-6/code-activity-agent/internal/broadcast"
	"Mansoor88-6/code-activity-agent/internal/models"

	"go.uber.org/zap"
)

// DefaultIdleThreshold is how long without input before the user counts as idle
const DefaultIdleThreshold = 20 * time.Second

// InputKind is the device an input came from
type InputKind int

const (
	InputKeyboard InputKind = iota
	InputMouse
)

// InputMonitor turns input occurrences into ActivityEvents and detects idleness.
// Events are published while the state lock is held, so every subscriber sees
// them in transition order: ActivityResumed always precedes the input that caused it.
type InputMonitor struct {
	state         *SharedState
	events        broadcast.Publisher[models.ActivityEvent]
	idleThreshold time.Duration
	checkInterval time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

// NewInputMonitor creates a monitor mutating state and publishing on events
func NewInputMonitor(
	state *SharedState,
	events broadcast.Publisher[models.ActivityEvent],
	idleThreshold time.Duration,
	checkInterval time.Duration,
	logger *zap.Logger,
) *InputMonitor {
	if idleThreshold <= 0 {
		idleThreshold = DefaultIdleThreshold
	}
	return &InputMonitor{
		state:         state,
		events:        events,
		idleThreshold: idleThreshold,
		checkInterval: checkInterval,
		now:           time.Now,
		logger:        logger,
	}
}

// HandleKeyboard records a keyboard input happening now
func (m *InputMonitor) HandleKeyboard() error {
	return m.HandleInput(InputKeyboard, m.now())
}

// HandleMouse records a mouse input happening now
func (m *InputMonitor) HandleMouse() error {
	return m.HandleInput(InputMouse, m.now())
}

// HandleInput records an input at ts (now when zero). LastActivity never moves
// backwards. Leaving the idle state publishes ActivityResumed before the activity event itself.
func (m *InputMonitor) HandleInput(kind InputKind, ts time.Time) error {
	if ts.IsZero() {
		ts = m.now()
	}

	return m.state.update(func(st *ActivityState) {
		// device readers run concurrently, so inputs can arrive slightly out of order
		if ts.After(st.LastActivity) {
			st.LastActivity = ts
		}

		if st.Idle {
			st.Idle = false
			m.logger.Debug("Activity resumed")
			m.publish(models.ActivityResumed())
		}

		if kind == InputKeyboard {
			m.publish(models.KeyboardActivity(ts))
		} else {
			m.publish(models.MouseActivity(ts))
		}
	})
}

// CheckIdle performs one idle check and reports whether it switched to idle.
// Without any recorded input the user is never considered idle.
func (m *InputMonitor) CheckIdle() (bool, error) {
	became := false
	err := m.state.update(func(st *ActivityState) {
		if st.Idle {
			return
		}
		elapsed, ok := st.TimeSinceLastActivity(m.now())
		if !ok || elapsed < m.idleThreshold {
			return
		}

		st.Idle = true
		became = true
		m.logger.Info("Idle detected", zap.Duration("idle_for", elapsed))
		m.publish(models.IdleDetected(elapsed))
	})
	return became, err
}

// Run performs idle checks every check interval until ctx is cancelled.
// It returns an error only when the activity state has been poisoned.
func (m *InputMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	m.logger.Info("Idle monitor started",
		zap.Duration("idle_threshold", m.idleThreshold),
		zap.Duration("check_interval", m.checkInterval),
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Idle monitor stopped")
			return nil
		case <-ticker.C:
			if _, err := m.CheckIdle(); err != nil {
				return err
			}
		}
	}
}

// State returns a snapshot of the activity state
func (m *InputMonitor) State() (ActivityState, error) {
	return m.state.Snapshot()
}

func (m *InputMonitor) publish(event models.ActivityEvent) {
	if m.events.Publish(event) == 0 {
		m.logger.Debug("Activity event not delivered", zap.String("kind", string(event.Kind)))
	}
}
