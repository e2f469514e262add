package models

import "time"

// ActivityKind identifies a semantic input transition
type ActivityKind string

const (
	KindKeyboardActivity ActivityKind = "keyboard_activity"
	KindMouseActivity    ActivityKind = "mouse_activity"
	KindIdleDetected     ActivityKind = "idle_detected"
	KindActivityResumed  ActivityKind = "activity_resumed"
)

// ActivityEvent is emitted by the input monitor on every input and idle transition.
// Timestamp is set for keyboard and mouse activity, IdleFor for IdleDetected.
type ActivityEvent struct {
	Kind      ActivityKind  `json:"kind"`
	Timestamp time.Time     `json:"timestamp,omitempty"`
	IdleFor   time.Duration `json:"idle_for,omitempty"`
}

func KeyboardActivity(t time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindKeyboardActivity, Timestamp: t}
}

func MouseActivity(t time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindMouseActivity, Timestamp: t}
}

func IdleDetected(idleFor time.Duration) ActivityEvent {
	return ActivityEvent{Kind: KindIdleDetected, IdleFor: idleFor}
}

func ActivityResumed() ActivityEvent {
	return ActivityEvent{Kind: KindActivityResumed}
}
