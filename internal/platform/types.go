package platform

import "time"

// InputSource is an OS input hook. The callback runs on the host's hook thread and
// must return quickly.
type InputSource interface {
	// StartActivityMonitoring registers the keyboard and mouse hooks.
	// A registration failure is returned and nothing is delivered.
	StartActivityMonitoring(callback func(ActivityEvent)) error

	// StopActivityMonitoring removes the hooks; no callback runs after it returns
	StopActivityMonitoring() error
}

// Platform is the OS integration the agent runs on
type Platform interface {
	InputSource

	// GetSystemInfo returns system information
	GetSystemInfo() (*SystemInfo, error)
}

// ActivityEvent represents a raw user input occurrence
type ActivityEvent struct {
	Type      ActivityType
	Timestamp time.Time
}

// ActivityType represents the type of activity
type ActivityType string

const (
	ActivityMouseMove   ActivityType = "mouse_move"
	ActivityMouseClick  ActivityType = "mouse_click"
	ActivityMouseScroll ActivityType = "mouse_scroll"
	ActivityKeyPress    ActivityType = "key_press"
)

// IsKeyboard reports whether the activity came from a keyboard
func (t ActivityType) IsKeyboard() bool {
	return t == ActivityKeyPress
}

// SystemInfo contains system information
type SystemInfo struct {
	OS        string
	OSVersion string
	Arch      string
	Hostname  string
}
