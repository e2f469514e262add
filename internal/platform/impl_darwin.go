//go:build darwin

package platform

import "go.uber.org/zap"

// Global keyboard and mouse capture on macOS needs a CGEventTap, which is only
// reachable through cgo and the accessibility permission prompt.
func newPlatform(*zap.Logger) (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "darwin (input hooks require a CGEventTap)"}
}
