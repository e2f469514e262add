package platform

import "go.uber.org/zap"

// NewPlatform creates the implementation for the OS the binary was built for
func NewPlatform(logger *zap.Logger) (Platform, error) {
	return newPlatform(logger)
}

// UnsupportedPlatformError represents an error for unsupported platforms
type UnsupportedPlatformError struct {
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return "unsupported platform: " + e.OS
}
