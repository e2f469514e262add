//go:build !windows && !darwin && !linux

package platform

import (
	"runtime"

	"go.uber.org/zap"
)

func newPlatform(*zap.Logger) (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: runtime.GOOS}
}
