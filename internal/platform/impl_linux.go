//go:build linux

package platform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// evdev event types and codes from linux/input-event-codes.h
const (
	evKey      = 0x01
	evRel      = 0x02
	evAbs      = 0x03
	relHWheel  = 0x06
	relWheel   = 0x08
	btnMouse   = 0x110
	btnJoy     = 0x120
	keyPressed = 1
)

// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; }
var (
	timevalSize    = int(unsafe.Sizeof(unix.Timeval{}))
	inputEventSize = timevalSize + 8
)

// linuxImpl reads raw events from /dev/input/event* devices. The process needs
// read access to them, usually via membership in the "input" group.
type linuxImpl struct {
	mu       sync.Mutex
	devices  []*os.File
	callback func(ActivityEvent)
	wg       sync.WaitGroup
	live     atomic.Int32
	glob     string
	logger   *zap.Logger
}

func newPlatform(logger *zap.Logger) (Platform, error) {
	return &linuxImpl{glob: "/dev/input/event*", logger: logger}, nil
}

func (p *linuxImpl) StartActivityMonitoring(callback func(ActivityEvent)) error {
	paths, err := filepath.Glob(p.glob)
	if err != nil {
		return fmt.Errorf("failed to list input devices: %w", err)
	}

	var devices []*os.File
	var openErr error
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			openErr = errors.Join(openErr, err)
			continue
		}
		devices = append(devices, f)
	}
	if len(devices) == 0 {
		if openErr == nil {
			openErr = errors.New("no devices found")
		}
		return fmt.Errorf("failed to open any input device matching %s: %w", p.glob, openErr)
	}

	p.mu.Lock()
	p.callback = callback
	p.devices = devices
	p.mu.Unlock()

	p.live.Store(int32(len(devices)))
	for _, f := range devices {
		p.wg.Add(1)
		go p.readLoop(f)
	}
	p.logger.Info("Input devices opened", zap.Int("count", len(devices)))
	return nil
}

func (p *linuxImpl) StopActivityMonitoring() error {
	p.mu.Lock()
	devices := p.devices
	p.devices = nil
	p.callback = nil
	p.mu.Unlock()

	// closing the files unblocks the pending reads
	var err error
	for _, f := range devices {
		err = errors.Join(err, f.Close())
	}
	p.wg.Wait()
	return err
}

func (p *linuxImpl) readLoop(f *os.File) {
	defer p.wg.Done()

	buf := make([]byte, inputEventSize*64)
	for {
		n, err := f.Read(buf)
		if err != nil {
			p.deviceLost(f, err)
			return
		}

		for off := 0; off+inputEventSize <= n; off += inputEventSize {
			activity, ok := decodeInputEvent(buf[off : off+inputEventSize])
			if !ok {
				continue
			}

			p.mu.Lock()
			callback := p.callback
			p.mu.Unlock()
			if callback == nil {
				return
			}
			callback(ActivityEvent{Type: activity, Timestamp: time.Now()})
		}
	}
}

// deviceLost reports a device whose reads failed while monitoring was running,
// e.g. an unplugged keyboard. Errors caused by StopActivityMonitoring are not reported.
func (p *linuxImpl) deviceLost(f *os.File, err error) {
	p.mu.Lock()
	stopped := p.callback == nil
	p.mu.Unlock()

	remaining := p.live.Add(-1)
	if stopped {
		return
	}

	p.logger.Warn("Input device stopped delivering events",
		zap.String("device", f.Name()),
		zap.Int32("remaining", remaining),
		zap.Error(err),
	)
	if remaining == 0 {
		p.logger.Error("All input devices lost, user input is no longer monitored")
	}
}

// decodeInputEvent maps one raw input_event to an activity type.
// Sync reports, key releases and autorepeats are not activity of their own.
func decodeInputEvent(raw []byte) (ActivityType, bool) {
	typ := binary.NativeEndian.Uint16(raw[timevalSize:])
	code := binary.NativeEndian.Uint16(raw[timevalSize+2:])
	value := int32(binary.NativeEndian.Uint32(raw[timevalSize+4:]))

	switch typ {
	case evKey:
		if value != keyPressed {
			return "", false
		}
		if code >= btnMouse && code < btnJoy {
			return ActivityMouseClick, true
		}
		return ActivityKeyPress, true
	case evRel:
		if code == relWheel || code == relHWheel {
			return ActivityMouseScroll, true
		}
		return ActivityMouseMove, true
	case evAbs:
		return ActivityMouseMove, true
	}
	return "", false
}

func (p *linuxImpl) GetSystemInfo() (*SystemInfo, error) {
	hostname, _ := os.Hostname()

	var uts unix.Utsname
	release := runtime.GOOS
	if err := unix.Uname(&uts); err == nil {
		release = unix.ByteSliceToString(uts.Release[:])
	}

	return &SystemInfo{
		OS:        "linux",
		OSVersion: release,
		Arch:      runtime.GOARCH,
		Hostname:  hostname,
	}, nil
}
