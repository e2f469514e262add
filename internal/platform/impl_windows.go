//go:build windows

package platform

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

type windowsImpl struct {
	mu               sync.Mutex
	mouseHook        windows.Handle
	keyboardHook     windows.Handle
	activityCallback func(ActivityEvent)
	threadID         uint32
	loopDone         chan struct{}
	logger           *zap.Logger
}

var (
	user32 = windows.NewLazyDLL("user32.dll")

	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
)

const (
	WH_MOUSE_LL    = 14
	WH_KEYBOARD_LL = 13
	WM_QUIT        = 0x0012
	WM_KEYDOWN     = 0x0100
	WM_SYSKEYDOWN  = 0x0104
	WM_MOUSEMOVE   = 0x0200
	WM_LBUTTONDOWN = 0x0201
	WM_RBUTTONDOWN = 0x0204
	WM_MBUTTONDOWN = 0x0207
	WM_MOUSEWHEEL  = 0x020A
	WM_MOUSEHWHEEL = 0x020E
)

// msg mirrors the Win32 MSG structure
type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
	private uint32
}

func newPlatform(logger *zap.Logger) (Platform, error) {
	return &windowsImpl{logger: logger}, nil
}

// StartActivityMonitoring installs low-level hooks on a dedicated OS thread.
// Low-level hooks are only called while the installing thread pumps messages,
// so that thread stays in GetMessage until StopActivityMonitoring posts WM_QUIT.
func (p *windowsImpl) StartActivityMonitoring(callback func(ActivityEvent)) error {
	p.mu.Lock()
	if p.loopDone != nil {
		p.mu.Unlock()
		return fmt.Errorf("activity monitoring already started")
	}
	p.activityCallback = callback
	p.loopDone = make(chan struct{})
	p.mu.Unlock()

	ready := make(chan error, 1)
	go p.hookLoop(ready)

	if err := <-ready; err != nil {
		p.mu.Lock()
		p.activityCallback = nil
		p.loopDone = nil
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *windowsImpl) hookLoop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	p.mu.Lock()
	done := p.loopDone
	p.mu.Unlock()
	defer close(done)

	mouseHook, _, _ := procSetWindowsHookEx.Call(
		WH_MOUSE_LL,
		syscall.NewCallback(p.mouseHookProc),
		0,
		0,
	)
	if mouseHook == 0 {
		ready <- fmt.Errorf("failed to set mouse hook")
		return
	}

	keyboardHook, _, _ := procSetWindowsHookEx.Call(
		WH_KEYBOARD_LL,
		syscall.NewCallback(p.keyboardHookProc),
		0,
		0,
	)
	if keyboardHook == 0 {
		procUnhookWindowsHookEx.Call(mouseHook)
		ready <- fmt.Errorf("failed to set keyboard hook")
		return
	}

	p.mu.Lock()
	p.mouseHook = windows.Handle(mouseHook)
	p.keyboardHook = windows.Handle(keyboardHook)
	p.threadID = windows.GetCurrentThreadId()
	p.mu.Unlock()
	ready <- nil

	var m msg
	for {
		// 0 means WM_QUIT, -1 an error; both end the loop
		r, _, err := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) == -1 {
			p.logger.Error("Hook message loop failed, input is no longer monitored", zap.Error(err))
			break
		}
		if r == 0 {
			break
		}
	}

	p.mu.Lock()
	procUnhookWindowsHookEx.Call(uintptr(p.mouseHook))
	procUnhookWindowsHookEx.Call(uintptr(p.keyboardHook))
	p.mouseHook = 0
	p.keyboardHook = 0
	p.mu.Unlock()
}

func (p *windowsImpl) StopActivityMonitoring() error {
	p.mu.Lock()
	done := p.loopDone
	threadID := p.threadID
	p.activityCallback = nil
	p.loopDone = nil
	p.threadID = 0
	p.mu.Unlock()

	if done == nil {
		return nil
	}

	r, _, err := procPostThreadMessage.Call(uintptr(threadID), WM_QUIT, 0, 0)
	if r == 0 {
		return fmt.Errorf("failed to stop hook message loop: %w", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		return fmt.Errorf("hook message loop did not exit")
	}
	return nil
}

func (p *windowsImpl) emit(activity ActivityType) {
	p.mu.Lock()
	callback := p.activityCallback
	p.mu.Unlock()

	if callback != nil {
		callback(ActivityEvent{Type: activity, Timestamp: time.Now()})
	}
}

func (p *windowsImpl) mouseHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		switch wParam {
		case WM_MOUSEMOVE:
			p.emit(ActivityMouseMove)
		case WM_LBUTTONDOWN, WM_RBUTTONDOWN, WM_MBUTTONDOWN:
			p.emit(ActivityMouseClick)
		case WM_MOUSEWHEEL, WM_MOUSEHWHEEL:
			p.emit(ActivityMouseScroll)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func (p *windowsImpl) keyboardHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 && (wParam == WM_KEYDOWN || wParam == WM_SYSKEYDOWN) {
		p.emit(ActivityKeyPress)
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func (p *windowsImpl) GetSystemInfo() (*SystemInfo, error) {
	hostname, _ := os.Hostname()
	major, minor, build := windows.RtlGetNtVersionNumbers()
	return &SystemInfo{
		OS:        "windows",
		OSVersion: fmt.Sprintf("%d.%d.%d", major, minor, build),
		Arch:      runtime.GOARCH,
		Hostname:  hostname,
	}, nil
}
