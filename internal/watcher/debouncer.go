package watcher

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultDebounceWindow is the minimum interval between two accepted events for one path
const DefaultDebounceWindow = 100 * time.Millisecond

// DefaultExtensions are the source extensions that make a file trackable
var DefaultExtensions = []string{
	".rs", ".py", ".js", ".jsx", ".ts", ".tsx", ".go", ".cpp", ".h", ".c", ".lua",
}

// DefaultIgnorePatterns discard paths inside build, dependency, VCS, editor, temp,
// cache and log directories
var DefaultIgnorePatterns = []string{
	// build artifacts
	"/target/", "/build/", "/dist/", "/out/", "/.next/",
	// dependencies
	"/node_modules/", "/vendor/", "/.venv/", "/venv/", "/env/",
	// version control
	"/.git/", "/.svn/", "/.hg/",
	// editors
	"/.vscode/", "/.idea/", "/.vs/",
	// temporary files
	"/tmp/", "/temp/", "/.tmp/",
	// caches
	"/.cache/", "/cache/", "/__pycache__/", "/.pytest_cache/",
	// logs
	"/logs/", "/.log/",
}

// Debouncer turns raw change notifications into at most one trackable path each.
// It is safe for concurrent use.
type Debouncer struct {
	mu             sync.Mutex
	lastAccepted   map[string]time.Time
	window         time.Duration
	extensions     map[string]struct{}
	ignorePatterns []string
	now            func() time.Time
}

// NewDebouncer creates a debouncer. Empty extensions or ignorePatterns use the defaults.
func NewDebouncer(window time.Duration, extensions, ignorePatterns []string) *Debouncer {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(ignorePatterns) == 0 {
		ignorePatterns = DefaultIgnorePatterns
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}

	return &Debouncer{
		lastAccepted:   make(map[string]time.Time),
		window:         window,
		extensions:     exts,
		ignorePatterns: append([]string(nil), ignorePatterns...),
		now:            time.Now,
	}
}

// Process returns the first path of a data-modified notification that is trackable
// and outside its debounce window. Other kinds never yield a path.
func (d *Debouncer) Process(n Notification) (string, bool) {
	if n.Kind != KindDataModified {
		return "", false
	}

	for _, path := range n.Paths {
		if !d.IsTrackable(path) {
			continue
		}
		if d.debounce(path) {
			continue
		}
		return path, true
	}
	return "", false
}

// debounce reports whether path was accepted less than one window ago.
// When it was not, the path's accepted instant is moved to now.
func (d *Debouncer) debounce(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.lastAccepted[path]; ok && now.Sub(last) < d.window {
		return true
	}
	d.lastAccepted[path] = now
	return false
}

// IsIgnored reports whether any ignore pattern occurs in the slash-separated path
func (d *Debouncer) IsIgnored(path string) bool {
	p := filepath.ToSlash(path)
	for _, pattern := range d.ignorePatterns {
		if strings.Contains(p, pattern) {
			return true
		}
	}
	return false
}

// IsTrackable reports whether path is not ignored and has a recognized source extension
func (d *Debouncer) IsTrackable(path string) bool {
	if d.IsIgnored(path) {
		return false
	}
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	_, ok := d.extensions[ext]
	return ok
}

// Prune forgets paths last accepted more than olderThan ago
func (d *Debouncer) Prune(olderThan time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := d.now().Add(-olderThan)
	removed := 0
	for path, last := range d.lastAccepted {
		if last.Before(cutoff) {
			delete(d.lastAccepted, path)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of paths with a remembered accepted instant
func (d *Debouncer) Tracked() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastAccepted)
}
