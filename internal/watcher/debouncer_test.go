package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDebouncer() (*Debouncer, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)}
	d := NewDebouncer(DefaultDebounceWindow, nil, nil)
	d.now = clock.now
	return d, clock
}

func modified(paths ...string) Notification {
	return Notification{Kind: KindDataModified, Paths: paths}
}

func TestProcess_OnlyDataModified(t *testing.T) {
	for _, kind := range []Kind{KindCreate, KindRemove, KindRename, KindMetadata, KindOther} {
		d, _ := newTestDebouncer()
		_, ok := d.Process(Notification{Kind: kind, Paths: []string{"/home/me/src/main.rs"}})
		assert.False(t, ok, kind.String())
	}
}

func TestProcess_Debounce(t *testing.T) {
	d, clock := newTestDebouncer()
	path := "/home/me/demo/src/main.rs"

	got, ok := d.Process(modified(path))
	require.True(t, ok)
	assert.Equal(t, path, got)

	clock.advance(50 * time.Millisecond)
	_, ok = d.Process(modified(path))
	assert.False(t, ok, "inside window")

	// suppressed events do not move the window
	clock.advance(50 * time.Millisecond)
	_, ok = d.Process(modified(path))
	assert.True(t, ok, "window elapsed since last accepted instant")
}

func TestProcess_FirstQualifyingPathWins(t *testing.T) {
	d, _ := newTestDebouncer()

	got, ok := d.Process(modified(
		"/home/me/demo/node_modules/x/index.js",
		"/home/me/demo/README",
		"/home/me/demo/a.go",
		"/home/me/demo/b.go",
	))
	require.True(t, ok)
	assert.Equal(t, "/home/me/demo/a.go", got)

	// b.go was never evaluated, so it is accepted right away
	got, ok = d.Process(modified("/home/me/demo/b.go"))
	require.True(t, ok)
	assert.Equal(t, "/home/me/demo/b.go", got)
}

func TestIsTrackable(t *testing.T) {
	d, _ := newTestDebouncer()

	tests := []struct {
		path string
		want bool
	}{
		{"/home/me/demo/src/main.rs", true},
		{"/home/me/demo/app.tsx", true},
		{"/home/me/demo/target/debug/build.rs", false},
		{"/home/me/demo/.git/hooks/pre-commit.py", false},
		{"/home/me/demo/__pycache__/mod.py", false},
		{"/home/me/demo/Makefile", false},
		{"/home/me/demo/notes.md", false},
		{"/home/me/demo/main.RS", false},
		{`C:\Users\me\demo\node_modules\x\index.js`, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, d.IsTrackable(tt.path), tt.path)
	}
}

func TestNewDebouncer_CustomExtensions(t *testing.T) {
	d := NewDebouncer(time.Second, []string{"md", ".txt"}, []string{"/private/"})

	assert.True(t, d.IsTrackable("/docs/readme.md"))
	assert.True(t, d.IsTrackable("/docs/notes.txt"))
	assert.False(t, d.IsTrackable("/docs/main.go"))
	assert.False(t, d.IsTrackable("/private/notes.txt"))
	// default ignore patterns are replaced, not extended
	assert.True(t, d.IsTrackable("/repo/node_modules/readme.md"))
}

func TestPrune(t *testing.T) {
	d, clock := newTestDebouncer()
	d.Process(modified("/src/a.go"))
	clock.advance(time.Minute)
	d.Process(modified("/src/b.go"))
	clock.advance(30 * time.Second)

	assert.Equal(t, 1, d.Prune(45*time.Second))
	assert.Equal(t, 1, d.Tracked())
}

// Property: repeated events for one path inside a window yield exactly one acceptance per window
func TestDebounceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d, clock := newTestDebouncer()
		path := "/home/me/demo/src/lib.rs"

		n := rapid.IntRange(1, 50).Draw(t, "n")
		var lastAccepted time.Time
		accepted := 0
		for i := 0; i < n; i++ {
			gap := time.Duration(rapid.IntRange(0, 250).Draw(t, "gap_ms")) * time.Millisecond
			clock.advance(gap)

			_, ok := d.Process(modified(path))
			expect := accepted == 0 || clock.t.Sub(lastAccepted) >= DefaultDebounceWindow
			if ok != expect {
				t.Fatalf("event %d: accepted=%v, want %v", i, ok, expect)
			}
			if ok {
				accepted++
				lastAccepted = clock.t
			}
		}
		if accepted == 0 {
			t.Fatalf("first event must be accepted")
		}
	})
}

// Property: ignored paths are never returned, whatever their extension
func TestIgnoredNeverReturned(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d, clock := newTestDebouncer()
		pattern := rapid.SampledFrom(DefaultIgnorePatterns).Draw(t, "pattern")
		ext := rapid.SampledFrom(DefaultExtensions).Draw(t, "ext")
		prefix := rapid.StringMatching(`/[a-z]{1,8}`).Draw(t, "prefix")
		stem := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "stem")
		path := prefix + pattern + stem + ext

		for i := 0; i < 3; i++ {
			clock.advance(time.Second)
			if got, ok := d.Process(modified(path)); ok {
				t.Fatalf("ignored path %q returned as %q", path, got)
			}
		}
	})
}

// Property: paths without a recognized extension are never returned
func TestUnknownExtensionNeverReturned(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d, _ := newTestDebouncer()
		stem := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "stem")
		ext := rapid.StringMatching(`(\.[a-z]{1,5})?`).Draw(t, "ext")
		if _, known := d.extensions[ext]; known {
			return
		}
		if _, ok := d.Process(modified("/home/me/src/" + stem + ext)); ok {
			t.Fatalf("path with extension %q returned", ext)
		}
	})
}
