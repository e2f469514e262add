// Package guard turns a panic inside a critical section into a sticky error,
// so shared state left half-updated is never used again.
package guard

import (
	"errors"
	"fmt"
)

// ErrPoisoned is returned by every operation on state whose critical section panicked
var ErrPoisoned = errors.New("shared state poisoned by an earlier panic")

// Latch records a panic that escaped a critical section.
// It must only be touched while holding the lock that protects the guarded state.
type Latch struct {
	cause any
}

// Err returns a wrapped ErrPoisoned once the latch has tripped, nil otherwise
func (l *Latch) Err() error {
	if l.cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPoisoned, l.cause)
}

// Poisoned reports whether the latch has tripped
func (l *Latch) Poisoned() bool {
	return l.cause != nil
}

// Recover is deferred inside the critical section, after the unlock is deferred.
// A panic trips the latch and is converted into an error stored in *err.
func (l *Latch) Recover(err *error) {
	if r := recover(); r != nil {
		l.cause = r
		*err = fmt.Errorf("%w: %v", ErrPoisoned, r)
	}
}
