// Package latch provides a single-assignment completion flag for one-shot
// side effects that may be triggered from several places.
package latch

import "sync/atomic"

// Latch flips from open to done exactly once. The zero value is open and
// ready to use.
type Latch struct {
	done atomic.Bool
}

// Trip marks the latch done. It reports true only for the caller that
// performed the transition; every later call reports false.
func (l *Latch) Trip() bool {
	return l.done.CompareAndSwap(false, true)
}

// Done reports whether the latch has been tripped.
func (l *Latch) Done() bool {
	return l.done.Load()
}
