package shell

import (
	"sync"
	"sync/atomic"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/clock"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/latch"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/timeouts"
)

// Element is the preloader as seen by the dismissal sequence.
type Element interface {
	// Hide starts the fade: opacity 0, visibility hidden.
	Hide()
	// Remove detaches the element from the document.
	Remove()
}

// Dismissal is an in-flight preloader dismissal. The element is removed by
// whichever of the fallback timer and the transition-end event fires first.
type Dismissal struct {
	el       Element
	onRemove func(trigger string)
	removed  latch.Latch
	stopped  atomic.Bool

	mu    sync.Mutex
	timer clock.Timer
}

// Dismiss hides el and arms its removal. A nil element is a no-op and
// returns nil; every Dismissal method is safe on nil.
func Dismiss(el Element, clk clock.Clock, onRemove func(trigger string)) *Dismissal {
	if el == nil {
		return nil
	}
	if clk == nil {
		clk = clock.Real{}
	}
	d := &Dismissal{el: el, onRemove: onRemove}
	el.Hide()
	d.mu.Lock()
	d.timer = clk.AfterFunc(timeouts.PreloaderFade, func() {
		d.remove(TriggerTimer)
	})
	d.mu.Unlock()
	return d
}

// TransitionEnd handles the element's transition-end event. It reports
// whether this call removed the element.
func (d *Dismissal) TransitionEnd() bool {
	if d == nil {
		return false
	}
	return d.remove(TriggerTransitionEnd)
}

// Removed reports whether the element has been removed.
func (d *Dismissal) Removed() bool {
	return d != nil && d.removed.Done()
}

// Stop cancels any pending removal.
func (d *Dismissal) Stop() {
	if d == nil {
		return
	}
	d.stopped.Store(true)
	d.stopTimer()
}

func (d *Dismissal) remove(trigger string) bool {
	if d.stopped.Load() {
		return false
	}
	if !d.removed.Trip() {
		return false
	}
	d.stopTimer()
	d.el.Remove()
	if d.onRemove != nil {
		d.onRemove(trigger)
	}
	return true
}

func (d *Dismissal) stopTimer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
