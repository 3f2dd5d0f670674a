package shell

import (
	"sync"
	"time"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/clock"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/latch"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/timeouts"
)

// Visit is the shell state of one full page load.
type Visit struct {
	id        string
	clock     clock.Clock
	observer  Observer
	preloader bool

	ready     latch.Latch
	unmounted latch.Latch
	rendered  latch.Latch
	// present trips once the browser shows the page: the live channel
	// attached or the client reported ready.
	present    latch.Latch
	dismissing latch.Latch

	mu          sync.Mutex
	safety      clock.Timer
	dismissal   *Dismissal
	location    Location
	hasLocation bool
	outbox      []Command
	lastSeen    time.Time
	connections int
	attached    bool
	mountedAt   time.Time
	updates     chan struct{}
}

func mountVisit(id string, loc Location, preloader bool, clk clock.Clock, observer Observer) *Visit {
	v := &Visit{
		id:        id,
		clock:     clk,
		observer:  observer,
		preloader: preloader,
		lastSeen:  clk.Now(),
		mountedAt: clk.Now(),
		updates:   make(chan struct{}, 1),
	}
	v.mu.Lock()
	v.safety = clk.AfterFunc(timeouts.InitialRouteReady, func() {
		v.SignalReady(SourceSafety)
	})
	v.mu.Unlock()
	v.Navigate(loc)
	return v
}

// ID returns the visit id.
func (v *Visit) ID() string {
	return v.id
}

// SignalReady marks the initial route as resolved. Only the first call has
// any effect; it reports whether this call performed the transition. The
// preloader starts fading once the browser is also present.
func (v *Visit) SignalReady(source string) bool {
	if v == nil || v.unmounted.Done() {
		return false
	}
	if !v.ready.Trip() {
		return false
	}
	v.observer.ShellReady(source)

	v.mu.Lock()
	if v.safety != nil {
		v.safety.Stop()
	}
	v.mu.Unlock()

	v.startDismissal()
	return true
}

// markPresent records that the browser is showing the page.
func (v *Visit) markPresent() {
	if v == nil || !v.present.Trip() {
		return
	}
	v.startDismissal()
}

// startDismissal hides the preloader once the route is ready and the browser
// is present, so the fade timer runs against a page the user can see.
func (v *Visit) startDismissal() {
	if !v.ready.Done() || !v.present.Done() || v.unmounted.Done() {
		return
	}
	if !v.dismissing.Trip() {
		return
	}
	var el Element
	if v.preloader {
		el = visitPreloader{visit: v}
	}
	dismissal := Dismiss(el, v.clock, v.observer.PreloaderRemoved)

	v.mu.Lock()
	v.dismissal = dismissal
	unmounted := v.unmounted.Done()
	v.mu.Unlock()
	if unmounted {
		dismissal.Stop()
	}
}

// HasPreloader reports whether the page was rendered with the preloader.
func (v *Visit) HasPreloader() bool {
	return v != nil && v.preloader
}

// Ready reports whether readiness has fired.
func (v *Visit) Ready() bool {
	return v != nil && v.ready.Done()
}

// PreloaderRemoved reports whether the preloader has been removed.
func (v *Visit) PreloaderRemoved() bool {
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dismissal.Removed()
}

// TransitionEnd handles the browser's preloader transition-end event.
func (v *Visit) TransitionEnd() bool {
	if v == nil || v.unmounted.Done() {
		return false
	}
	v.mu.Lock()
	dismissal := v.dismissal
	v.mu.Unlock()
	return dismissal.TransitionEnd()
}

// Navigate records a new browser location. When the location changed it
// queues a scroll reset (unless a hash is present, which the browser
// scrolls to itself) and the bottom navigation visibility for the new path.
func (v *Visit) Navigate(loc Location) {
	if v == nil || v.unmounted.Done() {
		return
	}
	v.mu.Lock()
	changed := !v.hasLocation || loc != v.location
	v.location = loc
	v.hasLocation = true
	if changed {
		if loc.Hash == "" {
			v.outbox = append(v.outbox, ScrollToOrigin())
		}
		v.outbox = append(v.outbox, BottomNav(!IsDashboardRoute(loc.Path)))
	}
	v.mu.Unlock()
	if changed {
		v.notify()
	}
}

// Location returns the last known browser location.
func (v *Visit) Location() Location {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.location
}

// Send queues a command for the browser.
func (v *Visit) Send(cmd Command) {
	if v == nil || v.unmounted.Done() {
		return
	}
	v.mu.Lock()
	v.outbox = append(v.outbox, cmd)
	v.mu.Unlock()
	v.notify()
}

// Drain returns and clears the queued commands.
func (v *Visit) Drain() []Command {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.outbox
	v.outbox = nil
	return out
}

// Updates is signalled whenever commands are queued.
func (v *Visit) Updates() <-chan struct{} {
	return v.updates
}

// MarkRendered records that the shell layout was written for this visit.
func (v *Visit) MarkRendered() {
	if v != nil {
		v.rendered.Trip()
	}
}

// Rendered reports whether the shell layout was written.
func (v *Visit) Rendered() bool {
	return v != nil && v.rendered.Done()
}

// Unmount stops both timers. Callbacks that fire afterwards are no-ops.
func (v *Visit) Unmount() {
	if v == nil || !v.unmounted.Trip() {
		return
	}
	v.mu.Lock()
	if v.safety != nil {
		v.safety.Stop()
	}
	dismissal := v.dismissal
	v.mu.Unlock()
	dismissal.Stop()
}

// Unmounted reports whether the visit was unmounted.
func (v *Visit) Unmounted() bool {
	return v.unmounted.Done()
}

func (v *Visit) attach() {
	v.mu.Lock()
	v.connections++
	v.attached = true
	v.lastSeen = v.clock.Now()
	v.mu.Unlock()
	v.markPresent()
}

func (v *Visit) detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.connections > 0 {
		v.connections--
	}
	v.lastSeen = v.clock.Now()
}

func (v *Visit) idle(now time.Time, after time.Duration) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connections == 0 && now.Sub(v.lastSeen) >= after
}

// abandoned reports whether the live channel never attached within after
// of the mount. Clients without scripts and crawlers end up here.
func (v *Visit) abandoned(now time.Time, after time.Duration) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.attached && now.Sub(v.mountedAt) >= after
}

// evictable reports whether no live connection is open.
func (v *Visit) evictable() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connections == 0
}

func (v *Visit) notify() {
	select {
	case v.updates <- struct{}{}:
	default:
	}
}

type visitPreloader struct {
	visit *Visit
}

func (p visitPreloader) Hide() {
	p.visit.Send(Command{Type: CommandPreloaderHide, Target: PreloaderID})
}

func (p visitPreloader) Remove() {
	p.visit.Send(Command{Type: CommandPreloaderRemove, Target: PreloaderID})
}
