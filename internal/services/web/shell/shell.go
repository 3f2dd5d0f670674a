// Package shell owns the per-page-load app shell state: initial-route
// readiness, preloader dismissal, scroll reset and bottom navigation.
//
// Each full page load mounts a Visit. The router signals readiness on it,
// and the browser's live channel reports navigations and transition events
// back. Commands for the browser queue on the visit until the live channel
// flushes them.
package shell

import (
	"context"
	"strings"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
)

// VisitHeader carries the visit id on HTMX requests issued from a mounted
// page.
const VisitHeader = "X-Shell-Visit"

// PreloaderID is the DOM id of the startup preloader element.
const PreloaderID = "preloader"

// Readiness sources.
const (
	SourceRoute    = "route"
	SourceRedirect = "redirect"
	SourceSafety   = "safety_timer"
	SourceClient   = "client"
)

// Preloader removal triggers.
const (
	TriggerTimer         = "timer"
	TriggerTransitionEnd = "transitionend"
)

// Location is the browser location of a visit.
type Location struct {
	Path  string `json:"path"`
	Query string `json:"query"`
	Hash  string `json:"hash"`
}

// CommandType names a browser command.
type CommandType string

const (
	CommandPreloaderHide   CommandType = "preloader-hide"
	CommandPreloaderRemove CommandType = "preloader-remove"
	CommandScroll          CommandType = "scroll"
	CommandBottomNav       CommandType = "bottom-nav"
	CommandToast           CommandType = "toast"
)

// Command is one instruction for the browser.
type Command struct {
	Type     CommandType `json:"type"`
	Target   string      `json:"target,omitempty"`
	Top      int         `json:"top"`
	Left     int         `json:"left"`
	Behavior string      `json:"behavior,omitempty"`
	Visible  *bool       `json:"visible,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	Message  string      `json:"message,omitempty"`
}

// ScrollToOrigin returns the smooth scroll-to-top command.
func ScrollToOrigin() Command {
	return Command{Type: CommandScroll, Behavior: "smooth"}
}

// BottomNav returns the command that shows or hides bottom navigation.
func BottomNav(visible bool) Command {
	return Command{Type: CommandBottomNav, Visible: &visible}
}

// Toast returns a toast command.
func Toast(kind string, message string) Command {
	return Command{Type: CommandToast, Kind: strings.TrimSpace(kind), Message: message}
}

// IsDashboardRoute reports whether path belongs to a role dashboard, where
// bottom navigation is suppressed.
func IsDashboardRoute(path string) bool {
	return routepath.IsDashboardPath(path)
}

// Observer records shell lifecycle events.
type Observer interface {
	ShellReady(source string)
	PreloaderRemoved(trigger string)
}

type nopObserver struct{}

func (nopObserver) ShellReady(string)       {}
func (nopObserver) PreloaderRemoved(string) {}

type contextKey struct{}

type visitContext struct {
	visit   *Visit
	partial bool
}

// WithVisit stores v on ctx. partial marks a request made from an already
// mounted page.
func WithVisit(ctx context.Context, v *Visit, partial bool) context.Context {
	return context.WithValue(ctx, contextKey{}, visitContext{visit: v, partial: partial})
}

// FromContext returns the visit bound to ctx and whether the request is a
// partial navigation within it.
func FromContext(ctx context.Context) (*Visit, bool) {
	if ctx == nil {
		return nil, false
	}
	vc, ok := ctx.Value(contextKey{}).(visitContext)
	if !ok {
		return nil, false
	}
	return vc.visit, vc.partial
}
