// Package session models the signed-in storefront user as read from the
// authentication collaborator's session store.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

// Role is the account role assigned at signup. An empty role means signup
// was never completed.
type Role string

const (
	RoleNone     Role = ""
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Capability is a permission granted to an account.
type Capability string

const (
	CapabilityBuy  Capability = "can_buy"
	CapabilitySell Capability = "can_sell"
)

// Mode is the dashboard persona the session is currently acting as.
type Mode string

const (
	ModeNone     Mode = ""
	ModeCustomer Mode = "customer"
	ModeVendor   Mode = "vendor"
)

// ParseMode normalizes a mode string, reporting whether it is known.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeCustomer:
		return ModeCustomer, true
	case ModeVendor:
		return ModeVendor, true
	default:
		return ModeNone, false
	}
}

// CapabilityFor returns the capability required to act in mode.
func CapabilityFor(mode Mode) Capability {
	if mode == ModeVendor {
		return CapabilitySell
	}
	return CapabilityBuy
}

// User is the authenticated account behind a session.
type User struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	DisplayName     string       `json:"display_name"`
	Role            Role         `json:"role"`
	Capabilities    []Capability `json:"capabilities"`
	Mode            Mode         `json:"mode"`
	VendorOnboarded bool         `json:"vendor_onboarded"`
}

// HasRole reports whether signup assigned a role.
func (u *User) HasRole() bool {
	return u != nil && strings.TrimSpace(string(u.Role)) != ""
}

// Has reports whether the user holds capability c.
func (u *User) Has(c Capability) bool {
	return u != nil && slices.Contains(u.Capabilities, c)
}

// CanSwitchModes reports whether both personas are available.
func (u *User) CanSwitchModes() bool {
	return u.Has(CapabilityBuy) && u.Has(CapabilitySell)
}

// State is the resolved session for one request. Loading means the store
// could not answer in time, so gates must not decide yet.
type State struct {
	User    *User
	Loading bool
}

// SignedIn reports whether a user is resolved.
func (s State) SignedIn() bool {
	return !s.Loading && s.User != nil
}

// MissingRole reports whether a resolved user never completed signup.
func (s State) MissingRole() bool {
	return s.SignedIn() && !s.User.HasRole()
}

// Record is one persisted session.
type Record struct {
	ID        string
	User      User
	ExpiresAt time.Time
}

// Expired reports whether the record is past its expiry at now. A zero
// expiry never expires.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// ErrNotFound reports a missing or expired session.
var ErrNotFound = errors.New("session not found")

// Store persists sessions. Implementations return ErrNotFound for unknown
// or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (Record, error)
	Put(ctx context.Context, record Record) error
	SetMode(ctx context.Context, id string, mode Mode) error
	Delete(ctx context.Context, id string) error
	Close() error
}

type contextKey struct{}

// WithState stores the resolved session state on ctx.
func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, contextKey{}, state)
}

// FromContext returns the session state stored by WithState.
func FromContext(ctx context.Context) (State, bool) {
	if ctx == nil {
		return State{}, false
	}
	state, ok := ctx.Value(contextKey{}).(State)
	return state, ok
}
