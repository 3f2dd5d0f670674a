// Package access decides whether a session may view a role-gated route.
package access

import (
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
)

// Outcome is the result of evaluating a requirement.
type Outcome int

const (
	// Allow renders the page.
	Allow Outcome = iota
	// Pending renders the neutral empty fallback until the session store
	// answers.
	Pending
	// Login redirects anonymous visitors to sign in.
	Login
	// Denied renders the access denied page.
	Denied
	// Onboarding redirects vendors that have not finished onboarding.
	Onboarding
	// SwitchMode renders the mode switch prompt.
	SwitchMode
)

// String returns the metric label for o.
func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case Login:
		return "login"
	case Denied:
		return "denied"
	case Onboarding:
		return "onboarding"
	case SwitchMode:
		return "switch_mode"
	default:
		return "unknown"
	}
}

// Requirement describes what a route demands of the session.
type Requirement struct {
	RequireAuth            bool
	Capability             session.Capability
	Mode                   session.Mode
	RequireVendorOnboarded bool
}

// Open reports whether the requirement admits everyone.
func (r Requirement) Open() bool {
	return !r.RequireAuth && r.Capability == "" && r.Mode == "" && !r.RequireVendorOnboarded
}

var (
	// VendorGate guards vendor dashboard routes.
	VendorGate = Requirement{
		RequireAuth:            true,
		Capability:             session.CapabilitySell,
		Mode:                   session.ModeVendor,
		RequireVendorOnboarded: true,
	}
	// CustomerGate guards customer dashboard routes.
	CustomerGate = Requirement{
		RequireAuth: true,
		Capability:  session.CapabilityBuy,
		Mode:        session.ModeCustomer,
	}
	// CartGate guards the cart. It matches CustomerGate without the
	// dashboard chrome.
	CartGate = CustomerGate
)

// Decision is the evaluated outcome plus what the caller needs to act on
// it.
type Decision struct {
	Outcome Outcome
	// TargetMode is the mode the route needs when Outcome is SwitchMode.
	TargetMode session.Mode
	// CanSwitch reports whether the session can switch to TargetMode.
	CanSwitch bool
}

// Evaluate checks state against req. The checks run in a fixed order:
// loading, authentication, capability, onboarding, mode.
func Evaluate(req Requirement, state session.State) Decision {
	if req.Open() {
		return Decision{Outcome: Allow}
	}
	if state.Loading {
		return Decision{Outcome: Pending}
	}
	user := state.User
	if req.RequireAuth && user == nil {
		return Decision{Outcome: Login}
	}
	if req.Capability != "" && !user.Has(req.Capability) {
		return Decision{Outcome: Denied}
	}
	if req.RequireVendorOnboarded && (user == nil || !user.VendorOnboarded) {
		return Decision{Outcome: Onboarding}
	}
	if req.Mode != "" && (user == nil || user.Mode != req.Mode) {
		return Decision{
			Outcome:    SwitchMode,
			TargetMode: req.Mode,
			CanSwitch:  user.Has(session.CapabilityFor(req.Mode)),
		}
	}
	return Decision{Outcome: Allow}
}
