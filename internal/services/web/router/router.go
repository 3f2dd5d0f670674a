// Package router resolves storefront URLs to page views behind their access
// gates, and signals initial-route readiness to the app shell.
package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/access"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/pages"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/pagerender"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/weberror"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

const tracerName = "storefront/web/router"

// Resolution outcomes beyond the access outcomes.
const (
	outcomeSignupRedirect = "signup_redirect"
	outcomeSignupShell    = "signup_shell"
	outcomeLoadError      = "load_error"
)

// SessionResolver reads the session state for a request.
type SessionResolver interface {
	Resolve(r *http.Request) session.State
}

// Observer records route resolutions.
type Observer interface {
	RouteResolved(route string, outcome string)
}

// Config configures the router.
type Config struct {
	Pages    *pages.Registry
	Sessions SessionResolver
	Observer Observer
	Tracer   trace.Tracer
	Logger   *slog.Logger
	// Table defaults to DefaultTable.
	Table []Route
}

type router struct {
	pages    *pages.Registry
	sessions SessionResolver
	observer Observer
	tracer   trace.Tracer
	logger   *slog.Logger
}

type route struct {
	Route
	compiled compiledPattern
}

// New builds the route handler. Every page named by the table must be
// registered in cfg.Pages.
func New(cfg Config) (http.Handler, error) {
	if cfg.Pages == nil {
		return nil, fmt.Errorf("page registry is required")
	}
	table := cfg.Table
	if table == nil {
		table = DefaultTable()
	}
	rt := &router{
		pages:    cfg.Pages,
		sessions: cfg.Sessions,
		observer: cfg.Observer,
		tracer:   cfg.Tracer,
		logger:   cfg.Logger,
	}
	if rt.tracer == nil {
		rt.tracer = otel.Tracer(tracerName)
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}

	mux := http.NewServeMux()
	seen := make(map[string]Route, len(table))
	for _, entry := range table {
		if err := cfg.Pages.Validate(entry.Page); err != nil {
			return nil, fmt.Errorf("route %q: %w", entry.Pattern, err)
		}
		compiled, err := compilePattern(entry.Pattern)
		if err != nil {
			return nil, err
		}
		if previous, ok := seen[compiled.mux]; ok {
			// "/x" and "/x/" fold together; both must name the same view.
			if previous.Page == entry.Page && previous.Gate == entry.Gate {
				continue
			}
			return nil, fmt.Errorf("route %q duplicates route %q", entry.Pattern, previous.Pattern)
		}
		seen[compiled.mux] = entry
		mux.Handle(compiled.mux, rt.handler(route{Route: entry, compiled: compiled}))
	}
	return foldingMux{mux: mux}, nil
}

func (rt *router) handler(rte route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := rt.tracer.Start(r.Context(), "route "+rte.Pattern,
			trace.WithAttributes(
				attribute.String("route.pattern", rte.Pattern),
				attribute.String("route.page", string(rte.Page)),
			),
		)
		defer span.End()
		r = r.WithContext(ctx)

		visit, _ := shell.FromContext(ctx)
		outcome := rt.resolve(w, r, rte)
		visit.SignalReady(shell.SourceRoute)

		span.SetAttributes(attribute.String("route.outcome", outcome))
		if outcome == outcomeLoadError {
			span.SetStatus(codes.Error, "page load failed")
		}
		if rt.observer != nil {
			rt.observer.RouteResolved(rte.Pattern, outcome)
		}
	})
}

func (rt *router) state(r *http.Request) session.State {
	if state, ok := session.FromContext(r.Context()); ok {
		return state
	}
	if rt.sessions == nil {
		return session.State{}
	}
	return rt.sessions.Resolve(r)
}

// resolve writes the response for one request and returns the outcome.
func (rt *router) resolve(w http.ResponseWriter, r *http.Request, rte route) string {
	state := rt.state(r)
	r = r.WithContext(session.WithState(r.Context(), state))

	if state.MissingRole() {
		if foldPath(r.URL.Path) != routepath.AuthSignup {
			visit, _ := shell.FromContext(r.Context())
			visit.SignalReady(shell.SourceRedirect)
			httpx.WriteReplaceRedirect(w, r, routepath.AuthSignup)
			return outcomeSignupRedirect
		}
		rt.writePage(w, r, pagerender.Page{NoStore: true})
		return outcomeSignupShell
	}

	decision := access.Evaluate(rte.Gate.Requirement(), state)
	switch decision.Outcome {
	case access.Pending:
		rt.writePage(w, r, pagerender.Page{Body: templates.Empty(), NoStore: true})
	case access.Login:
		httpx.WriteReplaceRedirect(w, r, routepath.AuthLoginWithNext(requestmeta.PathWithQuery(r)))
	case access.Denied:
		weberror.WriteAccessDenied(w, r)
	case access.Onboarding:
		httpx.WriteReplaceRedirect(w, r, routepath.VendorOnboarding)
	case access.SwitchMode:
		weberror.WriteSwitchMode(w, r, string(decision.TargetMode), decision.CanSwitch)
	case access.Allow:
		if err := rt.renderPage(w, r, rte); err != nil {
			rt.logger.ErrorContext(r.Context(), "page load failed",
				"page", string(rte.Page),
				"path", r.URL.Path,
				"request_id", httpx.RequestIDFrom(r),
				"error", err,
			)
			weberror.WriteError(w, r, err)
			return outcomeLoadError
		}
	}
	return decision.Outcome.String()
}

func (rt *router) renderPage(w http.ResponseWriter, r *http.Request, rte route) error {
	page, err := rt.pages.Load(r.Context(), rte.Page)
	if err != nil {
		return err
	}
	loc, _ := pagerender.Localizer(w, r)
	var body templ.Component = templ.NopComponent
	if page.Render != nil {
		body = page.Render(loc, rte.compiled.values(r))
	}
	if role := rte.Gate.DashboardRole(); role != "" {
		body = withinDashboard(templates.DashboardLayout(role, loc, foldPath(r.URL.Path)), body)
	}
	status := http.StatusOK
	if rte.Page == pages.NotFound {
		status = http.StatusNotFound
	}
	return pagerender.Write(w, r, pagerender.Page{
		Title:      templates.T(loc, rte.Page.TitleKey()),
		StatusCode: status,
		Body:       body,
		NoStore:    rte.Gate != GateNone,
	})
}

func (rt *router) writePage(w http.ResponseWriter, r *http.Request, page pagerender.Page) {
	if err := pagerender.Write(w, r, page); err != nil {
		rt.logger.ErrorContext(r.Context(), "shell render failed", "path", r.URL.Path, "error", err)
		weberror.WriteAppError(w, r, http.StatusInternalServerError)
	}
}

func withinDashboard(layout templ.Component, inner templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout.Render(templ.WithChildren(ctx, inner), w)
	})
}
