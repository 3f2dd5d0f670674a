// Package web hosts the browser-facing storefront service.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/platform/timeouts"
	webapp "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/app"
	module "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/module"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/modules"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/pages"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/observability"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/sessioncookie"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/weberror"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/router"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
)

const tracerName = "storefront/web"

// sessionSweepInterval is how often expired sessions are purged from stores
// that keep them past expiry.
const sessionSweepInterval = time.Minute

// Config defines startup inputs for the web service.
type Config struct {
	HTTPAddr string
	Session  SessionConfig
	// CookieKey signs session cookies. It must be at least 32 bytes.
	CookieKey string
	CookieTTL time.Duration
	// TrustForwardedProto honours X-Forwarded-Proto behind a TLS proxy.
	TrustForwardedProto bool
	// DemoSessions seeds one signed-in session per persona at startup and
	// logs their cookies.
	DemoSessions bool
	Logger       *slog.Logger
}

// Dependencies carries the collaborators a handler is built from.
type Dependencies struct {
	Store   session.Store
	Cookies *sessioncookie.Codec
	Metrics *observability.Metrics
	Visits  *shell.Manager
	Pages   *pages.Registry
	Logger  *slog.Logger
	Policy  requestmeta.SchemePolicy
}

// Server hosts the storefront HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      session.Store
	visits     *shell.Manager
	logger     *slog.Logger
}

// NewHandler builds the root handler from deps.
func NewHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errors.New("session store is required")
	}
	if deps.Cookies == nil {
		return nil, errors.New("session cookie codec is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	visits := deps.Visits
	if visits == nil {
		visits = shell.NewManager(shell.Config{Observer: metrics, Gauge: metrics, Logger: logger})
	}
	registry := deps.Pages
	if registry == nil {
		registry = pages.NewRegistry(pages.Catalog(), metrics)
	}
	resolver := session.NewResolver(deps.Store, deps.Cookies, timeouts.SessionLookup, logger)

	moduleDeps := modules.Dependencies{
		Router: router.Config{
			Pages:    registry,
			Sessions: resolver,
			Observer: metrics,
			Tracer:   otel.Tracer(tracerName),
			Logger:   logger,
		},
		Visits:       visits,
		Live:         shell.NewLiveHandler(visits, metrics, deps.Policy),
		Sessions:     deps.Store,
		SessionIDs:   deps.Cookies,
		SchemePolicy: deps.Policy,
		Logger:       logger,
	}
	publicModules := modules.DefaultPublicModules(moduleDeps)
	protectedModules := modules.DefaultProtectedModules(moduleDeps)
	h, err := webapp.BuildRootHandler(webapp.Config{
		PublicModules:       publicModules,
		ProtectedModules:    protectedModules,
		RequestSchemePolicy: deps.Policy,
	}, signedIn)
	if err != nil {
		return nil, err
	}

	rootMux := http.NewServeMux()
	rootMux.Handle(http.MethodGet+" "+routepath.Health, healthHandler(append(publicModules, protectedModules...)))
	rootMux.Handle(http.MethodGet+" "+routepath.Metrics, metrics.Handler())
	rootMux.Handle("/", h)
	return httpx.Chain(rootMux,
		httpx.RequestID(),
		observability.RequestLogger(logger),
		metrics.InstrumentHTTP(),
		httpx.RecoverPanic(logger, weberror.Boundary()),
		resolver.Middleware(),
	), nil
}

var _ session.CookieClearer = (*sessioncookie.Codec)(nil)

func signedIn(r *http.Request) bool {
	state, ok := session.FromContext(r.Context())
	return ok && state.SignedIn()
}

func healthHandler(mods []module.Module) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		report := map[string]string{}
		for _, m := range mods {
			reporter, ok := m.(module.HealthReporter)
			if !ok {
				continue
			}
			if reporter.Healthy() {
				report[m.ID()] = "ok"
				continue
			}
			report[m.ID()] = "degraded"
			status = http.StatusServiceUnavailable
		}
		httpx.NoStore(w)
		_ = httpx.WriteJSON(w, status, report)
	})
}

// NewServer validates config, opens the session store and constructs a
// server.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto}
	cookies, err := sessioncookie.NewCodec([]byte(cfg.CookieKey), cfg.CookieTTL, sessioncookie.WithSchemePolicy(policy))
	if err != nil {
		return nil, fmt.Errorf("session cookie: %w", err)
	}
	store, err := openSessionStore(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}
	if cfg.DemoSessions {
		if err := seedDemoSessions(ctx, store, cookies, cfg.CookieTTL, logger); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	metrics := observability.NewMetrics()
	visits := shell.NewManager(shell.Config{Observer: metrics, Gauge: metrics, Logger: logger})
	handler, err := NewHandler(Dependencies{
		Store:   store,
		Cookies: cookies,
		Metrics: metrics,
		Visits:  visits,
		Logger:  logger,
		Policy:  policy,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("compose web handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:  store,
		visits: visits,
		logger: logger,
	}, nil
}

// ListenAndServe serves HTTP traffic and runs the background sweepers until
// context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.visits.Run(ctx)
		return nil
	})
	group.Go(func() error {
		s.sweepSessions(ctx)
		return nil
	})
	group.Go(func() error {
		s.logger.Info("web listening", "addr", s.httpAddr)
		err := s.httpServer.ListenAndServe()
		cancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web http: %w", err)
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown web http server: %w", err)
		}
		return nil
	})
	return group.Wait()
}

type expiringStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

func (s *Server) sweepSessions(ctx context.Context) {
	store, ok := s.store.(expiringStore)
	if !ok {
		return
	}
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.DeleteExpired(ctx)
			if err != nil {
				s.logger.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Debug("expired sessions removed", "count", removed)
			}
		}
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.visits != nil {
		s.visits.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close session store", "error", err)
		}
	}
}
