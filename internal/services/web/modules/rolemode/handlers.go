package rolemode

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/errors"
	flashnotice "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/flash"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/pagerender"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/weberror"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/routepath"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
	webtemplates "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

const keyModeSwitched = "shell.toast.mode_switched"

type handlers struct {
	service service
	ids     SessionIDReader
	visits  VisitLookup
	notices flashnotice.Jar
	logger  *slog.Logger
}

func newHandlers(s service, ids SessionIDReader, visits VisitLookup, policy requestmeta.SchemePolicy, logger *slog.Logger) handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return handlers{service: s, ids: ids, visits: visits, notices: flashnotice.Jar{Policy: policy}, logger: logger}
}

func (h handlers) handleSwitch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, apperrors.EK(apperrors.KindInvalidInput, keyModeDenied, "failed to parse mode form"))
		return
	}
	state, _ := session.FromContext(r.Context())
	mode, err := h.service.switchMode(r.Context(), state.User, h.sessionID(r), r.FormValue(routepath.ModeFormField))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	label := webtemplates.T(loc, "shell.mode."+string(mode))
	h.notices.Set(w, r, flashnotice.NoticeSuccess(keyModeSwitched).WithArg(label))
	httpx.WriteReplaceRedirect(w, r, dashboardFor(mode))
}

// fail reports a rejected switch. A boosted request with a live shell gets
// the toast pushed over its channel and no navigation; anything else is
// redirected back with a flash notice.
func (h handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindUnauthorized {
		httpx.WriteReplaceRedirect(w, r, routepath.AuthLogin)
		return
	}
	if kind == apperrors.KindUnavailable {
		h.logger.ErrorContext(r.Context(), "mode switch failed",
			"request_id", httpx.RequestIDFrom(r),
			"error", err,
		)
	}
	if httpx.IsHTMXRequest(r) {
		if visit := h.visit(r); visit != nil {
			loc, _ := pagerender.Localizer(w, r)
			visit.Send(shell.Toast(string(flashnotice.KindError), weberror.PublicMessage(loc, err)))
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	key := apperrors.LocalizationKey(err)
	if key == "" {
		key = keyModeFailed
	}
	h.notices.Set(w, r, flashnotice.NoticeError(key))
	httpx.WriteReplaceRedirect(w, r, returnPath(r))
}

func (h handlers) sessionID(r *http.Request) string {
	if h.ids == nil {
		return ""
	}
	id, _ := h.ids.SessionID(r)
	return id
}

func (h handlers) visit(r *http.Request) *shell.Visit {
	if h.visits == nil {
		return nil
	}
	id := strings.TrimSpace(r.Header.Get(shell.VisitHeader))
	if id == "" {
		return nil
	}
	visit, ok := h.visits.Get(id)
	if !ok {
		return nil
	}
	return visit
}

func dashboardFor(mode session.Mode) string {
	if mode == session.ModeVendor {
		return routepath.VendorDashboard
	}
	return routepath.Dashboard
}

// returnPath sends the browser back to the page that posted the form.
func returnPath(r *http.Request) string {
	referer, err := url.Parse(strings.TrimSpace(r.Referer()))
	if err != nil || referer.Path == "" || (referer.Host != "" && referer.Host != r.Host) {
		return routepath.Root
	}
	target := referer.EscapedPath()
	if referer.RawQuery != "" {
		target += "?" + referer.RawQuery
	}
	if !routepath.IsLocalPath(target) {
		return routepath.Root
	}
	return target
}
