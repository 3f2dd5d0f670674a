// Package pagerender writes page views inside the storefront app shell.
package pagerender

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	webi18n "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/i18n"
	flashnotice "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/flash"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/httpx"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/shell"
	webtemplates "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

// Page describes one shell response.
type Page struct {
	Title      string
	StatusCode int
	Body       templ.Component
	// NoStore marks responses that depend on transient session state.
	NoStore bool
}

// Localizer resolves the request localizer and language tag, setting the
// language cookie when the request picked a language explicitly.
func Localizer(w http.ResponseWriter, r *http.Request) (webtemplates.Localizer, string) {
	return webi18n.ResolveLocalizer(w, r)
}

// Write renders page inside the app layout. The document is rendered into a
// buffer first so a failing component never produces partial output; on
// error nothing is written and the error is returned.
func Write(w http.ResponseWriter, r *http.Request, page Page) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	body := page.Body
	if body == nil {
		body = webtemplates.Empty()
	}

	loc, lang := Localizer(w, r)
	ctx := httpx.RequestContext(r)
	visit, partial := shell.FromContext(ctx)
	path, query := "", ""
	if r != nil && r.URL != nil {
		path, query = r.URL.Path, r.URL.RawQuery
	}

	opts := webtemplates.LayoutOptions{
		Title:         page.Title,
		Lang:          lang,
		Loc:           loc,
		CurrentPath:   path,
		CurrentQuery:  query,
		ShowPreloader: visit.HasPreloader() && !partial,
		ShowBottomNav: !shell.IsDashboardRoute(path),
		RoleSwitch:    roleSwitch(loc, ctx),
		Toast:         flashToast(w, r, loc),
	}
	if visit != nil {
		opts.VisitID = visit.ID()
	}

	var buf bytes.Buffer
	if err := webtemplates.AppLayout(opts).Render(templ.WithChildren(ctx, body), &buf); err != nil {
		return err
	}
	if page.NoStore {
		httpx.NoStore(w)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
	visit.MarkRendered()
	return nil
}

func roleSwitch(loc webtemplates.Localizer, ctx context.Context) *webtemplates.RoleSwitch {
	state, ok := session.FromContext(ctx)
	if !ok || !state.SignedIn() || !state.User.CanSwitchModes() {
		return nil
	}
	target := session.ModeVendor
	labelKey := "shell.role_switch.to_vendor"
	if state.User.Mode == session.ModeVendor {
		target = session.ModeCustomer
		labelKey = "shell.role_switch.to_customer"
	}
	return &webtemplates.RoleSwitch{
		TargetMode: string(target),
		Label:      webtemplates.T(loc, labelKey),
	}
}

func flashToast(w http.ResponseWriter, r *http.Request, loc webtemplates.Localizer) *webtemplates.Toast {
	if r == nil {
		return nil
	}
	notice, ok := flashnotice.Jar{}.Take(w, r)
	if !ok {
		return nil
	}
	var message string
	if notice.Arg != "" {
		message = webtemplates.T(loc, notice.Key, notice.Arg)
	} else {
		message = webtemplates.T(loc, notice.Key)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	return &webtemplates.Toast{Kind: string(notice.Kind), Message: message}
}
