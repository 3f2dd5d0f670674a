// Package weberror renders the app error boundary and the access pages
// shared by storefront routes.
package weberror

import (
	"net/http"
	"strings"

	apperrors "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/errors"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/pagerender"
	webtemplates "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

// ShouldRenderAppError reports whether status should use the app error page.
func ShouldRenderAppError(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// PublicMessage resolves a user-safe localized error message.
func PublicMessage(loc webtemplates.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if loc != nil {
		if key := apperrors.LocalizationKey(err); key != "" {
			if localized := strings.TrimSpace(loc.Sprintf(key)); localized != "" && localized != key {
				return localized
			}
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	if text := strings.TrimSpace(http.StatusText(statusCode)); text != "" {
		return text
	}
	return http.StatusText(http.StatusInternalServerError)
}

// WriteAppError writes the localized app error page. Statuses without a
// dedicated page render as 500.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int) {
	if w == nil {
		return
	}
	if !ShouldRenderAppError(statusCode) {
		statusCode = http.StatusInternalServerError
	}
	loc, _ := pagerender.Localizer(w, r)
	err := pagerender.Write(w, r, pagerender.Page{
		Title:      webtemplates.AppErrorPageTitle(statusCode, loc),
		StatusCode: statusCode,
		Body:       webtemplates.AppErrorState(statusCode, loc),
		NoStore:    statusCode >= http.StatusInternalServerError,
	})
	if err != nil {
		http.Error(w, http.StatusText(statusCode), statusCode)
	}
}

// WriteError maps err to a status and writes the matching response. Client
// errors render as plain localized text.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if w == nil {
		return
	}
	statusCode := apperrors.HTTPStatus(err)
	if ShouldRenderAppError(statusCode) {
		WriteAppError(w, r, statusCode)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	http.Error(w, PublicMessage(loc, err), statusCode)
}

// WriteAccessDenied writes the 403 page for sessions lacking a capability.
func WriteAccessDenied(w http.ResponseWriter, r *http.Request) {
	loc, _ := pagerender.Localizer(w, r)
	err := pagerender.Write(w, r, pagerender.Page{
		Title:      webtemplates.T(loc, "error.denied.title"),
		StatusCode: http.StatusForbidden,
		Body:       webtemplates.AccessDenied(loc),
		NoStore:    true,
	})
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	}
}

// WriteSwitchMode writes the 403 page for sessions in the wrong mode,
// offering the switch when canSwitch is set.
func WriteSwitchMode(w http.ResponseWriter, r *http.Request, targetMode string, canSwitch bool) {
	loc, _ := pagerender.Localizer(w, r)
	err := pagerender.Write(w, r, pagerender.Page{
		Title:      webtemplates.T(loc, "error.switch_mode.title"),
		StatusCode: http.StatusForbidden,
		Body:       webtemplates.SwitchModePrompt(loc, targetMode, canSwitch),
		NoStore:    true,
	})
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	}
}

// Boundary is the fallback rendered after a recovered panic.
func Boundary() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteAppError(w, r, http.StatusInternalServerError)
	})
}
