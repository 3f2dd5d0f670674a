// Package flash carries one-time toast notices across a redirect.
//
// A handler that redirects sets a notice on the response; the next full page
// render takes it, clears the cookie and shows it in the shell toast region.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
)

// CookieName names the notice cookie.
const CookieName = "storefront_flash"

// Kind is the toast style of a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice references a localized message. Arg is interpolated into it.
type Notice struct {
	Kind Kind   `json:"k"`
	Key  string `json:"m"`
	Arg  string `json:"a,omitempty"`
}

// NoticeSuccess creates a success notice for key.
func NoticeSuccess(key string) Notice { return Notice{Kind: KindSuccess, Key: key} }

// NoticeError creates an error notice for key.
func NoticeError(key string) Notice { return Notice{Kind: KindError, Key: key} }

// WithArg returns a copy of n carrying arg.
func (n Notice) WithArg(arg string) Notice {
	n.Arg = strings.TrimSpace(arg)
	return n
}

func (n Notice) clean() (Notice, bool) {
	n.Kind = Kind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
	n.Key = strings.TrimSpace(n.Key)
	n.Arg = strings.TrimSpace(n.Arg)
	if n.Key == "" {
		return Notice{}, false
	}
	switch n.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
		return n, true
	}
	return Notice{}, false
}

// Jar reads and writes notice cookies. The zero Jar marks cookies Secure
// only for direct TLS requests.
type Jar struct {
	Policy requestmeta.SchemePolicy
}

// Set stores n for the next page render. Invalid notices are dropped.
func (j Jar) Set(w http.ResponseWriter, r *http.Request, n Notice) {
	if w == nil {
		return
	}
	n, ok := n.clean()
	if !ok {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, j.cookie(r, base64.RawURLEncoding.EncodeToString(payload), 0))
}

// Take returns the pending notice and expires its cookie. A malformed cookie
// is still expired.
func (j Jar) Take(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Notice{}, false
	}
	if w != nil {
		http.SetCookie(w, j.cookie(r, "", -1))
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(cookie.Value))
	if err != nil {
		return Notice{}, false
	}
	var n Notice
	if err := json.Unmarshal(payload, &n); err != nil {
		return Notice{}, false
	}
	return n.clean()
}

func (j Jar) cookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, j.Policy),
		SameSite: http.SameSiteLaxMode,
	}
}
