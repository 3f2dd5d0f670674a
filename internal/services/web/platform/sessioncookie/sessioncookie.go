// Package sessioncookie centralizes web session cookie behavior.
//
// The cookie value is an HS256 JWT whose subject is the session id, so a
// tampered or foreign cookie never reaches the session store.
package sessioncookie

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/requestmeta"
)

// Name is the canonical web session cookie name.
const Name = "storefront_session"

const issuer = "storefront-web"

// minKeyBytes is the shortest accepted HMAC secret.
const minKeyBytes = 32

var (
	// ErrInvalid reports a cookie token that failed verification.
	ErrInvalid = errors.New("session cookie is invalid")
	// ErrExpired reports a cookie token past its expiry.
	ErrExpired = errors.New("session cookie is expired")
)

// Codec signs and verifies session cookie tokens.
type Codec struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	policy requestmeta.SchemePolicy
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSchemePolicy controls how the Secure flag is resolved.
func WithSchemePolicy(policy requestmeta.SchemePolicy) Option {
	return func(c *Codec) {
		c.policy = policy
	}
}

// NewCodec builds a codec for the given HMAC key and token lifetime.
func NewCodec(key []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("session cookie key must be at least %d bytes", minKeyBytes)
	}
	if ttl <= 0 {
		return nil, errors.New("session cookie ttl must be positive")
	}
	codec := &Codec{key: append([]byte(nil), key...), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(codec)
		}
	}
	return codec, nil
}

// Sign returns a token carrying sessionID.
func (c *Codec) Sign(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	now := c.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return token, nil
}

// Verify returns the session id carried by token.
func (c *Codec) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalid
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	sessionID := strings.TrimSpace(claims.Subject)
	if sessionID == "" {
		return "", ErrInvalid
	}
	return sessionID, nil
}

// SessionID reads and verifies the session cookie on r.
func (c *Codec) SessionID(r *http.Request) (string, bool) {
	token, ok := Read(r)
	if !ok {
		return "", false
	}
	sessionID, err := c.Verify(token)
	if err != nil {
		return "", false
	}
	return sessionID, true
}

// Write signs sessionID and sets it as the session cookie.
func (c *Codec) Write(w http.ResponseWriter, r *http.Request, sessionID string) error {
	if w == nil {
		return errors.New("response writer is required")
	}
	token, err := c.Sign(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl / time.Second),
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, c.policy),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (c *Codec) Clear(w http.ResponseWriter, r *http.Request) {
	ClearWithPolicy(w, r, c.policy)
}

// Read returns the trimmed raw session cookie value when present.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// ClearWithPolicy expires the session cookie for the current request context.
func ClearWithPolicy(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, policy),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
