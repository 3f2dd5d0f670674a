package rolemode

import (
	"context"
	"errors"

	apperrors "github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/platform/errors"
	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/session"
)

const (
	keyModeDenied = "shell.toast.mode_denied"
	keyModeFailed = "shell.toast.mode_failed"
)

type service struct {
	store session.Store
}

func newService(store session.Store) service {
	return service{store: store}
}

// switchMode validates raw against the user's capabilities and persists it.
func (s service) switchMode(ctx context.Context, user *session.User, sessionID string, raw string) (session.Mode, error) {
	if user == nil || sessionID == "" {
		return session.ModeNone, apperrors.E(apperrors.KindUnauthorized, "session is required")
	}
	mode, ok := session.ParseMode(raw)
	if !ok {
		return session.ModeNone, apperrors.EK(apperrors.KindInvalidInput, keyModeDenied, "unknown mode")
	}
	if !user.Has(session.CapabilityFor(mode)) {
		return session.ModeNone, apperrors.EK(apperrors.KindForbidden, keyModeDenied, "mode not permitted")
	}
	if s.store == nil {
		return session.ModeNone, apperrors.EK(apperrors.KindUnavailable, keyModeFailed, "session store unavailable")
	}
	if err := s.store.SetMode(ctx, sessionID, mode); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return session.ModeNone, apperrors.Wrap(apperrors.KindUnauthorized, "session expired", err)
		}
		return session.ModeNone, apperrors.Error{Kind: apperrors.KindUnavailable, Key: keyModeFailed, Message: "persist mode", Err: err}
	}
	return mode, nil
}
