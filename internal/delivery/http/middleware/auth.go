package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xuantoan98/event-ticketing-backend/internal/delivery/http/helpers"
	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// SetActor returns a context with the actor set. Used by auth middleware.
func SetActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor from the context, if present.
func ActorFromContext(ctx context.Context) (*domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*domain.Actor)
	return actor, ok
}

// RequireActor returns a wrapper that validates the Bearer token, resolves the
// token subject to a full actor (id, role, display name) through the identity
// collaborator, and sets the actor in the request context. If the token is
// missing or invalid, or the subject no longer resolves, it responds with 401
// and does not call next. No anonymous access passes this middleware.
func RequireActor(verifier domain.TokenVerifier, identities domain.IdentityResolver, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing token")
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			ident, err := identities.Resolve(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					logger.ErrorContext(r.Context(), "actor resolution failed", "user_id", userID, "err", err)
				}
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unknown user")
				return
			}
			actor := &domain.Actor{ID: ident.ID, Role: ident.Role, DisplayName: ident.DisplayName}
			r = r.WithContext(SetActor(r.Context(), actor))
			next(w, r)
		}
	}
}
