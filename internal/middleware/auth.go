package middleware

import (
	"context"
	"net/http"

	"github.com/EmptySpace206/PHRatings/internal/httputil"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

// ActorKind distinguishes the two authenticated identities. Flows never see
// credentials, only the resolved actor.
type ActorKind string

const (
	ActorPlayer ActorKind = "player"
	ActorAdmin  ActorKind = "admin"
)

type Actor struct {
	Kind ActorKind
	ID   uuid.UUID
}

type ContextKey string

const ActorKey ContextKey = "actor"

const (
	sessionPlayerID = "playerID"
	sessionAdminID  = "adminID"
)

// LoadActor resolves the session into an Actor on the request context. It
// never rejects; Require* middlewares do that.
func LoadActor(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if idStr := sessionManager.GetString(ctx, sessionAdminID); idStr != "" {
				if id, err := uuid.Parse(idStr); err == nil {
					ctx = context.WithValue(ctx, ActorKey, Actor{Kind: ActorAdmin, ID: id})
				}
			} else if idStr := sessionManager.GetString(ctx, sessionPlayerID); idStr != "" {
				if id, err := uuid.Parse(idStr); err == nil {
					ctx = context.WithValue(ctx, ActorKey, Actor{Kind: ActorPlayer, ID: id})
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || actor.Kind != ActorPlayer {
			httputil.Unauthorized(w, "Player authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || actor.Kind != ActorAdmin {
			httputil.Unauthorized(w, "Admin authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	val := ctx.Value(ActorKey)
	if val == nil {
		return Actor{}, false
	}
	actor, ok := val.(Actor)
	return actor, ok
}

// LoginPlayer and LoginAdmin store the resolved identity in the session.

func LoginPlayer(ctx context.Context, sessionManager *scs.SessionManager, id uuid.UUID) {
	sessionManager.Remove(ctx, sessionAdminID)
	sessionManager.Put(ctx, sessionPlayerID, id.String())
}

func LoginAdmin(ctx context.Context, sessionManager *scs.SessionManager, id uuid.UUID) {
	sessionManager.Remove(ctx, sessionPlayerID)
	sessionManager.Put(ctx, sessionAdminID, id.String())
}
