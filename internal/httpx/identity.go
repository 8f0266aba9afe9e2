package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-basket/internal/basket"
	"github.com/ariefcatur/go-basket/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionLoader interface {
	Load(ctx context.Context, id string) (*session.Handle, error)
}

// IdentityMiddleware resolves who is calling. The upstream auth layer puts the user id
// in UserHeader; callers without one get a session, issued as a cookie on first visit.
type IdentityMiddleware struct {
	Sessions   SessionLoader
	Cookie     string
	UserHeader string
	TTL        time.Duration
	Log        *zap.Logger
}

type identityKey struct{}

func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := basket.Identity{
			UserID:  r.Header.Get(m.UserHeader),
			TraceID: middleware.GetReqID(r.Context()),
		}
		if !id.Authenticated() {
			h, err := m.session(w, r)
			if err != nil {
				m.Log.Error("load session", zap.Error(err))
				writeError(w, err)
				return
			}
			id.Session = h
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

func (m *IdentityMiddleware) session(w http.ResponseWriter, r *http.Request) (*session.Handle, error) {
	var sid string
	if c, err := r.Cookie(m.Cookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			sid = c.Value
		}
	}
	if sid == "" {
		sid = session.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     m.Cookie,
			Value:    sid,
			Path:     "/",
			MaxAge:   int(m.TTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return m.Sessions.Load(r.Context(), sid)
}

func IdentityFrom(ctx context.Context) (basket.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(basket.Identity)
	return id, ok
}
