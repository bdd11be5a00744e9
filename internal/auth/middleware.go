package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

type ctxKey struct{}

// WithIdentity кладет identity в контекст
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom достает identity из контекста запроса
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Authenticate проверяет заголовок Authorization и кладет identity в контекст.
// Отсутствие токена - 401, невалидный/протухший токен - 403.
func (m *TokenManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, r, http.StatusUnauthorized, "missing authorization header")
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header || raw == "" {
			respond.Error(w, r, http.StatusUnauthorized, "malformed authorization header")
			return
		}

		identity, err := m.Verify(raw)
		if err != nil {
			respond.Error(w, r, http.StatusForbidden, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin пропускает только администраторов.
// Должен стоять после Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			respond.Error(w, r, http.StatusUnauthorized, "missing authorization header")
			return
		}
		if identity.Role != model.RoleAdmin {
			respond.Error(w, r, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
