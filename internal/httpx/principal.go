package httpx

import (
	"context"
	"net/http"

	"github.com/pickleparadise/pickle-store/internal/domain"
)

type principalKey struct{}

// WithPrincipal reads the identity the gateway asserted via headers and
// rejects anonymous requests. Credential verification happens upstream.
func WithPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
			return
		}
		role := domain.Role(r.Header.Get("X-User-Role"))
		switch role {
		case domain.RoleAdmin, domain.RoleStaff, domain.RoleCustomer:
		default:
			role = domain.RoleCustomer
		}
		p := domain.Principal{
			UserID: userID,
			Email:  r.Header.Get("X-User-Email"),
			Role:   role,
		}
		ctx := context.WithValue(r.Context(), principalKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(r *http.Request) domain.Principal {
	p, _ := r.Context().Value(principalKey{}).(domain.Principal)
	return p
}
