package middleware

import (
	"net/http"
	"strings"

	"github.com/blogem/defect-tracker/access"
	"github.com/blogem/defect-tracker/authenticator"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/userctx"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// withPrincipal attaches p to the request and to its log entry
func withPrincipal(r *http.Request, p models.Principal) *http.Request {
	if h, ok := r.Context().Value(principalHolderKey{}).(*principalHolder); ok {
		h.userID = p.UserID
	}
	return r.WithContext(userctx.SetPrincipal(r.Context(), p))
}

// RequireAuth ensures the request carries a valid bearer token.
// The resolved principal is added to the request context.
func RequireAuth(auth authenticator.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				WriteError(w, r, errs.Unauthenticated("missing bearer token"))
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, withPrincipal(r, *p))
		})
	}
}

// OptionalAuth resolves a principal when a bearer token is present and
// rejects invalid ones, but lets anonymous requests through.
func OptionalAuth(auth authenticator.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, withPrincipal(r, *p))
		})
	}
}

// Authorize rejects principals whose role may not perform op.
// It must run after RequireAuth.
func Authorize(op access.Operation, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := userctx.GetPrincipal(r.Context())
			if !ok {
				WriteError(w, r, errs.Unauthenticated("authentication required"))
				return
			}
			if !access.Authorize(p.Role, op) {
				m.AuthorizationDenied(string(op))
				WriteError(w, r, errs.Forbidden("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
