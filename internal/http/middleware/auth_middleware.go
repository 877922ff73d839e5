package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/poofware/cinema-api/internal/http/response"
	"github.com/poofware/cinema-api/internal/observability"
	"github.com/poofware/cinema-api/internal/security"
	"github.com/poofware/cinema-api/internal/service"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

// Auth is the authentication gate. A request passes only when it carries a
// bearer token that is cryptographically valid, carries a jti, and is not
// blacklisted. A token without a jti cannot participate in revocation and
// is never accepted. Blacklist reads fail closed: if the store cannot be
// reached the request is rejected rather than admitted unchecked.
func Auth(jwtMgr *security.JWTManager, blacklist service.TokenBlacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing", "none")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			claims, err := jwtMgr.Parse(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid", "bearer")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			if claims.ID == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing_jti", "bearer")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "token has no id claim", nil)
				return
			}
			revoked, err := blacklist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				observability.RecordBlacklistEvent(r.Context(), "lookup_error")
				response.Error(w, r, http.StatusServiceUnavailable, "BLACKLIST_UNAVAILABLE", "token revocation check unavailable", nil)
				return
			}
			if revoked {
				observability.RecordBlacklistEvent(r.Context(), "rejected")
				response.Error(w, r, http.StatusUnauthorized, "TOKEN_REVOKED", "this token has been revoked", nil)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid", "bearer")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
