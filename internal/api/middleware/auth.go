package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/estately/api/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

// AccessTokenCookie is the name of the HTTP-only auth cookie.
const AccessTokenCookie = "access_token"

// UserID returns the authenticated user id attached by Auth.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// WithUserID attaches an authenticated user id to the context. Used by
// Auth; exported for handler tests.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Auth resolves the request's credential into an authenticated identity.
// The access_token cookie is preferred; an Authorization bearer header is
// the fallback. A missing credential is 401; a present but invalid one is
// 403 — the two are never conflated.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := extractToken(r)
			if tokenStr == "" {
				utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized: no token provided")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				utils.ErrorResponse(w, http.StatusForbidden, "Forbidden: token is invalid or expired")
				return
			}

			rawID, _ := claims["userId"].(string)
			userID, err := uuid.Parse(rawID)
			if err != nil {
				utils.ErrorResponse(w, http.StatusForbidden, "Forbidden: token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// extractToken pulls the credential from the cookie or, failing that, the
// Authorization header. Cross-site cookie transport may wrap the value in
// quotes, so cookie-sourced tokens are unquoted and trimmed; header tokens
// are used verbatim.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		v := strings.TrimSpace(c.Value)
		v = strings.Trim(v, `"`)
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
