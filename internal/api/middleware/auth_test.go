package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, userID string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// echoHandler records the identity the middleware resolved.
func echoHandler(t *testing.T, got *uuid.UUID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok, "user id should be in context")
		*got = id
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuth_CookieToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, userID.String(), time.Hour)

	var got uuid.UUID
	handler := Auth(testSecret)(echoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, got)
}

// Cross-site cookie transport may wrap the value in quotes; a quoted
// cookie must resolve to the same identity as the bare token.
func TestAuth_QuotedCookieToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, userID.String(), time.Hour)

	for _, value := range []string{
		token,
		`"` + token + `"`,
	} {
		var got uuid.UUID
		handler := Auth(testSecret)(echoHandler(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Cookie", AccessTokenCookie+"="+value)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "cookie value %q", value)
		assert.Equal(t, userID, got, "cookie value %q", value)
	}
}

func TestAuth_BearerFallback(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, userID.String(), time.Hour)

	var got uuid.UUID
	handler := Auth(testSecret)(echoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, got)
}

func TestAuth_CookiePreferredOverHeader(t *testing.T) {
	cookieUser := uuid.New()
	headerUser := uuid.New()

	var got uuid.UUID
	handler := Auth(testSecret)(echoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signToken(t, testSecret, cookieUser.String(), time.Hour)})
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, headerUser.String(), time.Hour))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cookieUser, got)
}

// A missing credential is unauthenticated (401), never forbidden (403).
func TestAuth_NoToken(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// A credential that is present but unusable is forbidden (403).
func TestAuth_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret", uuid.NewString(), time.Hour)},
		{"expired", signToken(t, testSecret, uuid.NewString(), -time.Minute)},
		{"non-uuid subject", signToken(t, testSecret, "user-42", time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.token})

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}
