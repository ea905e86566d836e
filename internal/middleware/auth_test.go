package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grbod/labtrack/internal/domain"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func echoPrincipal() (http.Handler, *domain.Principal) {
	var captured domain.Principal
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = domain.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &captured
}

func TestAuth(t *testing.T) {
	t.Parallel()

	keyHash := sha256.Sum256([]byte("raw-key-123"))
	apiKeys := []APIKey{{Hash: hex.EncodeToString(keyHash[:]), Principal: "importer"}}

	t.Run("valid jwt sets principal", func(t *testing.T) {
		t.Parallel()
		inner, captured := echoPrincipal()
		h := Auth(testSecret, nil)(inner)

		req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
			"sub":   "alice",
			"admin": true,
			"exp":   time.Now().Add(time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", captured.Name)
		assert.True(t, captured.IsAdmin)
		assert.Equal(t, "user", captured.Type)
	})

	t.Run("expired jwt rejected", func(t *testing.T) {
		t.Parallel()
		inner, _ := echoPrincipal()
		h := Auth(testSecret, nil)(inner)

		req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
			"sub": "alice",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("jwt without sub rejected", func(t *testing.T) {
		t.Parallel()
		inner, _ := echoPrincipal()
		h := Auth(testSecret, nil)(inner)

		req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid api key sets principal", func(t *testing.T) {
		t.Parallel()
		inner, captured := echoPrincipal()
		h := Auth(testSecret, apiKeys)(inner)

		req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
		req.Header.Set("X-API-Key", "raw-key-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "importer", captured.Name)
		assert.Equal(t, "api_key", captured.Type)
	})

	t.Run("unknown api key rejected", func(t *testing.T) {
		t.Parallel()
		inner, _ := echoPrincipal()
		h := Auth(testSecret, apiKeys)(inner)

		req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
		req.Header.Set("X-API-Key", "wrong-key")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no credentials rejected", func(t *testing.T) {
		t.Parallel()
		inner, _ := echoPrincipal()
		h := Auth(testSecret, nil)(inner)

		req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireAdmin(inner)

	t.Run("admin passes", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodDelete, "/v1/lots/1", nil)
		req = req.WithContext(domain.WithPrincipal(req.Context(), domain.Principal{Name: "root", IsAdmin: true}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodDelete, "/v1/lots/1", nil)
		req = req.WithContext(domain.WithPrincipal(req.Context(), domain.Principal{Name: "alice"}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
