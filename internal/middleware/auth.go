// Package middleware provides HTTP middleware: authentication, request
// IDs, request logging, and rate limiting.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/grbod/labtrack/internal/domain"
)

// APIKey is a statically configured key. Hash is the hex-encoded SHA-256
// of the raw key; raw keys never appear in config.
type APIKey struct {
	Hash      string
	Principal string
}

// Auth tries a JWT Bearer token first, then the X-API-Key header.
// Requests that present neither, or present invalid credentials, get 401.
// The resolved principal is stored in the request context for the audit
// recorder.
func Auth(jwtSecret []byte, apiKeys []APIKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenStr := strings.TrimPrefix(auth, "Bearer ")
				if p, ok := principalFromJWT(tokenStr, jwtSecret); ok {
					next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
					return
				}
			}

			if key := r.Header.Get("X-API-Key"); key != "" {
				sum := sha256.Sum256([]byte(key))
				hash := hex.EncodeToString(sum[:])
				for _, k := range apiKeys {
					if subtle.ConstantTimeCompare([]byte(hash), []byte(k.Hash)) == 1 {
						p := domain.Principal{Name: k.Principal, Type: "api_key"}
						next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
						return
					}
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code":    401,
				"message": "unauthorized: provide a valid JWT Bearer token or API key",
			})
		})
	}
}

func principalFromJWT(tokenStr string, secret []byte) (domain.Principal, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Principal{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, false
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return domain.Principal{}, false
	}
	admin, _ := claims["admin"].(bool)
	return domain.Principal{Name: sub, IsAdmin: admin, Type: "user"}, true
}

// RequireAdmin gates a route on the admin claim. Must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok || !p.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code":    403,
				"message": "admin privileges required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
