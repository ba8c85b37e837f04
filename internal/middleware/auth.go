package middleware

import (
	"context"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

type AuthMiddleware struct {
	jwtSecret []byte
}

func NewAuthMiddleware(secret []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: secret}
}

// RequireAuth resolves the session token to a user id and stores it in the
// request context. Requests without a valid session are rejected before any
// handler runs. The token normally travels in the session cookie; a bearer
// Authorization header is accepted as an alternative transport.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			tokenStr = c.Value
		} else if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
			tokenStr = strings.TrimPrefix(authz, "Bearer ")
		}
		if tokenStr == "" {
			http.Error(w, "missing session", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "invalid claims", http.StatusUnauthorized)
			return
		}
		sub, ok := claims["sub"].(float64)
		if !ok {
			http.Error(w, "invalid subject", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), "userID", int(sub))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
