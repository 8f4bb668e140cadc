package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const userIDKey ctxKey = iota

// Authenticator verifies HS256 bearer tokens and stores the caller id on the request context.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Middleware rejects requests without a valid token. Browsers cannot set headers on a
// websocket handshake, so the token may also arrive as ?token=.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			writeError(w, fmt.Errorf("%w: authorization header missing", domain.ErrUnauthorized))
			return
		}
		userID, err := a.Parse(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// Parse validates a token and returns the user id from the "id" claim, falling back to "sub".
func (a *Authenticator) Parse(raw string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	switch id := claims["id"].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", id), nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("%w: token carries no user id", domain.ErrUnauthorized)
}

// Issue signs a token for userID valid for ttl.
func (a *Authenticator) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
