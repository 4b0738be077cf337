// Package auth handles the staff identity session. The identity provider is
// external; this package only verifies its tokens and carries the resulting
// session through request contexts.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/araute/storefront-admin/internal/gateway"
)

const SessionCookie = "staff_session"

// Session is the read-only identity of the signed-in staff member.
type Session struct {
	UserID  string
	LoginID string
	Token   string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}

// Verifier checks staff tokens issued by the identity provider.
type Verifier struct {
	Secret []byte
}

func (v *Verifier) Parse(token string) (*Session, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	login, _ := claims["email"].(string)
	return &Session{UserID: sub, LoginID: login, Token: token}, nil
}

// ServiceToken signs a staff token for the service's own background calls,
// used when no operator-issued credential is configured. No expiry: the token
// lives as long as the process that minted it.
func ServiceToken(secret []byte, subject string) (string, error) {
	claims := jwt.MapClaims{"sub": subject, "iat": time.Now().Unix()}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Middleware attaches the session when a valid token rides along, either as
// a bearer header or the session cookie, and forwards it as the elevated
// gateway context. Requests without a token pass through anonymous.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			}
		}
		if tok != "" {
			if s, err := v.Parse(tok); err == nil {
				ctx := WithSession(r.Context(), s)
				ctx = gateway.WithStaffToken(ctx, s.Token)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession guards routes that must not run anonymous.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"staff session required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SignOut expires the session cookie. Token revocation is the identity
// provider's concern.
func SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
