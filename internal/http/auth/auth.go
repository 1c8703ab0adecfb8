// Package auth checks optional bearer tokens issued to app users. A token's
// subject is the owner id it may act for.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/futapay/relay/internal/http/api"
)

var ErrForbidden = errors.New("token does not grant access to this owner")

type ctxKey struct{}

// Authenticator validates HS256 tokens. A zero secret disables
// authentication.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func New(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Middleware rejects requests without a valid token and stores the token
// subject on the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	if !a.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			api.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		subject, err := a.subject(strings.TrimSpace(raw))
		if err != nil {
			slog.Warn("rejected token", "error", err)
			api.Error(w, http.StatusUnauthorized, "invalid token")

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, subject)))
	})
}

func (a *Authenticator) subject(raw string) (string, error) {
	var claims jwt.RegisteredClaims

	if _, err := a.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}); err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}

	return claims.Subject, nil
}

// Issue signs a token for owner. It backs tests and operator tooling.
func (a *Authenticator) Issue(owner string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = owner

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authorize checks that the caller may act for owner. Without
// authentication every owner is allowed.
func Authorize(ctx context.Context, owner string) error {
	subject, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return nil
	}

	if subject != owner {
		return ErrForbidden
	}

	return nil
}
