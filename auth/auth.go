// Package auth authenticates Flight RPCs with a bearer token and carries
// the resulting identity on the request context.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")
	ErrTokenIsEmpty      = errors.New("authorization token is empty")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Authenticator validates a bearer token and returns the caller's identity.
// Implementations must be goroutine-safe; flightbridge calls Authenticate
// concurrently from every in-flight RPC.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

type noAuthenticator struct{}

// NoAuth accepts any token, reporting identity "anonymous". The flight
// interceptors still reject calls that carry no non-empty Bearer
// authorization header before Authenticate is reached. For development only.
func NoAuth() Authenticator {
	return noAuthenticator{}
}

func (noAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	return "anonymous", nil
}

type identityContextKey struct{}

// WithIdentity attaches the authenticated caller's identity to ctx.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity set by WithIdentity, or "" if
// the request was never authenticated (no Authenticator configured).
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityContextKey{}).(string)
	return identity
}

const bearerPrefix = "Bearer "

// TokenFromAuthorizationHeader extracts the token from an "Authorization:
// Bearer <token>" header value.
func TokenFromAuthorizationHeader(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// ValidateToken authenticates token against authenticator and, on success,
// returns ctx enriched with the resulting identity.
func ValidateToken(ctx context.Context, token string, authenticator Authenticator) (context.Context, error) {
	if token == "" {
		return ctx, ErrTokenIsEmpty
	}
	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, ErrUnauthenticated
	}
	return WithIdentity(ctx, identity), nil
}
