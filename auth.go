package flightbridge

import (
	"context"

	"github.com/flightbridge/flightbridge/auth"
)

// Authenticator validates bearer tokens and returns user identity.
// This is re-exported from the auth package for convenience.
type Authenticator = auth.Authenticator

// BearerAuth creates an Authenticator from a validation function. This is
// the simplest way to add authentication to a Flight server.
//
//	authn := flightbridge.BearerAuth(func(token string) (string, error) {
//	    user, err := validateWithMyBackend(token)
//	    if err != nil {
//	        return "", flightbridge.ErrUnauthorized
//	    }
//	    return user.ID, nil
//	})
func BearerAuth(validateFunc func(token string) (identity string, err error)) Authenticator {
	return auth.BearerAuth(validateFunc)
}

// NoAuth returns an Authenticator that accepts any bearer token without
// validation; requests with no Bearer authorization header are still
// rejected by the server's interceptors. Useful for development and
// testing. DO NOT use in production.
func NoAuth() Authenticator {
	return auth.NoAuth()
}

// IdentityFromContext retrieves the authenticated user identity from
// context. Returns empty string if no identity is set.
func IdentityFromContext(ctx context.Context) string {
	return auth.IdentityFromContext(ctx)
}
