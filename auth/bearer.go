package auth

import "context"

type bearerAuthenticator struct {
	validate func(token string) (identity string, err error)
}

// BearerAuth adapts a plain token-validation function into an
// Authenticator. It is the simplest way to plug an existing identity
// backend into a Flight server.
//
//	authn := BearerAuth(func(token string) (string, error) {
//	    user, err := validateWithMyBackend(token)
//	    if err != nil {
//	        return "", ErrUnauthenticated
//	    }
//	    return user.ID, nil
//	})
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return &bearerAuthenticator{validate: validate}
}

func (b *bearerAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	return b.validate(token)
}
