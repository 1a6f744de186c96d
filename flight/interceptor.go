package flight

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flightbridge/flightbridge/auth"
)

// UnaryServerInterceptor validates bearer tokens via authenticator and
// propagates identity through context. A nil authenticator disables auth
// entirely, matching the "pluggable handshake hook" non-goal in spec.md §1.
func UnaryServerInterceptor(authenticator auth.Authenticator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx = EnrichContextMetadata(ctx)
		if authenticator == nil {
			return handler(ctx, req)
		}

		token, err := auth.TokenFromAuthorizationHeader(AuthorizationFromContext(ctx))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		ctx, err = auth.ValidateToken(ctx, token, authenticator)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(ctx, req)
	}
}

// StreamServerInterceptor is the streaming-RPC counterpart of
// UnaryServerInterceptor.
func StreamServerInterceptor(authenticator auth.Authenticator) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx := EnrichContextMetadata(ss.Context())
		wrapped := &wrappedServerStream{ServerStream: ss, ctx: ctx}

		if authenticator == nil {
			return handler(srv, wrapped)
		}

		token, err := auth.TokenFromAuthorizationHeader(AuthorizationFromContext(ctx))
		if err != nil {
			return status.Error(codes.Unauthenticated, err.Error())
		}

		ctx, err = auth.ValidateToken(ctx, token, authenticator)
		if err != nil {
			return status.Error(codes.Unauthenticated, err.Error())
		}
		wrapped.ctx = ctx

		return handler(srv, wrapped)
	}
}

// wrappedServerStream overrides grpc.ServerStream's Context with one
// enriched by the interceptor.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
