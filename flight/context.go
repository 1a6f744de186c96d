package flight

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey int

const flightParamsKey contextKey = iota

// Metadata header keys carried on inbound Flight RPCs.
const (
	HeaderAuthorization = "authorization"
	HeaderTraceID       = "flightbridge-trace-id"
	HeaderSessionID     = "flightbridge-client-session-id"
)

// ContextMeta holds request-scoped values extracted from gRPC metadata.
type ContextMeta struct {
	Authorization string
	TraceID       string
	SessionID     string
}

func WithContextMeta(ctx context.Context, meta ContextMeta) context.Context {
	return context.WithValue(ctx, flightParamsKey, &meta)
}

func MetaFromContext(ctx context.Context) *ContextMeta {
	val := ctx.Value(flightParamsKey)
	if val == nil {
		return nil
	}
	meta, ok := val.(*ContextMeta)
	if !ok {
		return nil
	}
	return meta
}

// AuthorizationFromContext retrieves the authorization header from context.
func AuthorizationFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.Authorization
	}
	return ""
}

// TraceIDFromContext returns the trace ID from context, or empty string.
func TraceIDFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.TraceID
	}
	return ""
}

// SessionIDFromContext returns the session ID from context, or empty string.
func SessionIDFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.SessionID
	}
	return ""
}

// EnrichContextMetadata extracts gRPC metadata into a ContextMeta and
// stores it on the context. Already-enriched contexts pass through
// unchanged.
func EnrichContextMetadata(ctx context.Context) context.Context {
	if MetaFromContext(ctx) != nil {
		return ctx
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	var meta ContextMeta
	if values := md.Get(HeaderAuthorization); len(values) > 0 {
		meta.Authorization = values[0]
	}
	if values := md.Get(HeaderTraceID); len(values) > 0 {
		meta.TraceID = values[0]
	}
	if values := md.Get(HeaderSessionID); len(values) > 0 {
		meta.SessionID = values[0]
	}

	return WithContextMeta(ctx, meta)
}
