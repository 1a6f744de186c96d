// Package reliability wraps Flight client calls with retry, circuit
// breaking, and connection health monitoring.
package reliability

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrCircuitOpen is returned by CircuitBreaker.Execute when the circuit
// breaker is open and fails calls fast.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// defaultRetryableSubstrings are matched case-insensitively against an
// error's message when it carries no gRPC status code.
var defaultRetryableSubstrings = []string{
	"econnreset",
	"econnrefused",
	"etimedout",
	"enotfound",
}

// defaultRetryableCodes are gRPC status codes treated as transient.
var defaultRetryableCodes = map[codes.Code]bool{
	codes.Unavailable:      true,
	codes.DeadlineExceeded: true,
}

// IsRetryable reports whether err represents a transient failure worth
// retrying: a gRPC Unavailable/DeadlineExceeded status, or a message
// containing one of the connection-level substrings it is matched
// against. context.Canceled is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	if st, ok := status.FromError(err); ok {
		if defaultRetryableCodes[st.Code()] {
			return true
		}
		if st.Code() != codes.Unknown {
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, substr := range defaultRetryableSubstrings {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
