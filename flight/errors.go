package flight

import "errors"

// Sentinel errors for package-local conditions that are translated to a
// gRPC status at the RPC boundary, not returned to callers directly.
var (
	// ErrDatasetNotFound names the condition of a requested dataset id being
	// absent from the catalog. The handlers do not return it; they report
	// that case with a NotFound status built from its own message text.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrInvalidDescriptor is returned when a FlightDescriptor cannot be
	// resolved to a dataset id.
	ErrInvalidDescriptor = errors.New("invalid flight descriptor")

	// ErrInvalidTicket is returned when ticket bytes cannot be decoded into
	// a dataset id.
	ErrInvalidTicket = errors.New("invalid ticket")

	// ErrUnknownAction is returned when DoAction receives an action type
	// this server does not implement.
	ErrUnknownAction = errors.New("unknown action type")
)
