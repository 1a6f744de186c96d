package client

import (
	"errors"
	"io"
)

// ErrNotConnected is returned by any operation attempted before Connect
// has succeeded.
var ErrNotConnected = errors.New("client: not connected")

// isStreamEnd reports whether err is the normal end-of-stream signal from
// a server-streaming gRPC call.
func isStreamEnd(err error) bool {
	return errors.Is(err, io.EOF)
}
