package flight

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const handshakeResponsePayload = "handshake-response"

// Handshake echoes each inbound payload with a response carrying the same
// protocol version (defaulting to 1) and a fixed acknowledgement payload.
// It exists to support a pluggable auth handshake; this server performs no
// credential exchange of its own, per spec.md 4.F.
func (s *Server) Handshake(stream flight.FlightService_HandshakeServer) error {
	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return status.Errorf(codes.Internal, "handshake recv failed: %v", err)
		}

		version := req.GetProtocolVersion()
		if version == 0 {
			version = 1
		}

		resp := &flight.HandshakeResponse{
			ProtocolVersion: version,
			Payload:         []byte(handshakeResponsePayload),
		}
		if err := stream.Send(resp); err != nil {
			return status.Errorf(codes.Internal, "handshake send failed: %v", err)
		}
	}
}
