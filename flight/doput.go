package flight

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DoPut acknowledges each inbound data message without any ingestion
// side-effect, per spec.md 4.F and the Non-goals in §1: this server does
// not persist or mutate datasets.
func (s *Server) DoPut(stream flight.FlightService_DoPutServer) error {
	s.logger.Debug("DoPut called")

	count := 0
	for {
		_, err := stream.Recv()
		if err == io.EOF {
			s.logger.Debug("DoPut completed", "messages", count)
			return nil
		}
		if err != nil {
			s.logger.Error("DoPut recv failed", "error", err)
			return status.Errorf(codes.Internal, "failed to receive message: %v", err)
		}

		count++
		if err := stream.Send(&flight.PutResult{AppMetadata: nil}); err != nil {
			s.logger.Error("DoPut send failed", "error", err)
			return status.Errorf(codes.Internal, "failed to send put result: %v", err)
		}
	}
}
