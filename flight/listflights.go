package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ListFlights emits one FlightInfo per dataset in the catalog, in catalog
// insertion (directory-scan) order, per spec.md 4.F and 5. Criteria is
// unused: this server has no filtering concept beyond the dataset set
// itself.
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	s.logger.Debug("ListFlights called")

	datasets := s.catalog.All()
	for _, ds := range datasets {
		info, err := s.buildFlightInfo(ds)
		if err != nil {
			s.logger.Error("failed to build flight info", "dataset", ds.ID, "error", err)
			return status.Errorf(codes.Internal, "failed to build flight info for %q: %v", ds.ID, err)
		}
		if err := stream.Send(info); err != nil {
			s.logger.Error("failed to send flight info", "dataset", ds.ID, "error", err)
			return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
		}
	}

	s.logger.Debug("ListFlights completed", "count", len(datasets))
	return nil
}
