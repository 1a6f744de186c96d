package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var knownActions = []*flight.ActionType{
	{Type: actionRefreshDatasets, Description: "Re-scan the data directory and replace the catalog's contents"},
	{Type: actionGetServerInfo, Description: "Return server identity, configuration, and dataset summary"},
}

// ListActions emits the server's supported action types.
func (s *Server) ListActions(_ *flight.Empty, stream flight.FlightService_ListActionsServer) error {
	for _, a := range knownActions {
		if err := stream.Send(a); err != nil {
			return status.Errorf(codes.Internal, "failed to send action type: %v", err)
		}
	}
	return nil
}
