package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetSchema returns only the serialized Arrow schema for a dataset, per
// spec.md 4.F. Descriptor resolution and error semantics match GetFlightInfo.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	s.logger.Debug("GetSchema called", "type", desc.GetType())

	id, err := descriptorDatasetID(desc)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid descriptor: %v", err)
	}

	ds, ok := s.catalog.Get(id)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "dataset not found: %s", id)
	}

	return &flight.SchemaResult{
		Schema: flight.SerializeSchema(ds.ArrowSchema, s.allocator),
	}, nil
}
