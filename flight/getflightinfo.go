package flight

import (
	"context"
	"encoding/json"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flightbridge/flightbridge/catalog"
)

// descriptorDatasetID resolves a FlightDescriptor to a dataset id per
// spec.md 3/6: PATH uses path[0]; CMD is parsed as JSON {dataset_id} or
// treated as an opaque id string.
func descriptorDatasetID(desc *flight.FlightDescriptor) (string, error) {
	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) == 0 || path[0] == "" {
			return "", ErrInvalidDescriptor
		}
		return path[0], nil
	case flight.DescriptorCMD:
		cmd := desc.GetCmd()
		if len(cmd) == 0 {
			return "", ErrInvalidDescriptor
		}
		var ticket TicketData
		if err := json.Unmarshal(cmd, &ticket); err == nil && ticket.DatasetID != "" {
			return ticket.DatasetID, nil
		}
		return string(cmd), nil
	default:
		return "", ErrInvalidDescriptor
	}
}

// buildFlightInfo constructs the FlightInfo for a catalog dataset, per
// spec.md 4.F's construction rule: schema is the dataset's serialized
// Arrow schema, descriptor is PATH[id], and the single endpoint carries a
// JSON ticket and this server's address.
func (s *Server) buildFlightInfo(ds catalog.Dataset) (*flight.FlightInfo, error) {
	ticket, err := EncodeTicket(ds.ID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode ticket: %v", err)
	}

	return &flight.FlightInfo{
		Schema: flight.SerializeSchema(ds.ArrowSchema, s.allocator),
		FlightDescriptor: &flight.FlightDescriptor{
			Type: flight.DescriptorPATH,
			Path: []string{ds.ID},
		},
		Endpoint: []*flight.FlightEndpoint{
			{
				Ticket:   &flight.Ticket{Ticket: ticket},
				Location: []*flight.Location{{Uri: s.address}},
			},
		},
		TotalRecords: ds.Metadata.TotalRecords,
		TotalBytes:   ds.Metadata.TotalBytes,
	}, nil
}

// GetFlightInfo resolves a FlightDescriptor to a dataset and returns its
// FlightInfo. Returns NOT_FOUND if the dataset is unknown, INVALID_ARGUMENT
// if the descriptor cannot be resolved to an id.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	s.logger.Debug("GetFlightInfo called", "type", desc.GetType())

	id, err := descriptorDatasetID(desc)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid descriptor: %v", err)
	}

	ds, ok := s.catalog.Get(id)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "dataset not found: %s", id)
	}

	info, err := s.buildFlightInfo(ds)
	if err != nil {
		s.logger.Error("failed to build flight info", "dataset", id, "error", err)
		return nil, err
	}

	s.logger.Debug("GetFlightInfo successful", "dataset", id, "num_fields", ds.ArrowSchema.NumFields())
	return info, nil
}
