package flight

import (
	"os"

	flightpb "github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flightbridge/flightbridge/arrowbuild"
	"github.com/flightbridge/flightbridge/csvsource"
	"github.com/flightbridge/flightbridge/internal/recovery"
)

// DoGet streams a dataset's rows as Arrow Flight data, per spec.md 4.F's
// state machine: decode ticket, look up the dataset, drive its source
// adapter through the Arrow builder, and write one FlightData frame per
// emitted batch. The adapter is guaranteed to be stopped on every exit
// path: normal end, adapter error, transport error, or client cancel.
func (s *Server) DoGet(ticket *flightpb.Ticket, stream flightpb.FlightService_DoGetServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Debug("DoGet called", "ticket_size", len(ticket.GetTicket()))

	ticketData, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	ds, ok := s.catalog.Get(ticketData.DatasetID)
	if !ok {
		return status.Errorf(codes.NotFound, "dataset not found: %s", ticketData.DatasetID)
	}

	f, err := os.Open(ds.SourceLocator)
	if err != nil {
		s.logger.Error("failed to open dataset source", "dataset", ds.ID, "error", err)
		return status.Errorf(codes.Internal, "failed to open dataset source: %v", err)
	}
	defer f.Close()

	adapter := csvsource.New(s.adapterOpts, s.logger)

	startErr := recovery.RecoverToError(s.logger, "DoGet.adapter.Start", func() error {
		_, e := adapter.Start(ctx, f)
		return e
	})
	if startErr != nil {
		s.logger.Error("failed to start adapter", "dataset", ds.ID, "error", startErr)
		return status.Errorf(codes.Internal, "failed to start source adapter: %v", startErr)
	}

	var builder *arrowbuild.Builder
	batchCount := 0
	var totalRows int64

	for {
		select {
		case <-ctx.Done():
			adapter.Stop()
			s.logger.Debug("DoGet cancelled by client", "dataset", ds.ID, "batches_sent", batchCount)
			return status.Error(codes.Canceled, "request cancelled")

		case ev, open := <-adapter.Events:
			if !open {
				s.logger.Debug("DoGet completed", "dataset", ds.ID, "batches_sent", batchCount, "total_rows", totalRows)
				return nil
			}

			switch ev.Kind {
			case csvsource.EventSchema:
				cols := arrowbuild.CSVColumns{
					ColumnOrder: ev.ColumnOrder,
					LogicalType: ev.LogicalType,
					ArrowOpts:   s.adapterOpts.Arrow,
				}
				b, buildErr := arrowbuild.New(cols, s.builderOpts, s.logger)
				if buildErr != nil {
					adapter.Stop()
					s.logger.Error("failed to construct builder", "dataset", ds.ID, "error", buildErr)
					return status.Errorf(codes.Internal, "failed to construct arrow builder: %v", buildErr)
				}
				builder = b

			case csvsource.EventRowError:
				s.logger.Warn("row coercion error, continuing", "dataset", ds.ID, "row", ev.RowIndex, "error", ev.RowErr)

			case csvsource.EventBatch:
				if builder == nil {
					s.logger.Warn("batch received before schema, skipping", "dataset", ds.ID)
					continue
				}

				record := builder.CreateRecordBatch(ev.Rows)
				if record == nil {
					s.logger.Warn("skipping nil record batch", "dataset", ds.ID, "rows", len(ev.Rows))
					continue
				}
				payload := builder.SerializeRecordBatch(record)
				record.Release()
				if payload == nil {
					s.logger.Warn("skipping unserializable record batch", "dataset", ds.ID)
					continue
				}

				sendErr := recovery.RecoverToError(s.logger, "DoGet.stream.Send", func() error {
					return stream.Send(&flightpb.FlightData{DataBody: payload})
				})
				if sendErr != nil {
					adapter.Stop()
					s.logger.Error("failed to write record batch", "dataset", ds.ID, "batch", batchCount, "error", sendErr)
					return status.Errorf(codes.Internal, "failed to write batch %d: %v", batchCount, sendErr)
				}

				batchCount++
				totalRows += int64(len(ev.Rows))
				s.logger.Debug("sent record batch", "dataset", ds.ID, "batch", batchCount, "rows", len(ev.Rows))

			case csvsource.EventEnd:
				s.logger.Debug("adapter reported end of stream", "dataset", ds.ID, "total_rows", ev.TotalRows)

			case csvsource.EventError:
				adapter.Stop()
				s.logger.Error("adapter error", "dataset", ds.ID, "error", ev.Err)
				return status.Errorf(codes.Internal, "source adapter error: %v", ev.Err)
			}
		}
	}
}
