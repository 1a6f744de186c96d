package client

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	flightpb "github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DatasetSummary is one entry of ListDatasets.
type DatasetSummary struct {
	ID           string
	Description  string
	TotalRecords int64
	TotalBytes   int64
	Schema       *arrow.Schema
}

// DatasetInfo is the detailed result of GetDatasetInfo.
type DatasetInfo struct {
	ID           string
	TotalRecords int64
	TotalBytes   int64
	Schema       *arrow.Schema
	Descriptor   *flightpb.FlightDescriptor
}

// ListDatasets lists every dataset the server's catalog currently holds.
func (c *Client) ListDatasets(ctx context.Context) ([]DatasetSummary, error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, err
	}

	var infos []*flightpb.FlightInfo
	retryErr := c.retry.Execute(ctx, "list-datasets", func() error {
		infos = nil
		stream, err := fc.ListFlights(c.withAuth(ctx), &flightpb.Criteria{})
		if err != nil {
			return err
		}
		for {
			info, err := stream.Recv()
			if isStreamEnd(err) {
				return nil
			}
			if err != nil {
				return err
			}
			infos = append(infos, info)
		}
	})
	if retryErr != nil {
		return nil, retryErr
	}

	summaries := make([]DatasetSummary, 0, len(infos))
	for _, info := range infos {
		summary, err := summaryFromFlightInfo(info, c.opts.Allocator)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetDatasetInfo resolves FlightInfo for a single dataset by id.
func (c *Client) GetDatasetInfo(ctx context.Context, id string) (DatasetInfo, error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return DatasetInfo{}, err
	}

	desc := pathDescriptor(id)

	var info *flightpb.FlightInfo
	retryErr := c.retry.Execute(ctx, "get-dataset-info", func() error {
		var err error
		info, err = fc.GetFlightInfo(c.withAuth(ctx), desc)
		return err
	})
	if retryErr != nil {
		return DatasetInfo{}, retryErr
	}

	schema, err := flightpb.DeserializeSchema(info.GetSchema(), c.opts.Allocator)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("client: failed to deserialize schema: %w", err)
	}

	return DatasetInfo{
		ID:           id,
		TotalRecords: info.GetTotalRecords(),
		TotalBytes:   info.GetTotalBytes(),
		Schema:       schema,
		Descriptor:   info.GetFlightDescriptor(),
	}, nil
}

// GetSchema fetches and decodes just the Arrow schema for a dataset.
func (c *Client) GetSchema(ctx context.Context, id string) (*arrow.Schema, error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, err
	}

	desc := pathDescriptor(id)

	var result *flightpb.SchemaResult
	retryErr := c.retry.Execute(ctx, "get-schema", func() error {
		var err error
		result, err = fc.GetSchema(c.withAuth(ctx), desc)
		return err
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return flightpb.DeserializeSchema(result.GetSchema(), c.opts.Allocator)
}

// GetDataset drains a dataset's DoGet stream, decodes every IPC frame,
// and concatenates the result into one table.
func (c *Client) GetDataset(ctx context.Context, id string) (arrow.Table, error) {
	schema, err := c.GetSchema(ctx, id)
	if err != nil {
		return nil, err
	}

	batches, _, err := c.collectBatches(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()

	records := make([]arrow.Record, len(batches))
	copy(records, batches)
	return array.NewTableFromRecords(schema, records), nil
}

// RecordBatch holds one decoded record batch.
// Callers MUST call Release() on Record when done with it.
type RecordBatch struct {
	Record arrow.Record
}

// StreamDataset returns a lazy, restartable-per-call sequence of record
// batches for a dataset: each inbound FlightData frame is decoded as it
// arrives and its batches are delivered one at a time. Closing ctx (or
// exhausting the returned function) stops the underlying stream within
// one batch boundary.
func (c *Client) StreamDataset(ctx context.Context, id string) (func() (RecordBatch, bool, error), func(), error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, nil, err
	}

	ticket, err := c.ticketForDataset(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := fc.DoGet(c.withAuth(streamCtx), ticket)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	var pending []arrow.Record
	next := func() (RecordBatch, bool, error) {
		for len(pending) == 0 {
			data, err := stream.Recv()
			if isStreamEnd(err) {
				return RecordBatch{}, false, nil
			}
			if err != nil {
				return RecordBatch{}, false, err
			}
			batch, err := decodeFrame(data.GetDataBody(), c.opts.Allocator)
			if err != nil {
				return RecordBatch{}, false, err
			}
			pending = batch
		}
		rec := pending[0]
		pending = pending[1:]
		return RecordBatch{Record: rec}, true, nil
	}

	return next, cancel, nil
}

// StreamDatasetAsTables is StreamDataset but yields one whole arrow.Table
// per inbound IPC frame instead of individual record batches.
func (c *Client) StreamDatasetAsTables(ctx context.Context, id string) (func() (arrow.Table, bool, error), func(), error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, nil, err
	}

	ticket, err := c.ticketForDataset(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := fc.DoGet(c.withAuth(streamCtx), ticket)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	next := func() (arrow.Table, bool, error) {
		data, err := stream.Recv()
		if isStreamEnd(err) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		reader, err := ipc.NewReader(bytes.NewReader(data.GetDataBody()), ipc.WithAllocator(c.opts.Allocator))
		if err != nil {
			return nil, false, fmt.Errorf("client: failed to decode frame: %w", err)
		}
		defer reader.Release()

		var records []arrow.Record
		for reader.Next() {
			rec := reader.Record()
			rec.Retain()
			records = append(records, rec)
		}
		defer func() {
			for _, r := range records {
				r.Release()
			}
		}()
		if len(records) == 0 {
			return array.NewTableFromRecords(reader.Schema(), nil), true, nil
		}
		return array.NewTableFromRecords(reader.Schema(), records), true, nil
	}

	return next, cancel, nil
}

// StreamRawData is StreamDataset's sibling yielding each frame's raw IPC
// bytes undecoded, for callers that want to forward frames rather than
// materialize Arrow values.
func (c *Client) StreamRawData(ctx context.Context, id string) (func() ([]byte, bool, error), func(), error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, nil, err
	}

	ticket, err := c.ticketForDataset(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := fc.DoGet(c.withAuth(streamCtx), ticket)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	next := func() ([]byte, bool, error) {
		data, err := stream.Recv()
		if isStreamEnd(err) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return data.GetDataBody(), true, nil
	}

	return next, cancel, nil
}

func (c *Client) collectBatches(ctx context.Context, id string) ([]arrow.Record, *arrow.Schema, error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, nil, err
	}

	ticket, err := c.ticketForDataset(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var batches []arrow.Record
	var schema *arrow.Schema

	retryErr := c.retry.Execute(ctx, "get-dataset", func() error {
		batches = nil
		schema = nil
		stream, err := fc.DoGet(c.withAuth(ctx), ticket)
		if err != nil {
			return err
		}
		for {
			data, err := stream.Recv()
			if isStreamEnd(err) {
				return nil
			}
			if err != nil {
				return err
			}
			decoded, err := decodeFrame(data.GetDataBody(), c.opts.Allocator)
			if err != nil {
				return err
			}
			if schema == nil && len(decoded) > 0 {
				schema = decoded[0].Schema()
			}
			batches = append(batches, decoded...)
		}
	})
	if retryErr != nil {
		return nil, nil, retryErr
	}
	return batches, schema, nil
}

func (c *Client) ticketForDataset(ctx context.Context, id string) (*flightpb.Ticket, error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, err
	}

	var flightInfo *flightpb.FlightInfo
	retryErr := c.retry.Execute(ctx, "resolve-ticket", func() error {
		var err error
		flightInfo, err = fc.GetFlightInfo(c.withAuth(ctx), pathDescriptor(id))
		return err
	})
	if retryErr != nil {
		return nil, retryErr
	}

	endpoints := flightInfo.GetEndpoint()
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("client: dataset %s has no endpoints", id)
	}
	return endpoints[0].GetTicket(), nil
}

func decodeFrame(data []byte, alloc memory.Allocator) ([]arrow.Record, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(alloc))
	if err != nil {
		return nil, fmt.Errorf("client: failed to decode frame: %w", err)
	}
	defer reader.Release()

	var records []arrow.Record
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	return records, nil
}

func pathDescriptor(id string) *flightpb.FlightDescriptor {
	return &flightpb.FlightDescriptor{
		Type: flightpb.DescriptorPATH,
		Path: []string{id},
	}
}

func summaryFromFlightInfo(info *flightpb.FlightInfo, alloc memory.Allocator) (DatasetSummary, error) {
	var id string
	if desc := info.GetFlightDescriptor(); desc != nil && len(desc.GetPath()) > 0 {
		id = desc.GetPath()[0]
	}

	schema, err := flightpb.DeserializeSchema(info.GetSchema(), alloc)
	if err != nil {
		return DatasetSummary{}, fmt.Errorf("client: failed to deserialize schema for %s: %w", id, err)
	}

	return DatasetSummary{
		ID:           id,
		TotalRecords: info.GetTotalRecords(),
		TotalBytes:   info.GetTotalBytes(),
		Schema:       schema,
	}, nil
}
