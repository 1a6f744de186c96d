// Package arrowbuild assembles Arrow record batches from source rows and
// serializes batches and schemas to Arrow IPC bytes.
package arrowbuild

import (
	"bytes"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/flightbridge/flightbridge/typesystem"
)

// Options configures a Builder. RecordBatchSize bounds how many source rows
// a single CreateRecordBatch call may accept before the caller must split
// them (the builder itself does not chunk; the source adapter does).
type Options struct {
	RecordBatchSize int
	NullValue       any
	Allocator       memory.Allocator
	Arrow           typesystem.ArrowOptions
}

const defaultRecordBatchSize = 65536

func (o Options) withDefaults() Options {
	if o.RecordBatchSize <= 0 {
		o.RecordBatchSize = defaultRecordBatchSize
	}
	if o.Allocator == nil {
		o.Allocator = memory.DefaultAllocator
	}
	return o
}

// ColumnBuilder is the capability interface a concrete source format
// supplies: building the Arrow schema from the source's own schema
// representation, constructing vectors directly from source rows (no
// intermediate row-major transpose), and mapping one source type token to
// an Arrow type.
type ColumnBuilder interface {
	BuildSchema() (*arrow.Schema, error)
	CreateVectors(allocator memory.Allocator, rows []map[string]any, schema *arrow.Schema) ([]arrow.Array, error)
	MapType(sourceType string) arrow.DataType
}

// Builder wraps a ColumnBuilder with the schema-once / serialize contract
// spec.md 4.C describes: the Arrow schema is computed once at construction,
// and every subsequent record batch is validated against it.
type Builder struct {
	opts    Options
	columns ColumnBuilder
	schema  *arrow.Schema
	logger  *slog.Logger
}

// New constructs a Builder, eagerly computing the Arrow schema via
// columns.BuildSchema. An error here is a configuration failure, not a
// per-batch one, so it is returned rather than swallowed.
func New(columns ColumnBuilder, opts Options, logger *slog.Logger) (*Builder, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := columns.BuildSchema()
	if err != nil {
		return nil, err
	}
	return &Builder{opts: opts, columns: columns, schema: schema, logger: logger}, nil
}

// GetSchema returns the builder's fixed Arrow schema.
func (b *Builder) GetSchema() *arrow.Schema {
	return b.schema
}

// CreateRecordBatch builds one arrow.Record from rows, via the concrete
// ColumnBuilder's direct vector construction. A nil return (with a logged
// warning) signals a recoverable per-batch failure; the caller decides
// whether that fails the RPC.
func (b *Builder) CreateRecordBatch(rows []map[string]any) arrow.Record {
	if len(rows) == 0 {
		return nil
	}
	vectors, err := b.columns.CreateVectors(b.opts.Allocator, rows, b.schema)
	if err != nil {
		b.logger.Warn("arrowbuild: failed to build vectors for batch", "error", err, "rows", len(rows))
		return nil
	}
	defer func() {
		for _, v := range vectors {
			v.Release()
		}
	}()
	if len(vectors) != b.schema.NumFields() {
		b.logger.Warn("arrowbuild: vector count does not match schema field count",
			"vectors", len(vectors), "fields", b.schema.NumFields())
		return nil
	}

	cols := make([]arrow.Array, len(vectors))
	copy(cols, vectors)
	record := array.NewRecord(b.schema, cols, int64(len(rows)))
	return record
}

// SerializeRecordBatch wraps batch in a single-batch table and emits it as
// Arrow IPC stream bytes. Returns nil (with a logged warning), never an
// error, per spec.md 4.C's "all serialization errors yield null".
func (b *Builder) SerializeRecordBatch(batch arrow.Record) []byte {
	if batch == nil {
		return nil
	}
	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(batch.Schema()), ipc.WithAllocator(b.opts.Allocator))
	if err := writer.Write(batch); err != nil {
		b.logger.Warn("arrowbuild: failed to serialize record batch", "error", err)
		return nil
	}
	if err := writer.Close(); err != nil {
		b.logger.Warn("arrowbuild: failed to close IPC writer", "error", err)
		return nil
	}
	return buf.Bytes()
}

// SerializeSchema emits the builder's schema as the IPC bytes of an empty
// table, matching how FlightInfo.schema/SchemaResult.schema are encoded.
func (b *Builder) SerializeSchema() []byte {
	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(b.schema), ipc.WithAllocator(b.opts.Allocator))
	if err := writer.Close(); err != nil {
		b.logger.Warn("arrowbuild: failed to serialize empty schema table", "error", err)
		return nil
	}
	return buf.Bytes()
}

// CreateTable wraps one or more batches sharing the builder's schema into a
// single arrow.Table, releasing none of the input batches (the caller
// retains ownership).
func (b *Builder) CreateTable(batches []arrow.Record) arrow.Table {
	if len(batches) == 0 {
		return array.NewTableFromRecords(b.schema, nil)
	}
	return array.NewTableFromRecords(b.schema, batches)
}

// Stats summarizes a batch for logging/diagnostics: row count and an
// approximate in-memory byte size.
type Stats struct {
	NumRows  int64
	NumCols  int64
	NumBytes int64
}

// BatchStats computes Stats for batch, returning the zero value for nil.
func BatchStats(batch arrow.Record) Stats {
	if batch == nil {
		return Stats{}
	}
	var size int64
	for _, col := range batch.Columns() {
		for _, buf := range col.Data().Buffers() {
			if buf != nil {
				size += int64(buf.Len())
			}
		}
	}
	return Stats{NumRows: batch.NumRows(), NumCols: batch.NumCols(), NumBytes: size}
}
