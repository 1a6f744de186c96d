package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/flightbridge/flightbridge/schema"
	"github.com/flightbridge/flightbridge/typesystem"
)

// Options configures an Adapter. Zero values of BatchSize and Delimiter
// default to 10000 and ','. Headers and SkipEmptyLines are off unless set:
// with Headers false the first row is read as data and columns are named
// col0, col1, ....
type Options struct {
	BatchSize      int
	Delimiter      rune
	Headers        bool
	SkipEmptyLines bool

	Schema typesystem.InferOptions
	Arrow  typesystem.ArrowOptions
	Infer  schema.Options
}

const (
	defaultBatchSize        = 10000
	defaultSchemaSampleSize = 1000
)

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	return o
}

// Adapter streams rows from an io.Reader, emitting Events on its Events
// channel: one EventSchema after the header row, EventBatch once per
// BatchSize rows (plus a final partial batch), EventRowError for a row
// whose cell coercion returns an error, without aborting the stream, and a
// terminal EventEnd or EventError. The built-in coercers never return an
// error: an unparseable cell becomes nil and no EventRowError is sent.
type Adapter struct {
	opts   Options
	logger *slog.Logger

	Events chan Event

	reading atomic.Bool
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// New constructs an Adapter. The returned Events channel is unbuffered and
// must be drained by the caller for the background reader that Start
// launches to make progress.
func New(opts Options, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		opts:   opts.withDefaults(),
		logger: logger,
		Events: make(chan Event),
	}
}

// Result is returned by Start once the schema has been inferred, before
// the EventSchema event is sent on Events; the caller (typically the catalog scanner) uses it without waiting for
// the full stream to drain.
type Result struct {
	Schema      map[string]typesystem.LogicalType
	ColumnOrder []string
}

// Start begins reading r in a background goroutine and returns once the
// schema has been inferred from a sample of up to Infer.SampleSize rows
// (default 1000) read after the header row (or an error occurs before that
// point). The adapter then emits Schema/Batch/RowError/End events on
// Events after Start returns; the caller should range over Events until it
// observes EventEnd or EventError.
func (a *Adapter) Start(ctx context.Context, r io.Reader) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	a.reading.Store(true)

	reader := csv.NewReader(r)
	reader.Comma = a.opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err != nil {
		a.reading.Store(false)
		cancel()
		return Result{}, fmt.Errorf("csvsource: failed to read header row: %w", err)
	}

	var columnOrder []string
	var pendingRaw [][]string
	if a.opts.Headers {
		columnOrder = headerRow
	} else {
		columnOrder = make([]string, len(headerRow))
		for i := range headerRow {
			columnOrder[i] = fmt.Sprintf("col%d", i)
		}
		pendingRaw = append(pendingRaw, headerRow)
	}

	sampleLimit := a.opts.Infer.SampleSize
	if sampleLimit <= 0 {
		sampleLimit = defaultSchemaSampleSize
	}

	sampleRows := make([]map[string]any, 0, len(pendingRaw))
	for _, raw := range pendingRaw {
		sampleRows = append(sampleRows, rowToMap(columnOrder, raw))
	}
	for len(sampleRows) < sampleLimit {
		raw, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			a.reading.Store(false)
			cancel()
			return Result{}, fmt.Errorf("csvsource: error sampling row %d: %w", len(sampleRows)+1, readErr)
		}
		if a.opts.SkipEmptyLines && isEmptyRow(raw) {
			continue
		}
		pendingRaw = append(pendingRaw, raw)
		sampleRows = append(sampleRows, rowToMap(columnOrder, raw))
	}

	inferred := schema.InferSchema(sampleRows, mergeInferOptions(a.opts, columnOrder))
	for _, name := range columnOrder {
		if _, ok := inferred[name]; !ok {
			inferred[name] = typesystem.String
		}
	}

	result := Result{Schema: inferred, ColumnOrder: columnOrder}

	go a.emitSchemaAndReadRows(ctx, reader, columnOrder, inferred, pendingRaw)

	return result, nil
}

// emitSchemaAndReadRows announces the inferred schema and then streams rows,
// both from the background goroutine Start spawns. The schema send must
// happen here rather than in Start: Start's caller only begins draining
// Events after Start returns, so a send from inside Start itself would
// deadlock against a channel nobody is reading yet.
func (a *Adapter) emitSchemaAndReadRows(ctx context.Context, reader *csv.Reader, columnOrder []string, types map[string]typesystem.LogicalType, pending [][]string) {
	select {
	case a.Events <- Event{Kind: EventSchema, ColumnOrder: columnOrder, LogicalType: types}:
	case <-ctx.Done():
		a.reading.Store(false)
		close(a.Events)
		return
	}

	a.readRows(ctx, reader, columnOrder, types, pending)
}

// Stop signals the background reader to stop at the next safe boundary
// (row or batch). It is safe to call multiple times.
func (a *Adapter) Stop() {
	a.reading.Store(false)
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (a *Adapter) readRows(ctx context.Context, reader *csv.Reader, columnOrder []string, types map[string]typesystem.LogicalType, pending [][]string) {
	batch := make([]map[string]any, 0, a.opts.BatchSize)
	var totalRows int64
	rowIndex := 0

	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		out := make([]map[string]any, len(batch))
		copy(out, batch)
		select {
		case a.Events <- Event{Kind: EventBatch, Rows: out}:
			batch = batch[:0]
			return true
		case <-ctx.Done():
			return false
		}
	}

	processRow := func(raw []string) bool {
		if a.opts.SkipEmptyLines && isEmptyRow(raw) {
			return true
		}
		rowIndex++
		row, rowErr := a.coerceRow(columnOrder, types, raw)
		if rowErr != nil {
			select {
			case a.Events <- Event{Kind: EventRowError, RowIndex: rowIndex, RowErr: rowErr}:
			case <-ctx.Done():
				return false
			}
		}
		batch = append(batch, row)
		totalRows++
		if len(batch) >= a.opts.BatchSize {
			return flush()
		}
		return true
	}

	for _, raw := range pending {
		if !a.reading.Load() {
			a.finish(ctx, totalRows, nil)
			return
		}
		if !processRow(raw) {
			a.finish(ctx, totalRows, nil)
			return
		}
	}

	for a.reading.Load() {
		select {
		case <-ctx.Done():
			a.finish(ctx, totalRows, nil)
			return
		default:
		}

		raw, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.finish(ctx, totalRows, fmt.Errorf("csvsource: error reading row %d: %w", rowIndex+1, err))
			return
		}
		if !processRow(raw) {
			a.finish(ctx, totalRows, nil)
			return
		}
	}

	if !flush() {
		a.finish(ctx, totalRows, nil)
		return
	}

	a.finish(ctx, totalRows, nil)
}

// finish sends the terminal event and closes Events. The send blocks,
// guarded only by ctx.Done(), so a genuine adapter error can't be dropped by
// a consumer that happens to still be busy with the previous event (a
// non-blocking send here would let DoGet observe channel-closed instead of
// EventError and report success for a stream that actually failed).
func (a *Adapter) finish(ctx context.Context, totalRows int64, err error) {
	a.reading.Store(false)
	if err != nil {
		select {
		case a.Events <- Event{Kind: EventError, Err: err}:
		case <-ctx.Done():
		}
		close(a.Events)
		return
	}
	select {
	case a.Events <- Event{Kind: EventEnd, TotalRows: totalRows}:
	case <-ctx.Done():
	}
	close(a.Events)
}

func (a *Adapter) coerceRow(columnOrder []string, types map[string]typesystem.LogicalType, raw []string) (map[string]any, error) {
	row := make(map[string]any, len(columnOrder))
	var firstErr error
	for i, name := range columnOrder {
		var cell string
		if i < len(raw) {
			cell = raw[i]
		}
		lt := types[name]
		v, err := typesystem.Coerce(cell, lt, a.opts.Arrow)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %q: %w", name, err)
		}
		row[name] = v
	}
	return row, firstErr
}

func rowToMap(columnOrder []string, raw []string) map[string]any {
	row := make(map[string]any, len(columnOrder))
	for i, name := range columnOrder {
		if i < len(raw) {
			row[name] = raw[i]
		}
	}
	return row
}

func isEmptyRow(raw []string) bool {
	for _, cell := range raw {
		if cell != "" {
			return false
		}
	}
	return true
}

func mergeInferOptions(opts Options, columnOrder []string) schema.Options {
	so := opts.Infer
	so.Infer = opts.Schema
	so.Arrow = opts.Arrow
	return so
}
