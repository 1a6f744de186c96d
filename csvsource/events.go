// Package csvsource streams rows from a CSV byte source and emits batches
// of schema-coerced rows as a channel of events, per the source-adapter
// contract.
package csvsource

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/flightbridge/flightbridge/typesystem"
)

// EventKind discriminates the sum type carried on an Adapter's Events
// channel. Only one of the corresponding fields on Event is meaningful for
// a given Kind.
type EventKind int

const (
	EventSchema EventKind = iota
	EventBatch
	EventRowError
	EventEnd
	EventError
)

// Event is the tagged union the adapter emits in place of named listener
// callbacks: a schema announcement, a completed batch, a single recoverable
// row error, a terminal end-of-input, or a terminal unrecoverable error.
type Event struct {
	Kind EventKind

	// Set when Kind == EventSchema: ColumnOrder and LogicalType. Adapter
	// leaves Schema nil.
	Schema     *arrow.Schema
	ColumnOrder []string
	LogicalType map[string]typesystem.LogicalType

	// Set when Kind == EventBatch.
	Rows []map[string]any

	// Set when Kind == EventRowError.
	RowIndex int
	RowErr   error

	// Set when Kind == EventEnd.
	TotalRows int64

	// Set when Kind == EventError.
	Err error
}
