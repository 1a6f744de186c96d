package csvsource

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightbridge/flightbridge/typesystem"
)

func drainAll(t *testing.T, a *Adapter) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-a.Events:
			if !ok {
				return events
			}
			events = append(events, ev)
			if ev.Kind == EventEnd || ev.Kind == EventError {
				return events
			}
		case <-timeout:
			t.Fatal("timed out draining adapter events")
		}
	}
}

func TestAdapterSmallCSVRoundTrip(t *testing.T) {
	const csvData = "name,age,city\nJohn,25,New York\nJane,30,Los Angeles\nBob,35,Chicago\n"

	a := New(Options{Headers: true}, nil)
	result, err := a.Start(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "city"}, result.ColumnOrder)
	assert.Equal(t, typesystem.Int64, result.Schema["age"])

	var rows []map[string]any
	for _, ev := range drainAll(t, a) {
		if ev.Kind == EventBatch {
			rows = append(rows, ev.Rows...)
		}
	}
	require.Len(t, rows, 3)
	assert.Equal(t, "John", rows[0]["name"])
	assert.Equal(t, int64(25), rows[0]["age"])
}

func TestAdapterBatchingEmitsMultipleBatches(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 5; i++ {
		b.WriteString("x\n")
	}

	a := New(Options{Headers: true, BatchSize: 2}, nil)
	_, err := a.Start(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)

	var batches int
	var totalRows int
	for _, ev := range drainAll(t, a) {
		if ev.Kind == EventBatch {
			batches++
			totalRows += len(ev.Rows)
		}
	}
	assert.GreaterOrEqual(t, batches, 3)
	assert.Equal(t, 5, totalRows)
}

func TestAdapterStopHaltsEmission(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 100; i++ {
		b.WriteString("x\n")
	}

	a := New(Options{Headers: true, BatchSize: 1}, nil)
	_, err := a.Start(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)

	batches := 0
	for ev := range a.Events {
		if ev.Kind == EventBatch {
			batches++
			if batches == 2 {
				a.Stop()
			}
		}
		if ev.Kind == EventEnd || ev.Kind == EventError {
			break
		}
	}
	assert.LessOrEqual(t, batches, 3)
}
