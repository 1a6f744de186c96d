package client

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/flightbridge/flightbridge/catalog"
	"github.com/flightbridge/flightbridge/flight"
)

const testBufSize = 1024 * 1024

// newTestServer spins up a flightbridge service over dir, backed by an
// in-memory bufconn listener, and returns a Client already connected to
// it plus a teardown func.
func newTestServer(t *testing.T, dir string) (*Client, func()) {
	t.Helper()

	cat, err := catalog.New(catalog.Config{DataDirectory: dir})
	require.NoError(t, err)
	require.NoError(t, cat.Initialize(context.Background()))

	grpcServer := grpc.NewServer()
	flightServer := flight.NewServer(cat, nil, nil, "")
	flight.RegisterFlightServer(grpcServer, flightServer)

	listener := bufconn.Listen(testBufSize)
	go grpcServer.Serve(listener)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		return listener.Dial()
	}
	conn, err := grpc.NewClient("bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	c := NewWithConn(conn, Options{}, Events{})

	teardown := func() {
		conn.Close()
		grpcServer.Stop()
		listener.Close()
	}
	return c, teardown
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestClientListDatasets(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sample.csv", "name,age\nAlice,30\nBob,40\n")

	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	datasets, err := c.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "sample", datasets[0].ID)
	assert.Equal(t, 2, datasets[0].Schema.NumFields())
}

func TestClientGetDatasetConcatenatesBatches(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "rows.csv", "n\n1\n2\n3\n")

	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	table, err := c.GetDataset(ctx, "rows")
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(3), table.NumRows())
}

func TestClientGetSchema(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sample.csv", "a,b,c\n1,2,3\n")

	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	schema, err := c.GetSchema(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, 3, schema.NumFields())
}

func TestClientGetDatasetInfoNotFound(t *testing.T) {
	dir := t.TempDir()
	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.GetDatasetInfo(ctx, "missing")
	assert.Error(t, err)
}

func TestClientStreamDatasetYieldsBatchesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "rows.csv", "n\n1\n2\n3\n4\n5\n")

	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	next, stop, err := c.StreamDataset(ctx, "rows")
	require.NoError(t, err)
	defer stop()

	var totalRows int64
	for {
		batch, ok, err := next()
		require.NoError(t, err)
		if !ok {
			break
		}
		totalRows += batch.Record.NumRows()
		batch.Record.Release()
	}
	assert.Equal(t, int64(5), totalRows)
}

func TestClientDoActionRefreshDatasets(t *testing.T) {
	dir := t.TempDir()
	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	writeCSV(t, dir, "new.csv", "x\n1\n")

	results, err := c.DoAction(ctx, "refresh-datasets", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, string(results[0]), `"success":true`)
}

func TestClientListActions(t *testing.T) {
	dir := t.TempDir()
	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	actions, err := c.ListActions(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, actions)
}

func TestClientTestConnection(t *testing.T) {
	dir := t.TempDir()
	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, c.TestConnection(ctx))
}

func TestClientGetServerInfoAggregatesListCalls(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sample.csv", "a\n1\n")

	c, teardown := newTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := c.GetServerInfo(ctx)
	require.NoError(t, err)
	assert.Len(t, info.Datasets, 1)
	assert.NotEmpty(t, info.Actions)
}
