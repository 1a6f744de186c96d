package flight_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	arrowflight "github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/flightbridge/flightbridge/catalog"
	"github.com/flightbridge/flightbridge/csvsource"
	"github.com/flightbridge/flightbridge/flight"
)

const bufSize = 1024 * 1024

func startTestServer(t *testing.T, dir string) (arrowflight.FlightServiceClient, func()) {
	t.Helper()

	cat, err := catalog.New(catalog.Config{DataDirectory: dir})
	require.NoError(t, err)
	require.NoError(t, cat.Initialize(context.Background()))

	grpcServer := grpc.NewServer()
	flightServer := flight.NewServer(cat, nil, nil, "")
	flight.RegisterFlightServer(grpcServer, flightServer)

	listener := bufconn.Listen(bufSize)
	go grpcServer.Serve(listener)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return listener.Dial() }
	conn, err := grpc.NewClient("bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	client := arrowflight.NewFlightServiceClient(conn)

	teardown := func() {
		conn.Close()
		grpcServer.Stop()
		listener.Close()
	}
	return client, teardown
}

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func pathDescriptor(id string) *arrowflight.FlightDescriptor {
	return &arrowflight.FlightDescriptor{Type: arrowflight.DescriptorPATH, Path: []string{id}}
}

// S1 — small CSV round trip.
func TestDoGetSmallCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "sample.csv", "name,age,city\nJohn,25,New York\nJane,30,Los Angeles\nBob,35,Chicago\n")

	client, teardown := startTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listStream, err := client.ListFlights(ctx, &arrowflight.Criteria{})
	require.NoError(t, err)
	var ids []string
	for {
		info, err := listStream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, info.GetFlightDescriptor().GetPath()[0])
	}
	assert.Equal(t, []string{"sample"}, ids)

	info, err := client.GetFlightInfo(ctx, pathDescriptor("sample"))
	require.NoError(t, err)
	require.Len(t, info.GetEndpoint(), 1)

	getStream, err := client.DoGet(ctx, info.GetEndpoint()[0].GetTicket())
	require.NoError(t, err)

	var totalRows int64
	var firstName string
	for {
		data, err := getStream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		reader, err := ipc.NewReader(bytes.NewReader(data.GetDataBody()))
		require.NoError(t, err)
		for reader.Next() {
			rec := reader.Record()
			if totalRows == 0 {
				col := rec.Column(0)
				firstName = col.(interface{ Value(int) string }).Value(0)
			}
			totalRows += rec.NumRows()
		}
		reader.Release()
	}
	assert.Equal(t, int64(3), totalRows)
	assert.Equal(t, "John", firstName)
}

// S3 — unknown dataset.
func TestGetFlightInfoUnknownDatasetNotFound(t *testing.T) {
	dir := t.TempDir()
	client, teardown := startTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetFlightInfo(ctx, pathDescriptor("does-not-exist"))
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())

	_, err = client.GetSchema(ctx, pathDescriptor("does-not-exist"))
	require.Error(t, err)
	st, ok = status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
}

// S4 — refresh.
func TestDoActionRefreshDatasetsPicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	client, teardown := startTestServer(t, dir)
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listStream, err := client.ListFlights(ctx, &arrowflight.Criteria{})
	require.NoError(t, err)
	_, err = listStream.Recv()
	assert.Equal(t, io.EOF, err)

	writeCSV(t, dir, "x.csv", "a\n1\n")

	actionStream, err := client.DoAction(ctx, &arrowflight.Action{Type: "refresh-datasets"})
	require.NoError(t, err)
	result, err := actionStream.Recv()
	require.NoError(t, err)
	assert.Contains(t, string(result.GetBody()), `"success":true`)
	assert.Contains(t, string(result.GetBody()), `"count":1`)

	listStream, err = client.ListFlights(ctx, &arrowflight.Criteria{})
	require.NoError(t, err)
	var ids []string
	for {
		info, err := listStream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, info.GetFlightDescriptor().GetPath()[0])
	}
	assert.Equal(t, []string{"x"}, ids)
}

// S6 — cancel mid-stream.
func TestDoGetCancelStopsWithinOneBatch(t *testing.T) {
	dir := t.TempDir()
	var rows bytes.Buffer
	rows.WriteString("n\n")
	for i := 0; i < 500; i++ {
		rows.WriteString("1\n")
	}
	writeCSV(t, dir, "big.csv", rows.String())

	cat, err := catalog.New(catalog.Config{
		DataDirectory: dir,
		Adapter:       csvsource.Options{BatchSize: 50},
	})
	require.NoError(t, err)
	require.NoError(t, cat.Initialize(context.Background()))

	grpcServer := grpc.NewServer()
	flightServer := flight.NewServer(cat, nil, nil, "").WithAdapterOptions(csvsource.Options{BatchSize: 50})
	flight.RegisterFlightServer(grpcServer, flightServer)

	listener := bufconn.Listen(bufSize)
	go grpcServer.Serve(listener)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return listener.Dial() }
	conn, err := grpc.NewClient("bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	client := arrowflight.NewFlightServiceClient(conn)
	teardown := func() {
		conn.Close()
		grpcServer.Stop()
		listener.Close()
	}
	defer teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := client.GetFlightInfo(ctx, pathDescriptor("big"))
	require.NoError(t, err)

	getCtx, getCancel := context.WithCancel(ctx)
	getStream, err := client.DoGet(getCtx, info.GetEndpoint()[0].GetTicket())
	require.NoError(t, err)

	batchesSeen := 0
	for batchesSeen < 2 {
		_, err := getStream.Recv()
		require.NoError(t, err)
		batchesSeen++
	}
	getCancel()

	_, err = getStream.Recv()
	assert.Error(t, err)
}
