// Package flightbridge provides a high-level API for serving a directory of
// CSV datasets over Apache Arrow Flight.
//
// The flightbridge package simplifies building Flight servers by:
//   - Registering Flight service handlers on an existing grpc.Server
//   - Scanning a directory of CSV files into a dataset catalog, inferring
//     Arrow schemas from a configurable header/type-sniffing sample
//   - Streaming CSV rows as Arrow record batches without buffering whole
//     datasets in memory
//   - Handling authentication with bearer tokens
//
// # Quick Start
//
// Build a basic Flight server in under 30 lines:
//
//	package main
//
//	import (
//	    "log"
//	    "net"
//
//	    "google.golang.org/grpc"
//
//	    "github.com/flightbridge/flightbridge"
//	)
//
//	func main() {
//	    config := flightbridge.NewConfigBuilder("/data/csv").
//	        Address("0.0.0.0", 8815).
//	        Build()
//
//	    grpcServer := grpc.NewServer(flightbridge.ServerOptions(config)...)
//	    cat, err := flightbridge.NewServer(grpcServer, config)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Printf("serving %d datasets", len(cat.Ids()))
//
//	    lis, _ := net.Listen("tcp", ":8815")
//	    log.Println("flightbridge listening on :8815")
//	    grpcServer.Serve(lis)
//	}
//
// # Architecture
//
// catalog.Catalog scans DataDirectory, treating each file directly in it
// with the configured extension (default .csv) as one dataset identified by
// its file name without the extension.
// Schema inference and Arrow record construction are split into two
// packages:
//
//   - csvsource: reads a CSV file and emits a stream of typed row batches
//     over a channel, with column types (boolean/int64/float64/date/
//     timestamp/string) inferred from a sample of rows read before
//     streaming begins
//   - arrowbuild: turns typed row batches into Arrow record batches and
//     serializes each one as a self-contained IPC stream
//
// DoGet wires these together per request: one adapter and builder per
// stream, torn down when the client disconnects or the source is
// exhausted.
//
// # Server Lifecycle
//
// The package registers Flight service handlers on a user-provided
// grpc.Server but does NOT manage server lifecycle (start/stop/listen).
// This gives users full control over:
//   - TLS configuration via grpc.Creds()
//   - Server options and interceptors
//   - Graceful shutdown via grpcServer.GracefulStop()
//
// # Authentication
//
// Bearer token authentication is supported via the BearerAuth helper:
//
//	authn := flightbridge.BearerAuth(func(token string) (string, error) {
//	    if token == "secret-api-key" {
//	        return "user1", nil
//	    }
//	    return "", flightbridge.ErrUnauthorized
//	})
//
//	config := flightbridge.NewConfigBuilder("/data/csv").
//	    Auth(authn).
//	    Build()
//
// # Logging
//
// The package uses log/slog for all internal logging. Pass a configured
// *slog.Logger via ServerConfig.Logger, or set ServerConfig.LogLevel to
// adjust the default stderr handler's verbosity.
//
// # Context Cancellation
//
// DoGet and catalog scans respect ctx.Done() and stop work as soon as a
// client disconnects or cancels, without waiting for the current batch's
// adapter to finish reading.
//
// # Memory Management
//
// Arrow uses manual reference counting. Record batches built by arrowbuild
// are released immediately after serialization; callers embedding this
// package in a larger service must apply the same discipline to any
// additional Arrow records they create.
package flightbridge
