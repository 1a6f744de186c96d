// Package flight implements the Arrow Flight RPC service: dataset discovery,
// schema/metadata queries, and streaming reads over gRPC.
package flight

import (
	"log/slog"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/flightbridge/flightbridge/arrowbuild"
	"github.com/flightbridge/flightbridge/catalog"
	"github.com/flightbridge/flightbridge/csvsource"
)

// Server implements the Flight service handlers against a dataset catalog.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	catalog   *catalog.Catalog
	allocator memory.Allocator
	logger    *slog.Logger
	address   string

	adapterOpts csvsource.Options
	builderOpts arrowbuild.Options

	host          string
	port          int
	dataDirectory string

	compressActionResults bool

	startTime time.Time
}

// NewServer creates a new Flight server bound to cat. address is the
// server's public address used in FlightEndpoint locations (e.g.
// "localhost:50051"); it is normalized to a "grpc://" URI.
func NewServer(cat *catalog.Catalog, allocator memory.Allocator, logger *slog.Logger, address string) *Server {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case address == "":
		address = flight.LocationReuseConnection
	case !strings.HasPrefix(address, "grpc://") && !strings.HasPrefix(address, "grpc+tls://"):
		address = "grpc://" + address
	}
	return &Server{
		catalog:   cat,
		allocator: allocator,
		logger:    logger,
		address:   address,
		startTime: time.Now(),
	}
}

// WithAdapterOptions sets the csvsource.Options used to stream each
// dataset's source file during DoGet. Returns s for chaining.
func (s *Server) WithAdapterOptions(opts csvsource.Options) *Server {
	s.adapterOpts = opts
	return s
}

// WithBuilderOptions sets the arrowbuild.Options used to assemble and
// serialize record batches during DoGet. Returns s for chaining.
func (s *Server) WithBuilderOptions(opts arrowbuild.Options) *Server {
	s.builderOpts = opts
	return s
}

// WithServerInfo records host, port, and dataDirectory for the
// get-server-info action. Returns s for chaining.
func (s *Server) WithServerInfo(host string, port int, dataDirectory string) *Server {
	s.host = host
	s.port = port
	s.dataDirectory = dataDirectory
	return s
}

// WithCompressActionResults opts a server into zstd-compressing large
// DoAction result bodies. Off by default: spec.md's Action/Result wire
// format is plain UTF-8 JSON, and only clients that zstd-sniff (like this
// repo's own client package) can decode a compressed body. Returns s for
// chaining.
func (s *Server) WithCompressActionResults(enabled bool) *Server {
	s.compressActionResults = enabled
	return s
}

// RegisterFlightServer registers the Flight service on grpcServer.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}
