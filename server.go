package flightbridge

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/flightbridge/flightbridge/catalog"
	"github.com/flightbridge/flightbridge/flight"
)

// NewServer builds a dataset catalog over config.DataDirectory, initializes
// it, and registers Flight service handlers for it on grpcServer. It does
// not start the gRPC server; the caller controls listen/serve lifecycle.
//
//	grpcServer := grpc.NewServer(flightbridge.ServerOptions(config)...)
//	cat, err := flightbridge.NewServer(grpcServer, config)
//	lis, _ := net.Listen("tcp", fmt.Sprintf(":%d", config.Port))
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) (*catalog.Catalog, error) {
	config = config.withDefaults()
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cat, err := catalog.New(catalog.Config{
		DataDirectory: config.DataDirectory,
		Adapter:       config.Adapter,
		Schema:        config.Schema,
		Logger:        config.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cat.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	address := ""
	if config.Host != "" {
		address = fmt.Sprintf("%s:%d", config.Host, config.Port)
	}

	flightServer := flight.NewServer(cat, config.Allocator, config.Logger, address).
		WithAdapterOptions(config.Adapter).
		WithBuilderOptions(config.Builder).
		WithServerInfo(config.Host, config.Port, config.DataDirectory).
		WithCompressActionResults(config.CompressActionResults)

	flight.RegisterFlightServer(grpcServer, flightServer)

	config.Logger.Info("flight server registered",
		"data_directory", config.DataDirectory,
		"has_auth", config.Auth != nil,
		"datasets", len(cat.Ids()),
	)

	return cat, nil
}

// ServerOptions returns gRPC server options configured from config: auth
// interceptors (if config.Auth is set) and message size limits.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	config = config.withDefaults()

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(config.MaxReceiveMessageLength),
		grpc.MaxSendMsgSize(config.MaxSendMessageLength),
	}

	if config.Auth != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(flight.UnaryServerInterceptor(config.Auth)),
			grpc.StreamInterceptor(flight.StreamServerInterceptor(config.Auth)),
		)
	}

	return opts
}
