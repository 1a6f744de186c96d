package flightbridge

import (
	"errors"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/flightbridge/flightbridge/arrowbuild"
	"github.com/flightbridge/flightbridge/auth"
	"github.com/flightbridge/flightbridge/csvsource"
	"github.com/flightbridge/flightbridge/schema"
)

// ServerConfig configures a Flight server over a directory of CSV datasets.
type ServerConfig struct {
	// DataDirectory is the directory scanned for dataset files.
	// REQUIRED: MUST NOT be empty.
	DataDirectory string

	// Host and Port form the server's public address, advertised in
	// FlightEndpoint locations so clients can reconnect.
	// OPTIONAL: if Host is empty, FlightEndpoint locations reuse the
	// connection the client already has.
	Host string
	Port int

	// Auth provides authentication logic.
	// OPTIONAL: if nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Allocator for Arrow memory management.
	// OPTIONAL: uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: uses slog.Default() if nil.
	Logger *slog.Logger

	// LogLevel sets the logging level when Logger is nil.
	// OPTIONAL: if nil, uses Info level.
	LogLevel *slog.Level

	// MaxReceiveMessageLength and MaxSendMessageLength bound gRPC message
	// sizes in bytes.
	// OPTIONAL: default to 100 MiB per spec.md §6 if zero.
	MaxReceiveMessageLength int
	MaxSendMessageLength    int

	// Adapter configures the CSV source adapter used for every dataset.
	Adapter csvsource.Options

	// Builder configures the Arrow builder used for every dataset.
	Builder arrowbuild.Options

	// Schema configures schema inference during catalog scans.
	Schema schema.Options

	// CompressActionResults zstd-compresses DoAction result bodies larger
	// than internal/serialize.CompressThreshold.
	// OPTIONAL: defaults to false. spec.md's Action/Result bodies are
	// UTF-8 JSON with no compression hook, so this is off unless the
	// caller knows every client it talks to can zstd-sniff the body (as
	// this repo's own client package does) — a generic Flight client
	// would otherwise receive undecodable bytes for a large result.
	CompressActionResults bool
}

const defaultMaxMessageLength = 100 * 1024 * 1024 // 100 MiB, per spec.md §6.

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Allocator == nil {
		c.Allocator = memory.DefaultAllocator
	}
	if c.Logger == nil {
		level := slog.LevelInfo
		if c.LogLevel != nil {
			level = *c.LogLevel
		}
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	if c.MaxReceiveMessageLength <= 0 {
		c.MaxReceiveMessageLength = defaultMaxMessageLength
	}
	if c.MaxSendMessageLength <= 0 {
		c.MaxSendMessageLength = defaultMaxMessageLength
	}
	return c
}

func validateConfig(config ServerConfig) error {
	if config.DataDirectory == "" {
		return errors.New("DataDirectory is required")
	}
	return nil
}

// Standard errors returned by this package.
var (
	// ErrUnauthorized indicates authentication failed. Return this from
	// Authenticator.Authenticate() for invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidConfig indicates ServerConfig validation failed.
	ErrInvalidConfig = errors.New("invalid server config")
)
