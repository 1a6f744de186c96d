package flightbridge

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/flightbridge/flightbridge/arrowbuild"
	"github.com/flightbridge/flightbridge/auth"
	"github.com/flightbridge/flightbridge/csvsource"
	"github.com/flightbridge/flightbridge/schema"
)

// ConfigBuilder builds a ServerConfig using a fluent API.
// Not thread-safe - use only during initialization.
type ConfigBuilder struct {
	cfg ServerConfig
}

// NewConfigBuilder starts a ServerConfig for the dataset directory
// dataDirectory.
//
// Example:
//
//	config := flightbridge.NewConfigBuilder("/data/csv").
//	    Address("0.0.0.0", 8815).
//	    Auth(flightbridge.BearerAuth(validate)).
//	    Build()
func NewConfigBuilder(dataDirectory string) *ConfigBuilder {
	return &ConfigBuilder{
		cfg: ServerConfig{DataDirectory: dataDirectory},
	}
}

// Address sets the host and port advertised in FlightEndpoint locations.
func (b *ConfigBuilder) Address(host string, port int) *ConfigBuilder {
	b.cfg.Host = host
	b.cfg.Port = port
	return b
}

// Auth sets the authenticator used to validate incoming requests.
func (b *ConfigBuilder) Auth(a auth.Authenticator) *ConfigBuilder {
	b.cfg.Auth = a
	return b
}

// Allocator sets the Arrow memory allocator.
func (b *ConfigBuilder) Allocator(alloc memory.Allocator) *ConfigBuilder {
	b.cfg.Allocator = alloc
	return b
}

// Logger sets the logger used for internal logging.
func (b *ConfigBuilder) Logger(logger *slog.Logger) *ConfigBuilder {
	b.cfg.Logger = logger
	return b
}

// LogLevel sets the logging level used when no Logger is set.
func (b *ConfigBuilder) LogLevel(level slog.Level) *ConfigBuilder {
	b.cfg.LogLevel = &level
	return b
}

// MessageLimits sets the gRPC max receive and send message sizes in bytes.
func (b *ConfigBuilder) MessageLimits(maxReceive, maxSend int) *ConfigBuilder {
	b.cfg.MaxReceiveMessageLength = maxReceive
	b.cfg.MaxSendMessageLength = maxSend
	return b
}

// CSVOptions sets the CSV source adapter options used for every dataset.
func (b *ConfigBuilder) CSVOptions(opts csvsource.Options) *ConfigBuilder {
	b.cfg.Adapter = opts
	return b
}

// BuilderOptions sets the Arrow record builder options used for every
// dataset.
func (b *ConfigBuilder) BuilderOptions(opts arrowbuild.Options) *ConfigBuilder {
	b.cfg.Builder = opts
	return b
}

// SchemaOptions sets the schema inference options used during catalog
// scans.
func (b *ConfigBuilder) SchemaOptions(opts schema.Options) *ConfigBuilder {
	b.cfg.Schema = opts
	return b
}

// CompressActionResults opts in to zstd-compressing large DoAction result
// bodies. Only enable this when every client talking to the server can
// zstd-sniff a Result body, such as this module's own client package.
func (b *ConfigBuilder) CompressActionResults(enabled bool) *ConfigBuilder {
	b.cfg.CompressActionResults = enabled
	return b
}

// Build finalizes and returns the ServerConfig. Defaults are applied by
// NewServer, not here, so the returned config still reflects exactly what
// was set on the builder.
func (b *ConfigBuilder) Build() ServerConfig {
	return b.cfg
}
