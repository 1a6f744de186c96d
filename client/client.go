// Package client is a Flight client for flightbridge servers: connect,
// discover datasets, fetch or stream their record batches, and invoke
// actions, with calls wrapped in retry from the reliability package. The
// client does not use a circuit breaker.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/flightbridge/flightbridge/reliability"
)

// Options configures a Client.
type Options struct {
	// Host and Port address the Flight server.
	// REQUIRED.
	Host string
	Port int

	// Token, when non-empty, is sent as a bearer token on every call.
	// OPTIONAL.
	Token string

	// MaxReceiveMessageLength and MaxSendMessageLength bound gRPC
	// message sizes in bytes. OPTIONAL: default 100 MiB.
	MaxReceiveMessageLength int
	MaxSendMessageLength    int

	// RetryAttempts and RetryDelay configure the retry manager wrapping
	// every call. OPTIONAL: default to reliability.RetryOptions's
	// defaults (3 attempts, 1s base delay).
	RetryAttempts int
	RetryDelay    time.Duration

	// ConnectionTimeout bounds the initial handshake performed by
	// Connect. OPTIONAL: defaults to 5s.
	ConnectionTimeout time.Duration

	// KeepAlive enables gRPC client-side keepalive pings.
	// OPTIONAL.
	KeepAlive         bool
	KeepAliveTimeout  time.Duration
	KeepAliveInterval time.Duration

	// Allocator for Arrow memory management. OPTIONAL: defaults to
	// memory.DefaultAllocator.
	Allocator memory.Allocator

	// Logger for internal logging. OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxReceiveMessageLength <= 0 {
		o.MaxReceiveMessageLength = 100 * 1024 * 1024
	}
	if o.MaxSendMessageLength <= 0 {
		o.MaxSendMessageLength = 100 * 1024 * 1024
	}
	if o.ConnectionTimeout <= 0 {
		o.ConnectionTimeout = 5 * time.Second
	}
	if o.Allocator == nil {
		o.Allocator = memory.DefaultAllocator
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// State describes a Client's connection state.
type State struct {
	IsConnected      bool
	IsConnecting     bool
	ConnectionError  error
}

// Events holds optional callbacks fired on connection lifecycle
// transitions. Callbacks MUST NOT block.
type Events struct {
	OnConnecting     func()
	OnConnected      func()
	OnDisconnecting  func()
	OnDisconnected   func()
	OnConnectionError func(err error)
	OnDisconnectError func(err error)
}

// Client is a Flight client over one server address.
type Client struct {
	opts   Options
	events Events
	logger *slog.Logger
	retry  *reliability.RetryManager

	mu           sync.Mutex
	state        State
	conn         *grpc.ClientConn
	flightClient flight.FlightServiceClient

	connectGroup singleflight.Group
}

// New builds a Client. It does not dial; call Connect before issuing
// requests.
func New(opts Options, events Events) *Client {
	opts = opts.withDefaults()
	retryOpts := reliability.RetryOptions{
		MaxAttempts: opts.RetryAttempts,
		BaseDelay:   opts.RetryDelay,
	}
	return &Client{
		opts:   opts,
		events: events,
		logger: opts.Logger,
		retry:  reliability.NewRetryManager(retryOpts, opts.Logger),
	}
}

// NewWithConn builds a Client around an already-established gRPC
// connection, skipping Connect's dial step. Used by tests and by callers
// that need a custom dialer (e.g. bufconn, a Unix socket).
func NewWithConn(conn *grpc.ClientConn, opts Options, events Events) *Client {
	c := New(opts, events)
	c.conn = conn
	c.flightClient = flight.NewFlightServiceClient(conn)
	c.state = State{IsConnected: true}
	return c
}

// Connect dials the server and blocks until a probing ListFlights call
// succeeds or ConnectionTimeout elapses. Idempotent: a second call while
// already connected is a no-op, and a second call while already
// connecting joins the in-flight attempt rather than dialing again.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state.IsConnected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	_, err, _ := c.connectGroup.Do("connect", func() (any, error) {
		return nil, c.connect(ctx)
	})
	return err
}

func (c *Client) connect(ctx context.Context) error {
	c.setConnecting()

	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectionTimeout)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", c.opts.Host, c.opts.Port)

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(c.opts.MaxReceiveMessageLength),
			grpc.MaxCallSendMsgSize(c.opts.MaxSendMessageLength),
		),
		grpc.WithBlock(),
	}
	if c.opts.KeepAlive {
		dialOpts = append(dialOpts, grpc.WithKeepaliveParams(keepaliveParams(c.opts)))
	}

	conn, err := grpc.DialContext(dialCtx, addr, dialOpts...)
	if err != nil {
		c.setConnectionError(err)
		return err
	}

	flightClient := flight.NewFlightServiceClient(conn)

	probeErr := c.retry.Execute(dialCtx, "connect-probe", func() error {
		stream, err := flightClient.ListFlights(dialCtx, &flight.Criteria{})
		if err != nil {
			return err
		}
		_, err = stream.Recv()
		if err != nil && !isStreamEnd(err) {
			return err
		}
		return nil
	})
	if probeErr != nil {
		conn.Close()
		c.setConnectionError(probeErr)
		return probeErr
	}

	c.mu.Lock()
	c.conn = conn
	c.flightClient = flightClient
	c.state = State{IsConnected: true}
	c.mu.Unlock()

	if c.events.OnConnected != nil {
		c.events.OnConnected()
	}
	return nil
}

// Disconnect closes the underlying gRPC channel. Idempotent: calling it
// while not connected is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if c.events.OnDisconnecting != nil {
		c.events.OnDisconnecting()
	}

	err := conn.Close()

	c.mu.Lock()
	c.conn = nil
	c.flightClient = nil
	c.state = State{}
	c.mu.Unlock()

	if err != nil {
		if c.events.OnDisconnectError != nil {
			c.events.OnDisconnectError(err)
		}
		return err
	}
	if c.events.OnDisconnected != nil {
		c.events.OnDisconnected()
	}
	return nil
}

// State returns a snapshot of the client's connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setConnecting() {
	c.mu.Lock()
	c.state = State{IsConnecting: true}
	c.mu.Unlock()
	if c.events.OnConnecting != nil {
		c.events.OnConnecting()
	}
}

func (c *Client) setConnectionError(err error) {
	c.mu.Lock()
	c.state = State{ConnectionError: err}
	c.mu.Unlock()
	if c.events.OnConnectionError != nil {
		c.events.OnConnectionError(err)
	}
}

// flightOrErr returns the connected flight.FlightServiceClient, or
// ErrNotConnected.
func (c *Client) flightOrErr() (flight.FlightServiceClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flightClient == nil {
		return nil, ErrNotConnected
	}
	return c.flightClient, nil
}

// withAuth attaches the bearer token, if configured, as outgoing gRPC
// metadata.
func (c *Client) withAuth(ctx context.Context) context.Context {
	if c.opts.Token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.opts.Token)
}

func keepaliveParams(opts Options) keepalive.ClientParameters {
	timeout := opts.KeepAliveTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	interval := opts.KeepAliveInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return keepalive.ClientParameters{Time: interval, Timeout: timeout, PermitWithoutStream: true}
}
