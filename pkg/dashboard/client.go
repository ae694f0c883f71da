// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Protocol constants
const (
	// DefaultPort is the dashboard server TCP port.
	DefaultPort = 29999

	// DefaultReadTimeout bounds the wait for a single reply line.
	DefaultReadTimeout = 1 * time.Second

	// MaxLineLength caps a reply line, terminator included.
	MaxLineLength = 4096

	// PollInterval is the cadence of PollUntil.
	PollInterval = 100 * time.Millisecond

	// RetryWindow is how long IssueThenPoll polls after each trigger.
	RetryWindow = 1 * time.Second

	// DefaultPowerOnAttempts is the trigger budget of PowerOn.
	DefaultPowerOnAttempts = 1200

	lineTerminator = "\n"
	trimChars      = "\t\n\v\f\r "
)

// Transport is the byte stream the client speaks over. Read must return an
// error whose Timeout method reports true when the read timeout expires.
type Transport interface {
	Open(ctx context.Context) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(d time.Duration) error
	Close() error
}

// ConnectionState is the client's view of the session.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Exchange is one command line sent and one reply line received.
type Exchange struct {
	Command  string
	Response string
	Started  time.Time
	Duration time.Duration
	Err      error
}

// Recorder receives every exchange. Recording errors are logged and
// otherwise ignored.
type Recorder interface {
	Record(ex Exchange) error
}

// Client speaks the dashboard protocol over a Transport.
//
// A Client is safe for concurrent use. Every exchange holds the client lock
// for its write and its read, so replies are never attributed to another
// goroutine's command. Connect, Disconnect and version recording take the
// same lock.
type Client struct {
	mu sync.Mutex

	transport     Transport
	state         ConnectionState
	session       uint64
	gate          VersionGate
	greeting      string
	readTimeout   time.Duration
	activeTimeout time.Duration

	log      logrus.FieldLogger
	metrics  *Metrics
	recorder Recorder

	pollInterval time.Duration
	retryWindow  time.Duration
	sleep        func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes client logging to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRecorder hands every exchange to r.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithReadTimeout replaces DefaultReadTimeout.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// NewClient creates a disconnected client over t.
func NewClient(t Transport, opts ...Option) *Client {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	c := &Client{
		transport:    t,
		readTimeout:  DefaultReadTimeout,
		log:          quiet,
		pollInterval: PollInterval,
		retryWindow:  RetryWindow,
		sleep:        time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the transport, reads the server greeting and queries the
// software version. The client is connected only if all three succeed.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Connected {
		c.log.Error("Socket is already connected, refusing to reconnect")
		return newConnectionError("connect", ErrAlreadyConnected)
	}

	if err := c.transport.Open(ctx); err != nil {
		return newConnectionError("failed to open transport", err)
	}
	c.state = Connected
	c.session++
	c.activeTimeout = 0
	c.metrics.setConnected(true)

	if err := c.applyTimeoutLocked(c.readTimeout); err != nil {
		c.closeLocked()
		return newConnectionError("failed to set read timeout", err)
	}

	greeting, err := c.readLineLocked("<greeting>")
	if err != nil {
		c.closeLocked()
		return err
	}
	c.greeting = trimReply(greeting)
	c.log.Info(c.greeting)

	reply, err := c.exchangeLocked(versionCommand, c.readTimeout)
	if err == nil && !versionExpect.Match(reply) {
		err = &ProtocolError{Command: versionCommand, Expected: versionExpect.String(), Actual: reply}
	}
	if err != nil {
		c.closeLocked()
		return err
	}
	if err := c.recordVersionLocked(reply); err != nil {
		c.closeLocked()
		return err
	}
	return nil
}

// Disconnect closes the transport. It is a no-op when already disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disconnected {
		return
	}
	c.log.Info("Disconnecting from dashboard server")
	c.closeLocked()
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected returns true if the client is currently connected.
func (c *Client) IsConnected() bool {
	return c.State() == Connected
}

// Gate returns the version gate recorded at connection time.
func (c *Client) Gate() VersionGate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gate
}

// Greeting returns the line the server sent on connect.
func (c *Client) Greeting() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.greeting
}

func (c *Client) recordVersionLocked(reply string) error {
	gate, err := RecordVersion(reply)
	if err != nil {
		return err
	}
	c.gate = gate
	c.log.WithFields(logrus.Fields{
		"version": gate.Version.String(),
		"variant": gate.Variant.String(),
	}).Debug("Recorded controller software version")
	return nil
}

// closeLocked tears the session down. The caller holds c.mu.
func (c *Client) closeLocked() {
	if err := c.transport.Close(); err != nil {
		c.log.Debugf("Closing transport: %v", err)
	}
	c.state = Disconnected
	c.gate = VersionGate{}
	c.activeTimeout = 0
	c.metrics.setConnected(false)
}

func (c *Client) applyTimeoutLocked(d time.Duration) error {
	if d == c.activeTimeout {
		return nil
	}
	if err := c.transport.SetReadTimeout(d); err != nil {
		return err
	}
	c.activeTimeout = d
	return nil
}
