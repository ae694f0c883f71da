// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// DefaultDialTimeout bounds TCP connection setup.
const DefaultDialTimeout = 10 * time.Second

// TCP is a plain TCP stream to the dashboard server.
type TCP struct {
	Address     string
	DialTimeout time.Duration

	mu          sync.Mutex
	conn        net.Conn
	readTimeout time.Duration
}

// NewTCP creates a TCP transport for host:port.
func NewTCP(host string, port int) *TCP {
	return &TCP{
		Address:     net.JoinHostPort(host, strconv.Itoa(port)),
		DialTimeout: DefaultDialTimeout,
	}
}

// Open dials the server.
func (t *TCP) Open(ctx context.Context) error {
	d := net.Dialer{Timeout: t.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.Address, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *TCP) current() (net.Conn, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn, t.readTimeout
}

// Read reads from the stream. Each call may block for at most the read
// timeout; expiry is reported as an error with Timeout() == true.
func (t *TCP) Read(p []byte) (int, error) {
	conn, timeout := t.current()
	if conn == nil {
		return 0, ErrConnectionClosed
	}

	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}
	return conn.Read(p)
}

func (t *TCP) Write(p []byte) (int, error) {
	conn, _ := t.current()
	if conn == nil {
		return 0, ErrConnectionClosed
	}
	return conn.Write(p)
}

// SetReadTimeout sets the per-read timeout. Zero disables it.
func (t *TCP) SetReadTimeout(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readTimeout = d
	return nil
}

// Close closes the stream. Closing a closed transport is a no-op.
func (t *TCP) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (t *TCP) String() string {
	return fmt.Sprintf("TCP: %s", t.Address)
}
