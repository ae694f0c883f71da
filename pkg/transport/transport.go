// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport provides the byte streams a dashboard client can run
// over: a direct TCP connection, a WebSocket bridge and a serial console.
package transport

import (
	"errors"
	"net"
)

// ErrReadTimeout is returned by Read when no byte arrived within the read
// timeout. It reports Timeout() == true.
var ErrReadTimeout error = timeoutError{}

// ErrConnectionClosed is returned when reading from or writing to a closed
// transport.
var ErrConnectionClosed = errors.New("transport closed")

type timeoutError struct{}

func (timeoutError) Error() string   { return "read timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}
