// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the dashboard client.
var (
	// ErrNotConnected indicates an exchange was attempted without a connection.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates Connect was called on a connected client.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrSessionChanged indicates the client reconnected while a multi-step
	// operation was in progress. The rest of the operation is not sent.
	ErrSessionChanged = errors.New("connection re-established during operation")

	// ErrLineTooLong indicates a reply exceeded MaxLineLength without a terminator.
	ErrLineTooLong = errors.New("reply line too long")

	// ErrInvalidArgument indicates a command or argument that cannot be sent
	// on the wire (embedded line terminators, missing token).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownOperation indicates an operation name missing from the catalog.
	ErrUnknownOperation = errors.New("unknown operation")
)

// errGateRejected marks an operation the connected controller does not
// support. It surfaces as KindUnsupported, never as a Result error.
var errGateRejected = errors.New("unsupported on this version")

// ConnectionError represents a failed write, a closed stream or an exchange
// attempted while disconnected.
type ConnectionError struct {
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("connection error: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// TimeoutError is returned when no reply line arrived within the active read
// timeout. The client is disconnected by the time the caller sees it.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no reply to %q within %s, disconnected from dashboard server", e.Command, e.Timeout)
}

// ProtocolError is returned when a reply arrived but did not match the
// expected pattern.
type ProtocolError struct {
	Command  string
	Expected string
	Actual   string
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%q: expected %s, but received %q", e.Command, e.Expected, e.Actual)
}

func newConnectionError(message string, cause error) error {
	return &ConnectionError{Message: message, Cause: cause}
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
