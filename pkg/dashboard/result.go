// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"errors"
)

// ResultKind tags the outcome of an operation.
type ResultKind int

const (
	// KindOK means the operation succeeded.
	KindOK ResultKind = iota
	// KindNegative means the controller answered but the condition did not
	// hold (poll exhausted, "false" reply, "could not understand").
	KindNegative
	// KindUnsupported means the version gate refused the operation.
	KindUnsupported
	// KindConnectionFailed means the transport failed or was not connected.
	KindConnectionFailed
	// KindTimedOut means no reply arrived in time; the client is disconnected.
	KindTimedOut
	// KindProtocolMismatch means the reply did not match the expected pattern.
	KindProtocolMismatch
	// KindInvalid means the call was rejected before any I/O.
	KindInvalid
)

func (k ResultKind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNegative:
		return "negative"
	case KindUnsupported:
		return "unsupported on this version"
	case KindConnectionFailed:
		return "connection error"
	case KindTimedOut:
		return "timeout"
	case KindProtocolMismatch:
		return "protocol error"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result is the outcome of Invoke. Value holds the reply line for get-style
// operations (and for negative answers, so callers can show them).
type Result struct {
	Op    Operation
	Kind  ResultKind
	Value string
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// Bool unpacks the result for boolean operations.
func (r Result) Bool() (bool, error) {
	return r.OK(), r.Err
}

// Text unpacks the result for get-style operations.
func (r Result) Text() (string, bool, error) {
	return r.Value, r.OK(), r.Err
}

func resultFromError(op Operation, value string, err error) Result {
	var (
		timeoutErr  *TimeoutError
		protocolErr *ProtocolError
	)

	if errors.Is(err, errGateRejected) {
		return Result{Op: op, Kind: KindUnsupported}
	}

	kind := KindConnectionFailed
	switch {
	case errors.As(err, &timeoutErr):
		kind = KindTimedOut
	case errors.As(err, &protocolErr):
		kind = KindProtocolMismatch
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrUnknownOperation):
		kind = KindInvalid
	}
	return Result{Op: op, Kind: kind, Value: value, Err: err}
}
