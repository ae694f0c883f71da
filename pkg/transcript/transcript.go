// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transcript records dashboard exchanges as a CBOR sequence so a
// session can be inspected after the fact.
package transcript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/fxamacker/cbor/v2"
)

// Record is one exchange as stored on disk.
type Record struct {
	Time     int64  `cbor:"0,keyasint"` // unix nanoseconds
	Command  string `cbor:"1,keyasint"`
	Response string `cbor:"2,keyasint,omitempty"`
	Error    string `cbor:"3,keyasint,omitempty"`
	Duration int64  `cbor:"4,keyasint"` // nanoseconds
	Outcome  string `cbor:"5,keyasint,omitempty"`
}

// FromExchange converts a client exchange into a record.
func FromExchange(ex dashboard.Exchange) Record {
	r := Record{
		Time:     ex.Started.UnixNano(),
		Command:  ex.Command,
		Response: ex.Response,
		Duration: int64(ex.Duration),
		Outcome:  dashboard.Outcome(ex.Err),
	}
	if ex.Err != nil {
		r.Error = ex.Err.Error()
	}
	return r
}

// At returns the time the exchange started.
func (r Record) At() time.Time {
	return time.Unix(0, r.Time)
}

// RTT returns the round-trip time of the exchange.
func (r Record) RTT() time.Duration {
	return time.Duration(r.Duration)
}

// Failed reports whether the exchange ended in an error.
func (r Record) Failed() bool {
	return r.Error != ""
}

// Format renders the record as one human-readable line.
func (r Record) Format() string {
	ts := r.At().Format("15:04:05.000")
	rtt := r.RTT().Round(time.Millisecond)
	if r.Failed() {
		return fmt.Sprintf("[%s] %s -> ERROR %s (%v)", ts, r.Command, r.Error, rtt)
	}
	return fmt.Sprintf("[%s] %s -> %s (%v)", ts, r.Command, r.Response, rtt)
}

// Writer appends records to a stream. It implements dashboard.Recorder.
type Writer struct {
	mu     sync.Mutex
	enc    *cbor.Encoder
	closer io.Closer
}

// NewWriter writes records to w.
func NewWriter(w io.Writer) *Writer {
	tw := &Writer{enc: cbor.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		tw.closer = c
	}
	return tw
}

// Create opens path for appending and returns a writer on it.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	return NewWriter(f), nil
}

// Record appends one exchange.
func (w *Writer) Record(ex dashboard.Exchange) error {
	return w.Write(FromExchange(ex))
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return os.ErrClosed
	}
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode transcript record: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enc = nil
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Reader decodes records from a stream.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader reads records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("failed to decode transcript record: %w", err)
	}
	return rec, nil
}

// ReadAll decodes every record in r.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)
	var records []Record
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
