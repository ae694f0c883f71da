// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Serial reaches the dashboard server through a serial console bridge.
type Serial struct {
	PortName string
	BaudRate int

	mu   sync.Mutex
	port serial.Port
}

// NewSerial creates a serial transport (8N1).
func NewSerial(portName string, baudRate int) *Serial {
	return &Serial{PortName: portName, BaudRate: baudRate}
}

// Open opens the serial port. The context is not consulted; opening a port
// does not block.
func (s *Serial) Open(_ context.Context) error {
	mode := &serial.Mode{
		BaudRate: s.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.PortName, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %v", s.PortName, err)
	}

	s.mu.Lock()
	s.port = port
	s.mu.Unlock()
	return nil
}

func (s *Serial) current() serial.Port {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Read reads from the port. go.bug.st/serial signals an expired read
// timeout as (0, nil), which is reported as ErrReadTimeout.
func (s *Serial) Read(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, ErrConnectionClosed
	}

	n, err := port.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, ErrReadTimeout
	}
	return n, nil
}

func (s *Serial) Write(p []byte) (int, error) {
	port := s.current()
	if port == nil {
		return 0, ErrConnectionClosed
	}
	return port.Write(p)
}

func (s *Serial) SetReadTimeout(d time.Duration) error {
	port := s.current()
	if port == nil {
		return ErrConnectionClosed
	}
	if d <= 0 {
		d = serial.NoTimeout
	}
	return port.SetReadTimeout(d)
}

func (s *Serial) Close() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()

	if port == nil {
		return nil
	}
	return port.Close()
}

func (s *Serial) String() string {
	return fmt.Sprintf("Serial: %s @ %d baud", s.PortName, s.BaudRate)
}
