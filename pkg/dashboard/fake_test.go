// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// ============================================================
// In-memory transport
// ============================================================

const testGreeting = "Connected: Universal Robots Dashboard Server"

type fakeTimeout struct{}

func (fakeTimeout) Error() string { return "i/o timeout" }
func (fakeTimeout) Timeout() bool { return true }

var errFakeClosed = errors.New("fake transport closed")

// fakeTransport answers each written line through handler. An empty reply
// means the server stays silent and the next Read times out immediately.
type fakeTransport struct {
	mu       sync.Mutex
	version  string
	handler  func(cmd string) string
	pending  []byte
	open     bool
	events   []string
	writes   []string
	openErr  error
	writeErr error
}

func newFakeTransport(version string, handler func(cmd string) string) *fakeTransport {
	if handler == nil {
		handler = func(string) string { return "" }
	}
	return &fakeTransport{version: version, handler: handler}
}

func (f *fakeTransport) Open(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.open = true
	f.pending = []byte(testGreeting + "\n")
	f.events = append(f.events, "open")
	return nil
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return 0, errFakeClosed
	}
	if len(f.pending) == 0 {
		return 0, fakeTimeout{}
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return 0, errFakeClosed
	}
	if f.writeErr != nil {
		return 0, f.writeErr
	}

	cmd := strings.TrimSuffix(string(p), "\n")
	f.writes = append(f.writes, cmd)
	f.events = append(f.events, "write "+cmd)

	var reply string
	if cmd == "PolyscopeVersion" && f.version != "" {
		reply = fmt.Sprintf("URSoftware %s (Sep 01 2021)", f.version)
	} else {
		reply = f.handler(cmd)
	}
	if reply != "" {
		if !strings.HasSuffix(reply, "\n") {
			reply += "\n"
		}
		f.pending = append(f.pending, reply...)
	}
	return len(p), nil
}

func (f *fakeTransport) SetReadTimeout(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "timeout "+d.String())
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.pending = nil
	f.events = append(f.events, "close")
	return nil
}

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeTransport) countWrites(cmd string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.writes {
		if w == cmd {
			n++
		}
	}
	return n
}

func (f *fakeTransport) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// connectFake returns a connected client whose polls do not sleep.
func connectFake(t *testing.T, version string, handler func(cmd string) string, opts ...Option) (*Client, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport(version, handler)
	c := NewClient(ft, opts...)
	c.sleep = func(time.Duration) {}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c, ft
}

// replies builds a handler from a fixed command -> reply table.
func replies(table map[string]string) func(string) string {
	return func(cmd string) string {
		return table[cmd]
	}
}
