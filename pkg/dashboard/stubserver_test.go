// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/Thermoquad/dashctl/pkg/transport"
)

// ============================================================
// TCP stub dashboard server
// ============================================================

// stubServer accepts dashboard connections on 127.0.0.1, sends the greeting,
// answers PolyscopeVersion with versionLine and everything else through
// handler. A handler returning ok=false leaves the command unanswered.
type stubServer struct {
	listener    net.Listener
	versionLine string
	handler     func(cmd string) (reply string, ok bool)

	mu          sync.Mutex
	received    []string
	connections []net.Conn
	wg          sync.WaitGroup
}

func startStubServer(t *testing.T, versionLine string, handler func(cmd string) (string, bool)) *stubServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ss := &stubServer{
		listener:    listener,
		versionLine: versionLine,
		handler:     handler,
	}

	ss.wg.Add(1)
	go ss.acceptLoop()
	t.Cleanup(ss.stop)
	return ss
}

func (ss *stubServer) port() int {
	return ss.listener.Addr().(*net.TCPAddr).Port
}

func (ss *stubServer) acceptLoop() {
	defer ss.wg.Done()
	for {
		conn, err := ss.listener.Accept()
		if err != nil {
			return
		}

		ss.mu.Lock()
		ss.connections = append(ss.connections, conn)
		ss.mu.Unlock()

		ss.wg.Add(1)
		go ss.handleConnection(conn)
	}
}

func (ss *stubServer) handleConnection(conn net.Conn) {
	defer ss.wg.Done()

	fmt.Fprintf(conn, "%s\n", testGreeting)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd := scanner.Text()

		ss.mu.Lock()
		ss.received = append(ss.received, cmd)
		ss.mu.Unlock()

		if cmd == "PolyscopeVersion" {
			fmt.Fprintf(conn, "%s\n", ss.versionLine)
			continue
		}
		if ss.handler == nil {
			continue
		}
		if reply, ok := ss.handler(cmd); ok {
			fmt.Fprintf(conn, "%s\n", reply)
		}
	}
}

func (ss *stubServer) commands() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.received...)
}

func (ss *stubServer) stop() {
	ss.listener.Close()

	ss.mu.Lock()
	for _, conn := range ss.connections {
		conn.Close()
	}
	ss.connections = nil
	ss.mu.Unlock()

	ss.wg.Wait()
}

// dialStub connects a client to ss over real TCP.
func dialStub(t *testing.T, ss *stubServer, opts ...Option) *Client {
	t.Helper()
	c := NewClient(transport.NewTCP("127.0.0.1", ss.port()), opts...)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c
}
