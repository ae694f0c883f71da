// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket carries the dashboard byte stream over a WebSocket bridge.
// Outgoing bytes are sent as text messages; incoming messages of either
// type are concatenated into one stream.
type WebSocket struct {
	URL           string
	Username      string
	Password      string
	SkipSSLVerify bool

	mu          sync.Mutex
	conn        *websocket.Conn
	buf         []byte
	bufOffset   int
	readTimeout time.Duration
	closed      bool
}

// NewWebSocket creates a WebSocket transport. Credentials are sent as HTTP
// Basic auth when both are set.
func NewWebSocket(wsURL, username, password string, skipSSLVerify bool) *WebSocket {
	return &WebSocket{
		URL:           wsURL,
		Username:      username,
		Password:      password,
		SkipSSLVerify: skipSSLVerify,
	}
}

// Open performs the WebSocket handshake.
func (w *WebSocket) Open(ctx context.Context) error {
	u, err := url.Parse(w.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: w.SkipSSLVerify,
		}
	}

	headers := http.Header{}
	if w.Username != "" && w.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(w.Username + ":" + w.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, w.URL, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return fmt.Errorf("WebSocket connection failed: %v", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.buf = nil
	w.bufOffset = 0
	w.closed = false
	w.mu.Unlock()
	return nil
}

// Read returns buffered message bytes first, then waits for the next message.
func (w *WebSocket) Read(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.conn == nil {
		return 0, ErrConnectionClosed
	}

	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	if w.readTimeout > 0 {
		if err := w.conn.SetReadDeadline(time.Now().Add(w.readTimeout)); err != nil {
			return 0, err
		}
	}

	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			// gorilla connections are unusable after any read error
			w.closed = true
			return 0, err
		}
		if len(data) == 0 {
			continue
		}

		w.buf = data
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocket) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.conn == nil {
		return 0, ErrConnectionClosed
	}
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocket) SetReadTimeout(d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.readTimeout = d
	return nil
}

func (w *WebSocket) Close() error {
	w.mu.Lock()
	conn := w.conn
	w.conn = nil
	w.closed = true
	w.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (w *WebSocket) String() string {
	return fmt.Sprintf("WebSocket: %s", w.URL)
}
