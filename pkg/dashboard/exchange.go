// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Exchange sends one command line and returns the trimmed reply line.
// The command must not carry its own terminator.
func (c *Client) Exchange(command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchangeLocked(command, c.readTimeout)
}

// Expect sends command and reports whether the reply matches expected.
// A mismatch is returned as a *ProtocolError.
func (c *Client) Expect(command string, expected Matcher) (bool, error) {
	if _, err := c.ExpectReturning(command, expected); err != nil {
		return false, err
	}
	return true, nil
}

// ExpectReturning is like Expect but returns the matched reply.
func (c *Client) ExpectReturning(command string, expected Matcher) (string, error) {
	return c.pinnedExchange(ungated(), command, expected, 0)
}

// opSession pins the exchanges of one operation to the connection its gate
// check passed on.
type opSession struct {
	spec CommandSpec
	id   uint64
}

// pinnedExchange runs one exchange of an operation. The first exchange checks
// the gate and runs spec.onReplyLocked in the same lock hold as its write and
// read. Later exchanges fail with ErrSessionChanged once the client has
// reconnected.
func (c *Client) pinnedExchange(pin *opSession, command string, expected Matcher, timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		return "", newConnectionError("failed to send request", ErrNotConnected)
	}

	first := pin.id == 0
	if first {
		if !pin.spec.Ungated && !c.gate.Supports(pin.spec) {
			c.log.Infof("%s requires software %s on %s, controller runs %s",
				pin.spec.Op, c.gate.Threshold(pin.spec), c.gate.Variant, c.gate.Version)
			c.metrics.gateRejected(pin.spec.Op)
			return "", errGateRejected
		}
		pin.id = c.session
	} else if pin.id != c.session {
		return "", newConnectionError(fmt.Sprintf("%q not sent", command), ErrSessionChanged)
	}

	if timeout <= 0 {
		timeout = c.readTimeout
	}
	reply, err := c.exchangeLocked(command, timeout)
	if err != nil {
		return reply, err
	}
	if !expected.Match(reply) {
		return reply, &ProtocolError{Command: command, Expected: expected.String(), Actual: reply}
	}

	if first && pin.spec.onReplyLocked != nil {
		if err := pin.spec.onReplyLocked(c, reply); err != nil {
			return reply, err
		}
	}
	return reply, nil
}

// exchangeLocked performs a single write-then-read. The caller holds c.mu.
// A timeout other than the client default is installed for this exchange
// only and restored on every exit path.
func (c *Client) exchangeLocked(command string, timeout time.Duration) (reply string, err error) {
	if c.state != Connected {
		return "", newConnectionError("failed to send request", ErrNotConnected)
	}
	if strings.ContainsAny(command, "\r\n") {
		return "", invalidArgument("command %q contains a line terminator", command)
	}

	started := time.Now()
	defer func() {
		c.observe(Exchange{
			Command:  command,
			Response: reply,
			Started:  started,
			Duration: time.Since(started),
			Err:      err,
		})
	}()

	if timeout != c.readTimeout {
		defer func() {
			if c.state != Connected {
				return
			}
			if rerr := c.applyTimeoutLocked(c.readTimeout); rerr != nil {
				c.log.Warnf("Failed to restore read timeout %s: %v", c.readTimeout, rerr)
			}
		}()
	}
	if err := c.applyTimeoutLocked(timeout); err != nil {
		return "", newConnectionError("failed to set read timeout", err)
	}

	if _, err := c.transport.Write([]byte(command + lineTerminator)); err != nil {
		c.closeLocked()
		return "", newConnectionError("failed to send request to dashboard server", err)
	}

	line, err := c.readLineLocked(command)
	if err != nil {
		return "", err
	}
	return trimReply(line), nil
}

// readLineLocked reads byte by byte up to and including the next newline.
// Any failure leaves the client disconnected, since the stream can no
// longer be trusted to line up with requests.
func (c *Client) readLineLocked(command string) (string, error) {
	var sb strings.Builder
	one := make([]byte, 1)

	for sb.Len() < MaxLineLength {
		n, err := c.transport.Read(one)
		if n == 1 {
			sb.WriteByte(one[0])
			if one[0] == '\n' {
				return sb.String(), nil
			}
		}
		if err == nil {
			continue
		}

		if isTimeout(err) {
			timeout := c.activeTimeout
			c.log.Warnf("No reply to %q within %s, disconnecting from dashboard server", command, timeout)
			c.closeLocked()
			return "", &TimeoutError{Command: command, Timeout: timeout}
		}
		c.closeLocked()
		return "", newConnectionError("failed to read reply", err)
	}

	c.closeLocked()
	return "", newConnectionError(fmt.Sprintf("reply to %q", command), ErrLineTooLong)
}

func (c *Client) observe(ex Exchange) {
	entry := c.log.WithField("command", ex.Command)
	if ex.Err != nil {
		entry.WithError(ex.Err).Debug("Exchange failed")
	} else {
		entry.WithField("response", ex.Response).Debug("Exchange")
	}

	c.metrics.observeExchange(ex)

	if c.recorder != nil {
		if err := c.recorder.Record(ex); err != nil {
			c.log.Debugf("Recording exchange: %v", err)
		}
	}
}

func trimReply(s string) string {
	return strings.TrimRight(s, trimChars)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
