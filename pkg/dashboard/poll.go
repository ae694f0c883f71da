// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"time"
)

// PollUntil re-sends query every PollInterval until a reply matches expected
// or the accumulated interval count reaches timeout. Running out of time is
// a normal false result; transport failures are returned as errors, as is a
// reconnect by another goroutine while polling.
func (c *Client) PollUntil(query string, expected Matcher, timeout time.Duration) (bool, error) {
	return c.pollUntil(ungated(), query, expected, timeout)
}

func (c *Client) pollUntil(pin *opSession, query string, expected Matcher, timeout time.Duration) (bool, error) {
	var (
		elapsed time.Duration
		reply   string
	)

	for elapsed < timeout {
		var err error
		c.metrics.pollAttempt()
		reply, err = c.pinnedExchange(pin, query, Any(), 0)
		if err != nil {
			return false, err
		}
		if expected.Match(reply) {
			return true, nil
		}

		c.sleep(c.pollInterval)
		elapsed += c.pollInterval
	}

	if timeout > 0 {
		c.log.Infof("Did not get the expected %s response to %q within %s. Last response was: %q",
			expected, query, timeout, reply)
	}
	return false, nil
}

// IssueThenPoll sends trigger (which must be answered with triggerExpected)
// and then polls status for RetryWindow, up to maxAttempts times. It returns
// true as soon as status matches statusExpected.
func (c *Client) IssueThenPoll(trigger string, triggerExpected Matcher, status string, statusExpected Matcher, maxAttempts int) (bool, error) {
	return c.issueThenPoll(ungated(), trigger, triggerExpected, status, statusExpected, maxAttempts)
}

func (c *Client) issueThenPoll(pin *opSession, trigger string, triggerExpected Matcher, status string, statusExpected Matcher, maxAttempts int) (bool, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := c.pinnedExchange(pin, trigger, triggerExpected, 0); err != nil {
			return false, err
		}

		ok, err := c.pollUntil(pin, status, statusExpected, c.retryWindow)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	c.log.Infof("%q not confirmed by %q after %d attempts", trigger, status, maxAttempts)
	return false, nil
}

// ungated pins raw polls to whichever connection their first exchange uses.
func ungated() *opSession {
	return &opSession{spec: CommandSpec{Ungated: true}}
}
