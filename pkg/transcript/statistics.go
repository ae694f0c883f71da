// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transcript

import (
	"fmt"
	"strings"
	"time"
)

// Statistics tracks exchange counts, outcomes and round-trip times
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalExchanges   uint64
	OKExchanges      uint64
	Timeouts         uint64
	ConnectionErrors uint64
	InvalidCommands  uint64

	// Round-trip times of successful exchanges
	MinRTT   time.Duration
	MaxRTT   time.Duration
	TotalRTT time.Duration

	// Rates (calculated)
	ExchangeRate float64 // exchanges/sec
	ErrorRate    float64 // errors/sec
}

// NewStatistics creates an empty statistics tracker. The time window opens
// at the first record.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Update adds one record.
func (s *Statistics) Update(r Record) {
	at := r.At()
	if s.TotalExchanges == 0 {
		s.StartTime = at
	}
	s.TotalExchanges++

	switch {
	case !r.Failed():
		s.OKExchanges++
		rtt := r.RTT()
		if s.MinRTT == 0 || rtt < s.MinRTT {
			s.MinRTT = rtt
		}
		if rtt > s.MaxRTT {
			s.MaxRTT = rtt
		}
		s.TotalRTT += rtt
	case r.Outcome == "timeout":
		s.Timeouts++
	case r.Outcome == "invalid":
		s.InvalidCommands++
	default:
		s.ConnectionErrors++
	}

	if end := at.Add(r.RTT()); end.After(s.LastUpdateTime) {
		s.LastUpdateTime = end
	}
}

// Errors returns the number of failed exchanges.
func (s *Statistics) Errors() uint64 {
	return s.Timeouts + s.ConnectionErrors + s.InvalidCommands
}

// AverageRTT returns the mean round-trip time of successful exchanges.
func (s *Statistics) AverageRTT() time.Duration {
	if s.OKExchanges == 0 {
		return 0
	}
	return s.TotalRTT / time.Duration(s.OKExchanges)
}

// Elapsed returns the span from the first exchange to the end of the last.
func (s *Statistics) Elapsed() time.Duration {
	if s.TotalExchanges == 0 {
		return 0
	}
	return s.LastUpdateTime.Sub(s.StartTime)
}

// CalculateRates calculates exchange and error rates
func (s *Statistics) CalculateRates() {
	elapsed := s.Elapsed().Seconds()
	if elapsed > 0 {
		s.ExchangeRate = float64(s.TotalExchanges) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var okPercent float64
	if s.TotalExchanges > 0 {
		okPercent = float64(s.OKExchanges) * 100.0 / float64(s.TotalExchanges)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Statistics (%.1f seconds) ===\n", s.Elapsed().Seconds())
	fmt.Fprintf(&b, "Total Exchanges:   %8d\n", s.TotalExchanges)
	fmt.Fprintf(&b, "Successful:        %8d (%.1f%%)\n", s.OKExchanges, okPercent)

	if s.Timeouts > 0 {
		fmt.Fprintf(&b, "Timeouts:          %8d\n", s.Timeouts)
	}
	if s.ConnectionErrors > 0 {
		fmt.Fprintf(&b, "Connection Errors: %8d\n", s.ConnectionErrors)
	}
	if s.InvalidCommands > 0 {
		fmt.Fprintf(&b, "Invalid Commands:  %8d\n", s.InvalidCommands)
	}

	if s.OKExchanges > 0 {
		fmt.Fprintf(&b, "RTT min/avg/max:   %v / %v / %v\n",
			s.MinRTT.Round(time.Microsecond),
			s.AverageRTT().Round(time.Microsecond),
			s.MaxRTT.Round(time.Microsecond))
	}

	fmt.Fprintf(&b, "Exchange Rate:     %8.2f/s\n", s.ExchangeRate)
	if s.Errors() > 0 {
		fmt.Fprintf(&b, "Error Rate:        %8.2f/s\n", s.ErrorRate)
	}

	return b.String()
}
