// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dashboard

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Exchanges        *prometheus.CounterVec
	ExchangeDuration prometheus.Histogram
	PollAttempts     prometheus.Counter
	GateRejections   *prometheus.CounterVec
	Connected        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_exchanges_total",
				Help: "Dashboard request/response exchanges by outcome",
			},
			[]string{"result"},
		),
		ExchangeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_exchange_duration_seconds",
			Help:    "Time from request write to reply line",
			Buckets: prometheus.DefBuckets,
		}),
		PollAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_poll_attempts_total",
			Help: "Status queries issued while polling",
		}),
		GateRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_gate_rejections_total",
				Help: "Operations refused by the version gate",
			},
			[]string{"operation"},
		),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_connected",
			Help: "1 while connected to the dashboard server",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Exchanges,
			m.ExchangeDuration,
			m.PollAttempts,
			m.GateRejections,
			m.Connected,
		)
	}
	return m
}

func (m *Metrics) observeExchange(ex Exchange) {
	if m == nil {
		return
	}
	m.Exchanges.WithLabelValues(Outcome(ex.Err)).Inc()
	if ex.Err == nil {
		m.ExchangeDuration.Observe(ex.Duration.Seconds())
	}
}

func (m *Metrics) pollAttempt() {
	if m == nil {
		return
	}
	m.PollAttempts.Inc()
}

func (m *Metrics) gateRejected(op Operation) {
	if m == nil {
		return
	}
	m.GateRejections.WithLabelValues(string(op)).Inc()
}

func (m *Metrics) setConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

// Outcome classifies an exchange error as ok, timeout, invalid or
// connection_error. It is the label used by the exchange counter.
func Outcome(err error) string {
	var timeoutErr *TimeoutError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	default:
		return "connection_error"
	}
}
