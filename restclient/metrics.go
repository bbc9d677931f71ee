// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"errors"
	"github.com/prometheus/client_golang/prometheus"
	"strconv"
	"time"
)

// metrics counts and times the requests a client makes.  A nil
// *metrics records nothing.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diffeo",
				Subsystem: "geoserver",
				Name:      "requests_total",
				Help:      "GeoServer REST requests by method and status",
			},
			[]string{
				"method",
				"code",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "diffeo",
				Subsystem: "geoserver",
				Name:      "request_duration_seconds",
				Help:      "GeoServer REST request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{
				"method",
			},
		),
	}
	var err error
	if m.requests, err = registerCounter(reg, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = registerHistogram(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// Several clients may share a registerer; they then share the
// collectors too.
func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return c, err
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	err := reg.Register(h)
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
			return existing, nil
		}
	}
	return h, err
}

// observe records one request.  code is 0 if no response arrived.
func (m *metrics) observe(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.With(prometheus.Labels{
		"method": method,
		"code":   strconv.Itoa(code),
	}).Inc()
	m.duration.With(prometheus.Labels{"method": method}).Observe(elapsed.Seconds())
}
