// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package metrics turns panel events into prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/toeirei/boardlock/internal/events"
)

// Collector holds the boardlock metrics. It is an events.Observer.
type Collector struct {
	registry *prometheus.Registry

	ScansTotal         prometheus.Counter
	DevicesFound       prometheus.Gauge
	ScanAddresses      prometheus.Gauge
	BatchesTotal       *prometheus.CounterVec
	DispatchesTotal    *prometheus.CounterVec
	TicksTotal         *prometheus.CounterVec
	LastBatchSucceeded *prometheus.GaugeVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.ScansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boardlock_scans_total",
			Help: "Total number of finished network scans",
		},
	)
	c.DevicesFound = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "boardlock_scan_devices_found",
			Help: "Boards found by the last finished scan",
		},
	)
	c.ScanAddresses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "boardlock_scan_addresses",
			Help: "Addresses in the range of the last finished scan",
		},
	)
	c.BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardlock_batches_total",
			Help: "Total number of finished lock/unlock batches",
		},
		[]string{"action"},
	)
	c.DispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardlock_dispatches_total",
			Help: "Commands sent to boards by action and result",
		},
		[]string{"action", "result"},
	)
	c.TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardlock_schedule_fired_total",
			Help: "Schedule ticks that matched a slot",
		},
		[]string{"action"},
	)
	c.LastBatchSucceeded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boardlock_last_batch_succeeded",
			Help: "Boards that accepted the command in the last batch",
		},
		[]string{"action"},
	)

	c.registry.MustRegister(c.ScansTotal)
	c.registry.MustRegister(c.DevicesFound)
	c.registry.MustRegister(c.ScanAddresses)
	c.registry.MustRegister(c.BatchesTotal)
	c.registry.MustRegister(c.DispatchesTotal)
	c.registry.MustRegister(c.TicksTotal)
	c.registry.MustRegister(c.LastBatchSucceeded)
	return c
}

// Registry returns the registry the collectors live on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Notify updates the collectors from e.
func (c *Collector) Notify(e events.Event) {
	switch e.Kind {
	case events.KindScanFinished:
		c.ScansTotal.Inc()
		c.DevicesFound.Set(float64(e.Count))
		c.ScanAddresses.Set(float64(e.Total))
	case events.KindDispatchResult:
		result := "ok"
		if e.Error != "" {
			result = "failed"
		}
		c.DispatchesTotal.WithLabelValues(e.Action.String(), result).Inc()
	case events.KindBatchFinished:
		c.BatchesTotal.WithLabelValues(e.Action.String()).Inc()
		c.LastBatchSucceeded.WithLabelValues(e.Action.String()).Set(float64(e.Count))
	case events.KindTickFired:
		c.TicksTotal.WithLabelValues(e.Action.String()).Inc()
	}
}
