// Package otelmetrics provides an OpenTelemetry implementation of
// engine.MetricsCollector: one histogram per latency-bearing operation,
// one counter per discrete event, covering the five events the engine
// facade emits.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package otelmetrics

import (
	"context"
	"errors"

	"github.com/agilira/maplet/engine"
	"go.opentelemetry.io/otel/metric"
)

// Collector implements engine.MetricsCollector using OpenTelemetry
// instruments. All instruments are thread-safe and allocation-free after
// construction.
type Collector struct {
	getLatency    metric.Int64Histogram
	setLatency    metric.Int64Histogram
	deleteLatency metric.Int64Histogram
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	expirations   metric.Int64Counter
	resizes       metric.Int64Counter
}

// Options configures Collector construction.
type Options struct {
	// MeterName names the OpenTelemetry meter. Default:
	// "github.com/agilira/maplet/engine".
	MeterName string
}

// Option is a functional option for New.
type Option func(*Options)

// WithMeterName overrides the default meter name.
func WithMeterName(name string) Option {
	return func(o *Options) { o.MeterName = name }
}

// New creates a Collector backed by provider. provider must not be nil.
func New(provider metric.MeterProvider, opts ...Option) (*Collector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/maplet/engine"}
	for _, opt := range opts {
		opt(&options)
	}
	meter := provider.Meter(options.MeterName)

	c := &Collector{}
	var err error

	if c.getLatency, err = meter.Int64Histogram("maplet_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.setLatency, err = meter.Int64Histogram("maplet_set_latency_ns",
		metric.WithDescription("Latency of Set operations in nanoseconds"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.deleteLatency, err = meter.Int64Histogram("maplet_delete_latency_ns",
		metric.WithDescription("Latency of Delete operations in nanoseconds"), metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.hits, err = meter.Int64Counter("maplet_get_hits_total",
		metric.WithDescription("Total number of Get hits")); err != nil {
		return nil, err
	}
	if c.misses, err = meter.Int64Counter("maplet_get_misses_total",
		metric.WithDescription("Total number of Get misses")); err != nil {
		return nil, err
	}
	if c.expirations, err = meter.Int64Counter("maplet_expirations_total",
		metric.WithDescription("Total number of TTL-based expirations")); err != nil {
		return nil, err
	}
	if c.resizes, err = meter.Int64Counter("maplet_resizes_total",
		metric.WithDescription("Total number of maplet slot-table resizes")); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Collector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

func (c *Collector) RecordSet(latencyNs int64) {
	c.setLatency.Record(context.Background(), latencyNs)
}

func (c *Collector) RecordDelete(latencyNs int64) {
	c.deleteLatency.Record(context.Background(), latencyNs)
}

func (c *Collector) RecordExpiration() {
	c.expirations.Add(context.Background(), 1)
}

func (c *Collector) RecordResize() {
	c.resizes.Add(context.Background(), 1)
}

var _ engine.MetricsCollector = (*Collector)(nil)
