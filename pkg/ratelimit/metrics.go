package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lxopi/repgo/pkg/metrics"
)

// MetricsLimiter wraps an AckLimiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  *AckLimiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates an AckLimiter with metrics enabled on a private registry.
func NewWithMetrics(interval time.Duration, name string) (*MetricsLimiter, error) {
	return NewWithConfigAndMetrics(Config{Interval: interval, Name: name}, metrics.Config{
		Enabled:  true,
		Registry: prometheus.NewRegistry(),
	})
}

// NewWithConfigAndMetrics creates an AckLimiter with custom metrics configuration.
func NewWithConfigAndMetrics(config Config, metricsConfig metrics.Config) (*MetricsLimiter, error) {
	limiter, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return &MetricsLimiter{
		limiter:  limiter,
		name:     config.label(),
		registry: registry,
		enabled:  metricsConfig.Enabled,
	}, nil
}

// Ack arms the gate.
func (ml *MetricsLimiter) Ack() {
	ml.limiter.Ack()
}

// Armed reports whether the next Wait will throttle.
func (ml *MetricsLimiter) Armed() bool {
	return ml.limiter.Armed()
}

// Wait waits like AckLimiter.Wait while recording wait counts and durations.
func (ml *MetricsLimiter) Wait(ctx context.Context) error {
	if !ml.enabled {
		return ml.limiter.Wait(ctx)
	}

	armed := ml.limiter.Armed()
	start := time.Now()
	err := ml.limiter.Wait(ctx)
	if armed {
		ml.registry.RateLimitWaits.WithLabelValues(ml.name).Inc()
		ml.registry.RateLimitWaitDuration.WithLabelValues(ml.name).Observe(time.Since(start).Seconds())
	}
	return err
}
