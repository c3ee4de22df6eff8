package dispatch

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lxopi/repgo/pkg/metrics"
)

// MetricsDispatcher wraps a Dispatcher with Prometheus metrics collection.
type MetricsDispatcher[T, R any] struct {
	dispatcher *Dispatcher[T, R]
	name       string
	registry   *metrics.Registry
	enabled    bool
}

// NewWithMetrics creates a dispatcher with metrics enabled on a private registry.
func NewWithMetrics[T, R any](config Config) (*MetricsDispatcher[T, R], error) {
	return NewWithConfigAndMetrics[T, R](config, metrics.Config{
		Enabled:  true,
		Registry: prometheus.NewRegistry(),
	})
}

// NewWithConfigAndMetrics creates a dispatcher with custom metrics configuration.
func NewWithConfigAndMetrics[T, R any](config Config, metricsConfig metrics.Config) (*MetricsDispatcher[T, R], error) {
	d, err := New[T, R](config)
	if err != nil {
		return nil, err
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return &MetricsDispatcher[T, R]{
		dispatcher: d,
		name:       config.label(),
		registry:   registry,
		enabled:    metricsConfig.Enabled,
	}, nil
}

// Run dispatches like Dispatcher.Run while recording run, item, retry, and
// duration metrics.
func (md *MetricsDispatcher[T, R]) Run(ctx context.Context, work WorkFunc[T, R], inputs []T) []Outcome[R] {
	if !md.enabled {
		return md.dispatcher.Run(ctx, work, inputs)
	}

	md.registry.DispatchRuns.WithLabelValues(md.name).Inc()
	md.registry.DispatchItems.WithLabelValues(md.name).Add(float64(len(inputs)))
	md.registry.DispatchInFlight.WithLabelValues(md.name).Inc()
	defer md.registry.DispatchInFlight.WithLabelValues(md.name).Dec()

	instrumented := func(ctx context.Context, input T) (R, error) {
		start := time.Now()
		value, err := work(ctx, input)
		md.registry.DispatchAttemptDuration.WithLabelValues(md.name).Observe(time.Since(start).Seconds())
		return value, err
	}

	start := time.Now()
	outcomes := md.dispatcher.Run(ctx, instrumented, inputs)
	md.registry.DispatchRunDuration.WithLabelValues(md.name).Observe(time.Since(start).Seconds())

	for _, o := range outcomes {
		switch {
		case o.Success():
			md.registry.DispatchSuccesses.WithLabelValues(md.name).Inc()
		case o.Canceled():
			md.registry.DispatchCanceled.WithLabelValues(md.name).Inc()
		default:
			md.registry.DispatchFailures.WithLabelValues(md.name).Inc()
		}
		if o.Attempts > 1 {
			md.registry.DispatchRetries.WithLabelValues(md.name).Add(float64(o.Attempts - 1))
		}
	}

	return outcomes
}

// MetricsEnabled returns true if metrics are currently enabled.
func (md *MetricsDispatcher[T, R]) MetricsEnabled() bool {
	return md.enabled
}
