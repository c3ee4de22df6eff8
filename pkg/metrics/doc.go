/*
Package metrics provides Prometheus instrumentation shared by repgo
components.

The default registry registers against prometheus.DefaultRegisterer.
Components that need isolation (for example in tests) create their own:

	reg := prometheus.NewRegistry()
	registry := metrics.NewRegistry(reg)

Metric families are grouped by subsystem: dispatch, httpclient, ratelimit,
and checkpoint. All families carry a name label so multiple instances of
the same component can share one registry.
*/
package metrics
