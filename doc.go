/*
Package repgo is a toolbox of reusable helpers for batch-style Go programs:
bounded task dispatch, retrying HTTP calls, database query capture,
serialization shortcuts, checkpointing, and rate limiting.

Task Dispatch (pkg/dispatch):
  - dispatch: run a function across many inputs with a bounded worker pool,
    per-item retry with backoff, progress reporting, and ordered outcomes

Flow Control (pkg/ratelimit, pkg/schedule):
  - ratelimit: acknowledge-gated limiter for faulty or rate-limited APIs
  - schedule: interval and cron-style repetition of jobs

I/O Helpers (pkg/httpclient, pkg/dbutil, pkg/checkpoint, pkg/jsonutil):
  - httpclient: stubborn HTTP client with retry, backoff, and rate limiting
  - dbutil: capture SQL query results into plain records
  - checkpoint: last-run timestamps persisted to JSON files or Redis
  - jsonutil: tolerant JSON encoding and file-name slugs

Support (pkg/logging, pkg/metrics, pkg/config, pkg/common):
  - logging: logrus setup shared by the toolbox
  - metrics: Prometheus instrumentation for toolbox components
  - config: YAML/JSON configuration files for toolbox components

Example usage:

	import (
		"github.com/lxopi/repgo/pkg/dispatch"
	)

	cfg := dispatch.Config{Concurrency: 4, MaxRetries: 2}
	outcomes, err := dispatch.Run(ctx, fetchOne, urls, cfg)
	if err != nil {
		log.Fatal(err) // invalid config
	}

	for _, o := range outcomes {
		if !o.Success() {
			log.Printf("item %d failed after %d attempts: %v", o.Index, o.Attempts, o.Err)
		}
	}
*/
package repgo
