/*
Package config loads toolbox configuration from YAML or JSON files.

The decoder is chosen by extension. Sections convert into the component
configs with ToDispatch, ToHTTPClient and ToLogging; durations are strings
in time.ParseDuration syntax.

	dispatch:
	  concurrency: 8
	  max_retries: 3
	  backoff_initial: 500ms
	  backoff_max: 30s
	http:
	  max_retries: 2
	  timeout: 10s
	logging:
	  level: debug
*/
package config
