/*
Package httpclient provides a stubborn HTTP client.

The client retries transport errors and retryable status codes (any 5xx and
429) with configurable backoff, bounded by MaxRetries. Attempts can be paced
through a golang.org/x/time/rate limiter, and every request carries a
default User-Agent plus any configured headers.

	client, err := httpclient.New(httpclient.Config{
		MaxRetries: 3,
		Backoff:    dispatch.ExponentialBackoff(time.Second, 30*time.Second),
		Timeout:    10 * time.Second,
		Limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	})
	if err != nil {
		log.Fatal(err)
	}

	resp, err := client.Get(ctx, "https://example.com/api")

A request that exhausts retries on a retryable status still returns the
final response; only transport errors surface as an OperationError. The
client pairs naturally with pkg/dispatch for fetching many URLs with
bounded concurrency.
*/
package httpclient
