// Package furnilytics is a Go client for the Furnilytics dataset catalog API.
// It wraps the service's read endpoints (health, dataset listing, metadata and
// observation retrieval) in a resilient HTTP layer:
//
//   - Retries with exponential backoff + jitter, honoring Retry-After
//   - Optional client-side rate limiting (golang.org/x/time/rate)
//   - Typed error taxonomy (Config, Auth, NotFound, RateLimit, API, Network, Timeout)
//   - Middleware chain for cross-cutting concerns (auth, logging, tracing, etc.)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area, configured entirely through functional options
//   - Safe concurrent use of a single *Client instance
//   - Tabular responses keep server column order and raw JSON numbers intact
//
// Typical usage:
//
//	client, err := furnilytics.New(
//	    furnilytics.WithAPIKey("your-key"),
//	    furnilytics.WithMaxRetries(4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	datasets, err := client.Datasets(ctx)
//
// The API key and base URL can also come from the FURNILYTICS_API_KEY and
// FURNILYTICS_BASE_URL environment variables. Only HTTP 429, 5xx and
// connection failures trigger retries by default; override with
// WithRetryCondition or WithRetryPolicy. The library avoids opinionated
// logging: provide a Logger (e.g. via WithSimpleLogger) + enable debug flags
// selectively (WithDebug / WithDebugConfig) for insight without noise.
package furnilytics
