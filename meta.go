package furnilytics

import (
	"net/http"
	"strconv"
	"time"
)

// ResponseMeta captures headers of interest from the most recent HTTP
// exchange. It is recorded after every completed call, success or classified
// error alike, so callers can always inspect what the server last said.
type ResponseMeta struct {
	Method       string
	URL          string
	StatusCode   int    // 0 when the exchange failed before a response arrived
	ETag         string
	CacheControl string
	RetryAfter   string
	// RateLimitRemaining is parsed from X-RateLimit-Remaining; -1 when absent.
	RateLimitRemaining int
	// RateLimitReset is parsed from X-RateLimit-Reset (unix seconds); zero when absent.
	RateLimitReset time.Time
	Timestamp      time.Time
}

func (c *Client) recordMeta(req *http.Request, resp *http.Response) {
	meta := &ResponseMeta{
		Method:             req.Method,
		URL:                req.URL.String(),
		RateLimitRemaining: -1,
		Timestamp:          time.Now(),
	}
	if resp != nil {
		meta.StatusCode = resp.StatusCode
		meta.ETag = resp.Header.Get("ETag")
		meta.CacheControl = resp.Header.Get("Cache-Control")
		meta.RetryAfter = resp.Header.Get("Retry-After")
		if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				meta.RateLimitRemaining = n
			}
		}
		if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
			if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
				meta.RateLimitReset = time.Unix(sec, 0).UTC()
			}
		}
	}

	c.metaMu.Lock()
	c.lastMeta = meta
	c.metaMu.Unlock()
}

// LastMeta returns a copy of the metadata recorded by the most recent call
// and false if no call has completed yet. Concurrent calls sharing one
// Client race on this field; the last writer wins, so treat the value as
// advisory unless calls are sequential.
func (c *Client) LastMeta() (ResponseMeta, bool) {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	if c.lastMeta == nil {
		return ResponseMeta{}, false
	}
	return *c.lastMeta, true
}
