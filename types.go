package furnilytics

import (
	"encoding/json"
	"net/http"
	"time"
)

// Option configures a Client during construction.
type Option func(*Client)

// RetryCondition determines whether a response/error pair should be retried.
// It is consulted only when no RetryPolicy is installed.
type RetryCondition func(resp *http.Response, err error) bool

// Middleware wraps request execution for cross-cutting concerns such as
// tracing headers or test instrumentation.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper is the transport interface seen by middleware.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc adapts a function to the RoundTripper interface.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// RetryPolicy decides whether an attempt should be retried and after what delay.
type RetryPolicy interface {
	// ShouldRetry inspects the outcome of the given zero-based attempt and
	// returns the delay to wait before the next one.
	ShouldRetry(resp *http.Response, err error, attempt int) (time.Duration, bool)
}

// BackoffStrategy selects the delay algorithm used by DefaultRetryPolicy.
type BackoffStrategy int

const (
	// ExponentialJitter doubles the delay each attempt, caps it, and adds
	// uniform jitter in [0, delay*jitterFactor].
	ExponentialJitter BackoffStrategy = iota
	// DecorrelatedJitter spreads delays per the AWS decorrelated jitter formula.
	DecorrelatedJitter
)

// DataQuery carries the optional server-side filters accepted by Data.
// Zero values are omitted from the query string.
type DataQuery struct {
	From  string // inclusive start date, YYYY-MM-DD, sent as "frm"
	To    string // inclusive end date, YYYY-MM-DD, sent as "to"
	Limit int    // positive row limit; the server may cap it
}

// Health is the decoded /health payload. Fields beyond "status" are kept
// in Extra so server additions are not dropped.
type Health struct {
	Status string
	Extra  map[string]any
}

// OK reports whether the server declared itself healthy.
func (h *Health) OK() bool {
	return h.Status == "ok"
}

func (h *Health) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	h.Status, _ = fields["status"].(string)
	delete(fields, "status")
	if len(fields) > 0 {
		h.Extra = fields
	} else {
		h.Extra = nil
	}
	return nil
}

// MarshalJSON reassembles the wire object, flattening Extra back in.
func (h Health) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(h.Extra)+1)
	for k, v := range h.Extra {
		fields[k] = v
	}
	if h.Status != "" {
		fields["status"] = h.Status
	}
	return json.Marshal(fields)
}

// DatasetMetadata is the decoded /metadata/{id} payload. Meta is the
// server's "meta" sub-object passed through verbatim; Schema is the
// server-defined column description; everything else lands in Extra.
type DatasetMetadata struct {
	ID     string
	Meta   map[string]any
	Schema any
	Extra  map[string]any
}

func (m *DatasetMetadata) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	m.ID, _ = fields["id"].(string)
	delete(fields, "id")
	if meta, ok := fields["meta"].(map[string]any); ok {
		m.Meta = meta
		delete(fields, "meta")
	}
	if schema, ok := fields["schema"]; ok {
		m.Schema = schema
		delete(fields, "schema")
	}
	if len(fields) > 0 {
		m.Extra = fields
	} else {
		m.Extra = nil
	}
	return nil
}

// MarshalJSON reassembles the wire object, flattening Extra back in.
func (m DatasetMetadata) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		fields[k] = v
	}
	if m.ID != "" {
		fields["id"] = m.ID
	}
	if m.Meta != nil {
		fields["meta"] = m.Meta
	}
	if m.Schema != nil {
		fields["schema"] = m.Schema
	}
	return json.Marshal(fields)
}
