package furnilytics

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Header names used on every request.
const (
	headerAPIKey    = "X-API-Key"
	headerRequestID = "X-Request-ID"
)

// newRequest builds a GET request for path below the configured base URL.
// path must already be percent-encoded; query may be nil.
func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	full := c.baseURL.String() + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, newConfigError("failed to build request for "+full, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}
	return req, nil
}

// datasetPath joins prefix with an escaped dataset id. Leading and trailing
// slashes on the id are dropped; an id that is empty after trimming is a
// config error, no request is made.
func datasetPath(prefix, datasetID string) (string, error) {
	id := strings.Trim(datasetID, "/")
	if id == "" {
		return "", newConfigError("dataset id is empty", nil)
	}
	return prefix + "/" + encodeDatasetID(id), nil
}

// encodeDatasetID percent-encodes each segment of a hierarchical dataset id
// (topic/subtopic/table_id) independently, keeping the separating slashes,
// so characters inside a segment round-trip through the URL path.
func encodeDatasetID(id string) string {
	segments := strings.Split(id, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// values renders the query parameters, including each filter only when set.
func (q DataQuery) values() url.Values {
	v := url.Values{}
	if q.From != "" {
		v.Set("frm", q.From)
	}
	if q.To != "" {
		v.Set("to", q.To)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

func endpointFromRequest(req *http.Request) string {
	if req.URL == nil {
		return "unknown"
	}

	host := req.URL.Host
	path := req.URL.Path

	var builder strings.Builder
	builder.WriteString(host)

	if path != "" && path != "/" {
		builder.WriteString(path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}
