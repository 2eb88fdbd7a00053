package furnilytics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// classify maps a completed exchange to nil (2xx) or a typed ClientError.
// Classification looks only at the HTTP status and body; access-tier
// enforcement (public/paid/pro) is entirely server-side.
func (c *Client) classify(req *http.Request, resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	clientErr := &ClientError{
		Type:       errorTypeForStatus(resp.StatusCode),
		Message:    serverMessage(body, resp.StatusCode),
		StatusCode: resp.StatusCode,
		Body:       body,
		Method:     req.Method,
		URL:        req.URL.String(),
		MaxRetries: c.maxRetries,
		Timestamp:  time.Now(),
	}
	if clientErr.Type == ErrorTypeRateLimit {
		clientErr.ResetAt = resp.Header.Get("X-RateLimit-Reset")
		if clientErr.ResetAt == "" {
			clientErr.ResetAt = resp.Header.Get("Retry-After")
		}
	}

	if c.metrics != nil {
		c.metrics.RecordError(clientErr.Type, req.Method, endpointFromRequest(req))
	}

	return clientErr
}

func errorTypeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorTypeAuth
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	default:
		return ErrorTypeAPI
	}
}

// serverMessage normalizes an API error body into a friendly string.
// Accepted shapes: {"detail": "..."}, {"detail": {"msg": "..."}},
// {"message": "..."} and a bare JSON string; anything else falls back to a
// per-status default.
func serverMessage(body []byte, statusCode int) string {
	fallback := defaultStatusMessage(statusCode)
	if len(body) == 0 {
		return fallback
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fallback
	}

	switch value := parsed.(type) {
	case map[string]any:
		switch detail := value["detail"].(type) {
		case string:
			if strings.TrimSpace(detail) != "" {
				return detail
			}
		case map[string]any:
			if msg, ok := detail["msg"].(string); ok && strings.TrimSpace(msg) != "" {
				return msg
			}
			if compact, err := json.Marshal(detail); err == nil {
				return string(compact)
			}
		}
		if msg, ok := value["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
	case string:
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return fallback
}

func defaultStatusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return "Invalid or missing API key."
	case http.StatusForbidden:
		return "Forbidden."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusTooManyRequests:
		return "Rate limit exceeded."
	}
	switch {
	case statusCode >= 400 && statusCode < 500:
		return fmt.Sprintf("Client error (%d).", statusCode)
	case statusCode >= 500:
		return fmt.Sprintf("Server error (%d).", statusCode)
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// bodySnippet returns up to limit bytes of body for error messages.
func bodySnippet(body []byte, limit int) string {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > limit {
		snippet = snippet[:limit]
	}
	return snippet
}
