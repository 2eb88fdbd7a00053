package furnilytics

import (
	"errors"
	"fmt"
	"time"
)

// Error type tags carried in ClientError.Type.
const (
	// ErrorTypeConfig marks construction or call-argument problems detected
	// before any network I/O.
	ErrorTypeConfig = "Config"
	// ErrorTypeAuth maps HTTP 401 and 403.
	ErrorTypeAuth = "Auth"
	// ErrorTypeNotFound maps HTTP 404.
	ErrorTypeNotFound = "NotFound"
	// ErrorTypeRateLimit maps HTTP 429.
	ErrorTypeRateLimit = "RateLimit"
	// ErrorTypeAPI maps every other non-2xx status and malformed success bodies.
	ErrorTypeAPI = "API"
	// ErrorTypeNetwork marks connection-level failures after retries.
	ErrorTypeNetwork = "Network"
	// ErrorTypeTimeout marks deadline expiry, either per attempt or on the context.
	ErrorTypeTimeout = "Timeout"
	// ErrorTypeRetryBudgetExceeded marks a retry suppressed by the budget.
	ErrorTypeRetryBudgetExceeded = "RetryBudgetExceeded"
)

// ClientError is the error type returned by every Client operation.
type ClientError struct {
	Type       string // one of the ErrorType* constants
	Message    string // normalized server or transport message
	Cause      error  // underlying error, if any
	StatusCode int    // HTTP status, 0 for transport failures
	Body       []byte // raw response body, nil for transport failures
	ResetAt    string // raw X-RateLimit-Reset or Retry-After value, 429 only
	RequestID  string
	Method     string
	URL        string
	Attempt    int // zero-based attempt on which the error surfaced
	MaxRetries int
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.ResetAt != "" {
		info += fmt.Sprintf("Reset At: %s\n", e.ResetAt)
	}
	if e.Attempt > 0 {
		info += fmt.Sprintf("Attempt: %d/%d\n", e.Attempt, e.MaxRetries)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	if len(e.Body) > 0 {
		info += fmt.Sprintf("Body: %s\n", bodySnippet(e.Body, 200))
	}
	return info
}

// AsClientError unwraps err into a *ClientError when possible.
func AsClientError(err error) (*ClientError, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr, true
	}
	return nil, false
}

func hasErrorType(err error, errorType string) bool {
	clientErr, ok := AsClientError(err)
	return ok && clientErr.Type == errorType
}

// IsConfig reports whether err is a configuration or argument error.
func IsConfig(err error) bool { return hasErrorType(err, ErrorTypeConfig) }

// IsAuth reports whether err came from HTTP 401 or 403.
func IsAuth(err error) bool { return hasErrorType(err, ErrorTypeAuth) }

// IsNotFound reports whether err came from HTTP 404.
func IsNotFound(err error) bool { return hasErrorType(err, ErrorTypeNotFound) }

// IsRateLimit reports whether err came from HTTP 429.
func IsRateLimit(err error) bool { return hasErrorType(err, ErrorTypeRateLimit) }

// IsAPI reports whether err is a non-2xx response outside the more specific
// categories, or a malformed success body.
func IsAPI(err error) bool { return hasErrorType(err, ErrorTypeAPI) }

// IsNetwork reports whether err is a connection-level failure.
func IsNetwork(err error) bool { return hasErrorType(err, ErrorTypeNetwork) }

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool { return hasErrorType(err, ErrorTypeTimeout) }

// IsRetryBudgetExceeded reports whether err is a retry suppressed by the
// configured retry budget.
func IsRetryBudgetExceeded(err error) bool { return hasErrorType(err, ErrorTypeRetryBudgetExceeded) }

// IsTransient determines if an error represents a failure that might succeed
// on retry: network errors, timeouts, 5xx responses, and rate limiting (429).
// Other 4xx statuses and configuration errors are deterministic and return false.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	clientErr, ok := AsClientError(err)
	if !ok {
		return false
	}
	switch clientErr.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeRateLimit:
		return true
	case ErrorTypeAPI:
		return clientErr.StatusCode >= 500
	default:
		return false
	}
}

func newConfigError(message string, cause error) *ClientError {
	return &ClientError{
		Type:      ErrorTypeConfig,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
