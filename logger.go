package furnilytics

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger receives structured debug output from the client: a short message
// followed by alternating key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SimpleLogger writes leveled log lines to stderr using the standard
// library logger. Intended for development; production users supply their
// own Logger adapter.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger creates a SimpleLogger.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{
		logger: log.New(os.Stderr, "[furnilytics] ", log.LstdFlags|log.Lmicroseconds),
	}
}

// Debug logs at debug level.
func (l *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.print("DEBUG", msg, keysAndValues)
}

// Info logs at info level.
func (l *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	l.print("INFO", msg, keysAndValues)
}

// Warn logs at warn level.
func (l *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.print("WARN", msg, keysAndValues)
}

// Error logs at error level.
func (l *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	l.print("ERROR", msg, keysAndValues)
}

func (l *SimpleLogger) print(level, msg string, keysAndValues []interface{}) {
	if len(keysAndValues) == 0 {
		l.logger.Printf("%s %s", level, msg)
		return
	}
	l.logger.Printf("%s %s %s", level, msg, formatKeyValues(keysAndValues))
}

func formatKeyValues(keysAndValues []interface{}) string {
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			// Odd trailing key without a value.
			fmt.Fprintf(&b, "%v=?", keysAndValues[i])
		}
	}
	return b.String()
}

// DebugConfig controls which client events are logged. Output is emitted
// only when Enabled is true and a Logger is configured.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogResponses bool
	LogRetries   bool
	LogRateLimit bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a config with every event class selected and
// uuid-based request IDs. Enabled still gates all output.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogResponses: true,
		LogRetries:   true,
		LogRateLimit: true,
		RequestIDGen: uuid.NewString,
	}
}
