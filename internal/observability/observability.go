// Package observability provides structured logging and metrics collection
// for the smart-client ingestion pipeline. Components receive their Logger
// and Metrics through constructor injection; nothing in this package is
// reachable through package-level state.
package observability

// Logger defines the interface for structured logging in the application.
// Fields are passed as alternating key/value pairs.
type Logger interface {
	// Debug logs detailed information useful during troubleshooting.
	Debug(msg string, fields ...interface{})

	// Info logs informational messages for normal operations.
	Info(msg string, fields ...interface{})

	// Warn logs potentially harmful situations that don't prevent operation.
	Warn(msg string, fields ...interface{})

	// Error logs error conditions. Pass the error under an "error" key.
	Error(msg string, fields ...interface{})

	// WithFields returns a new Logger with the given fields added to all
	// subsequent log entries.
	WithFields(fields map[string]interface{}) Logger
}

// Metrics defines the interface for recording application metrics.
type Metrics interface {
	// IncrementCounter increments a counter metric by 1.
	IncrementCounter(name string, tags map[string]string)

	// RecordHistogram records a value in a histogram distribution.
	// Use for latencies, sizes, or any value where distribution matters.
	RecordHistogram(name string, value float64, tags map[string]string)

	// WithTags returns a new Metrics instance with additional default tags.
	WithTags(tags map[string]string) Metrics
}
