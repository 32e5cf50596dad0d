package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel converts a string representation to a LogLevel.
// Unrecognized levels default to InfoLevel.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// StdoutLogger implements Logger with JSON line output. Each entry carries
// timestamp, level, service name and any persistent fields attached via
// WithFields.
type StdoutLogger struct {
	mu               sync.Mutex
	output           io.Writer
	serviceName      string
	minLevel         LogLevel
	persistentFields map[string]interface{}
}

// NewStdoutLogger creates a logger writing JSON lines to output.
// If output is nil, it defaults to os.Stdout.
func NewStdoutLogger(serviceName, logLevel string, output io.Writer) *StdoutLogger {
	if output == nil {
		output = os.Stdout
	}
	return &StdoutLogger{
		output:      output,
		serviceName: serviceName,
		minLevel:    ParseLevel(logLevel),
	}
}

func (l *StdoutLogger) Debug(msg string, fields ...interface{}) {
	l.log(DebugLevel, msg, fields...)
}

func (l *StdoutLogger) Info(msg string, fields ...interface{}) {
	l.log(InfoLevel, msg, fields...)
}

func (l *StdoutLogger) Warn(msg string, fields ...interface{}) {
	l.log(WarnLevel, msg, fields...)
}

func (l *StdoutLogger) Error(msg string, fields ...interface{}) {
	l.log(ErrorLevel, msg, fields...)
}

// WithFields returns a new Logger with the given fields added to all
// subsequent log entries. The receiver is not modified.
func (l *StdoutLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.persistentFields)+len(fields))
	for k, v := range l.persistentFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &StdoutLogger{
		output:           l.output,
		serviceName:      l.serviceName,
		minLevel:         l.minLevel,
		persistentFields: merged,
	}
}

func (l *StdoutLogger) log(level LogLevel, msg string, fields ...interface{}) {
	if level < l.minLevel {
		return
	}

	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level.String(),
		"service":   l.serviceName,
		"message":   msg,
	}
	for k, v := range l.persistentFields {
		entry[k] = v
	}
	for k, v := range pairsToMap(fields) {
		entry[k] = v
	}

	line, err := json.Marshal(entry)
	if err != nil {
		// Fall back to a plain line rather than dropping the message.
		line = []byte(fmt.Sprintf(`{"level":%q,"message":%q}`, level.String(), msg))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(append(line, '\n'))
}

// pairsToMap converts alternating key/value pairs to a map. Values with
// non-string keys or a trailing key without a value are recorded under
// a synthetic key instead of being dropped.
func pairsToMap(fields []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			out[fmt.Sprintf("field_%d", i)] = fields[i]
			continue
		}
		if i+1 >= len(fields) {
			out[key] = "(missing)"
			continue
		}
		if err, ok := fields[i+1].(error); ok {
			out[key] = err.Error()
			continue
		}
		out[key] = fields[i+1]
	}
	return out
}
