package observability

// NopLogger is a Logger that discards everything. Useful in tests.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...interface{}) {}
func (NopLogger) Info(msg string, fields ...interface{})  {}
func (NopLogger) Warn(msg string, fields ...interface{})  {}
func (NopLogger) Error(msg string, fields ...interface{}) {}

func (n NopLogger) WithFields(fields map[string]interface{}) Logger { return n }

// NopMetrics is a Metrics that discards everything. Useful in tests.
type NopMetrics struct{}

func (NopMetrics) IncrementCounter(name string, tags map[string]string)               {}
func (NopMetrics) RecordHistogram(name string, value float64, tags map[string]string) {}

func (n NopMetrics) WithTags(tags map[string]string) Metrics { return n }
