package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_IncrementCounter(t *testing.T) {
	m := NewPrometheusMetrics("smart_client")

	m.IncrementCounter("files.downloaded", map[string]string{"outcome": "ok"})
	m.IncrementCounter("files.downloaded", map[string]string{"outcome": "ok"})
	m.IncrementCounter("files.downloaded", map[string]string{"outcome": "missing"})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "smart_client_files_downloaded_total", families[0].GetName())

	total := 0.0
	for _, metric := range families[0].GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, total)
}

func TestPrometheusMetrics_RecordHistogram(t *testing.T) {
	m := NewPrometheusMetrics("smart_client")

	m.RecordHistogram("download.duration", 0.5, nil)
	m.RecordHistogram("download.duration", 1.5, nil)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "smart_client_download_duration", families[0].GetName())
	assert.Equal(t, uint64(2), families[0].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestPrometheusMetrics_WithTags(t *testing.T) {
	m := NewPrometheusMetrics("smart_client")
	tagged := m.WithTags(map[string]string{"component": "downloader"})

	tagged.IncrementCounter("requests", map[string]string{"status": "200"})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	labels := families[0].GetMetric()[0].GetLabel()
	names := make(map[string]string, len(labels))
	for _, l := range labels {
		names[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, "downloader", names["component"])
	assert.Equal(t, "200", names["status"])
}
