package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPrometheusExporterConfig(t *testing.T) {
	config := DefaultPrometheusExporterConfig()

	assert.Equal(t, 9090, config.Port)
	assert.Equal(t, "/metrics", config.Path)
	assert.Equal(t, "dashboard", config.Namespace)
}

func TestPrometheusExporter_StartStop(t *testing.T) {
	exporter := NewPrometheusExporter(PrometheusExporterConfig{Port: 0, Path: "/metrics", Namespace: "test"})

	require.NoError(t, exporter.Start())
	assert.True(t, exporter.IsRunning())
	require.NoError(t, exporter.Start(), "start is idempotent")

	exporter.ObserveRequest(http.MethodGet, "/Categories", 200, 10*time.Millisecond, nil)

	resp, err := http.Get(exporter.Address())
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test_api_requests_total")

	healthURL := strings.TrimSuffix(exporter.Address(), "/metrics") + "/health"
	resp, err = http.Get(healthURL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, exporter.Stop(ctx))
	assert.False(t, exporter.IsRunning())
	require.NoError(t, exporter.Stop(ctx), "stop is idempotent")
	assert.NoError(t, exporter.LastError())
}

func TestPrometheusExporter_ObserveRequest(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultPrometheusExporterConfig())

	exporter.ObserveRequest(http.MethodGet, "/Categories/{id}", 200, 100*time.Millisecond, nil)
	exporter.ObserveRequest(http.MethodGet, "/Categories/{id}", 404, 20*time.Millisecond, errors.New("not found"))
	exporter.ObserveRequest(http.MethodGet, "/Categories/{id}", 0, time.Second, errors.New("dial tcp"))

	families, err := exporter.Gather()
	require.NoError(t, err)

	requests := findMetricFamily(families, "api_requests_total")
	require.NotNil(t, requests)
	for _, status := range []string{"200", "404", "error"} {
		m := findMetricByLabels(requests, map[string]string{"method": "GET", "route": "/Categories/{id}", "status": status})
		require.NotNil(t, m, status)
		assert.Equal(t, 1.0, m.GetCounter().GetValue())
	}

	durations := findMetricFamily(families, "api_request_duration_seconds")
	require.NotNil(t, durations)
	m := findMetricByLabels(durations, map[string]string{"route": "/Categories/{id}"})
	require.NotNil(t, m)
	assert.Equal(t, uint64(3), m.GetHistogram().GetSampleCount())
}

func TestPrometheusExporter_ObserveHierarchyLoad(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultPrometheusExporterConfig())

	exporter.ObserveHierarchyLoad(200*time.Millisecond, ResultOK, 2, 5, 9)
	exporter.ObserveHierarchyLoad(50*time.Millisecond, ResultStale, 7, 7, 7)
	exporter.ObserveDegradedBranch("subcategory")
	exporter.ObserveDegradedBranch("subcategory")
	exporter.ObserveDegradedBranch("subsubcategory")

	families, err := exporter.Gather()
	require.NoError(t, err)

	nodes := findMetricFamily(families, "hierarchy_nodes")
	require.NotNil(t, nodes)
	assert.Equal(t, 2.0, findMetricByLabels(nodes, map[string]string{"level": "category"}).GetGauge().GetValue())
	assert.Equal(t, 5.0, findMetricByLabels(nodes, map[string]string{"level": "subcategory"}).GetGauge().GetValue())
	assert.Equal(t, 9.0, findMetricByLabels(nodes, map[string]string{"level": "subsubcategory"}).GetGauge().GetValue())

	loads := findMetricFamily(families, "hierarchy_load_duration_seconds")
	require.NotNil(t, loads)
	assert.Equal(t, uint64(1), findMetricByLabels(loads, map[string]string{"result": ResultOK}).GetHistogram().GetSampleCount())
	assert.Equal(t, uint64(1), findMetricByLabels(loads, map[string]string{"result": ResultStale}).GetHistogram().GetSampleCount())

	degraded := findMetricFamily(families, "hierarchy_degraded_branches_total")
	require.NotNil(t, degraded)
	assert.Equal(t, 2.0, findMetricByLabels(degraded, map[string]string{"level": "subcategory"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, findMetricByLabels(degraded, map[string]string{"level": "subsubcategory"}).GetCounter().GetValue())

	last := findMetricFamily(families, "hierarchy_last_success_timestamp_seconds")
	require.NotNil(t, last)
	assert.Greater(t, last.Metric[0].GetGauge().GetValue(), 0.0)
}

func findMetricFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if strings.HasSuffix(f.GetName(), name) {
			return f
		}
	}
	return nil
}

func findMetricByLabels(family *dto.MetricFamily, labels map[string]string) *dto.Metric {
	for _, m := range family.Metric {
		match := true
		for wantKey, wantValue := range labels {
			found := false
			for _, l := range m.Label {
				if l.GetName() == wantKey && l.GetValue() == wantValue {
					found = true
					break
				}
			}
			if !found {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	return nil
}
