package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TemplateEvent("created")
	m.TemplateEvent("created")
	m.TemplateEvent("conflict")
	m.ResultEvent("send")
	m.BatchItem("sent")
	m.BatchItem("failed")
	m.BatchItem("sent")
	m.ObserveRequest("GET", "/v1/results", 200, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TemplateEvents.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TemplateEvents.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResultEvents.WithLabelValues("send")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchItems.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchItems.WithLabelValues("failed")))

	n, err := testutil.GatherAndCount(reg, "scoolynk_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_registersOncePerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
