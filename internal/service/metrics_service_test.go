package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceExposesGenerationMetrics(t *testing.T) {
	m := NewMetricsService()
	m.ObserveGeneration(OutcomeSuccess, 120*time.Millisecond, 2, 30)
	m.ObserveGeneration(OutcomeRejected, 5*time.Millisecond, 0, 0)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/timetables/generate", http.StatusOK, 150*time.Millisecond)

	assert.Equal(t, float64(1), counterValue(t, m.Registry(), "timetable_generation_total", OutcomeSuccess))
	assert.Equal(t, float64(1), counterValue(t, m.Registry(), "timetable_generation_total", OutcomeRejected))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "timetable_relaxation_level_count 1"))
	assert.True(t, strings.Contains(body, "http_requests_total"))
}

func TestMetricsServiceTracksQueueDepth(t *testing.T) {
	m := NewMetricsService()
	depth := 3
	m.TrackQueueDepth("timetable-generation", func() int { return depth })

	scrape := func() string {
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return rec.Body.String()
	}
	assert.Contains(t, scrape(), `job_queue_depth{queue="timetable-generation"} 3`)
	depth = 0
	assert.Contains(t, scrape(), `job_queue_depth{queue="timetable-generation"} 0`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveGeneration(OutcomeFailed, time.Second, 0, 0)
	m.RecordCacheOperation(true, time.Millisecond)
	m.TrackQueueDepth("timetable-generation", func() int { return 1 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
