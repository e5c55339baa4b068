package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsRegistered(t *testing.T) {
	// Counters and histograms only appear in the registry output after
	// their first observation, so seed every family.
	GenerationsTotal.WithLabelValues("openai", "gpt-4o", "success").Inc()
	GenerationDuration.WithLabelValues("openai", "gpt-4o").Observe(0.4)
	TokensTotal.WithLabelValues("openai", "gpt-4o", "input").Add(10)
	StreamEventsTotal.WithLabelValues("text_delta").Inc()
	ToolExecutionsTotal.WithLabelValues("get_weather", "success").Inc()
	ToolDuration.WithLabelValues("get_weather").Observe(0.02)
	CacheRequestsTotal.WithLabelValues("get", "hit").Inc()
	ChainRequestsTotal.WithLabelValues("generate", "success").Inc()
	ChainRequestDuration.WithLabelValues("generate").Observe(0.4)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"aisdk_generations_total":              false,
		"aisdk_generation_duration_seconds":    false,
		"aisdk_tokens_total":                   false,
		"aisdk_stream_events_total":            false,
		"aisdk_active_streams":                 false,
		"aisdk_tool_executions_total":          false,
		"aisdk_tool_duration_seconds":          false,
		"aisdk_cache_requests_total":           false,
		"aisdk_chain_requests_total":           false,
		"aisdk_chain_request_duration_seconds": false,
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

func TestCounterAccumulates(t *testing.T) {
	before := counterValue(t, GenerationsTotal, "vllm", "llama", "error")
	GenerationsTotal.WithLabelValues("vllm", "llama", "error").Inc()
	GenerationsTotal.WithLabelValues("vllm", "llama", "error").Inc()
	after := counterValue(t, GenerationsTotal, "vllm", "llama", "error")

	if after-before != 2 {
		t.Errorf("expected counter delta 2, got %f", after-before)
	}
}

func TestHistogramObservations(t *testing.T) {
	before := histogramCount(t, GenerationDuration, "anthropic", "claude")
	GenerationDuration.WithLabelValues("anthropic", "claude").Observe(1.5)
	after := histogramCount(t, GenerationDuration, "anthropic", "claude")

	if after-before != 1 {
		t.Errorf("expected sample count delta 1, got %d", after-before)
	}
}

func TestActiveStreamsGauge(t *testing.T) {
	baseline := gaugeValue(t, ActiveStreams)

	ActiveStreams.Inc()
	if v := gaugeValue(t, ActiveStreams); v != baseline+1 {
		t.Errorf("gauge = %f after Inc, want %f", v, baseline+1)
	}

	ActiveStreams.Dec()
	if v := gaugeValue(t, ActiveStreams); v != baseline {
		t.Errorf("gauge = %f after Dec, want %f", v, baseline)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	StreamEventsTotal.WithLabelValues("finish").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !strings.Contains(string(body), "aisdk_stream_events_total") {
		t.Error("exposition output should contain aisdk_stream_events_total")
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

// gaugeValue reads the current value of a Gauge.
func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("writing gauge metric: %v", err)
	}
	return m.GetGauge().GetValue()
}
