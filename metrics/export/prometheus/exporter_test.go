package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authkit "github.com/edumentor/authkit"
)

type stubSource struct {
	metrics *authkit.Metrics
	dropped uint64
}

func (s *stubSource) MetricsSnapshot() authkit.MetricsSnapshot {
	return s.metrics.Snapshot()
}

func (s *stubSource) AuditDropped() uint64 {
	return s.dropped
}

func newStubSource() *stubSource {
	m := authkit.NewMetrics(authkit.MetricsConfig{Enabled: true})
	m.Inc(authkit.MetricLoginSuccess)
	m.Inc(authkit.MetricLoginSuccess)
	m.Inc(authkit.MetricTokenInvalidated)
	m.Observe(authkit.MetricValidateLatency, 3*time.Millisecond)
	m.Observe(authkit.MetricValidateLatency, 700*time.Millisecond)
	return &stubSource{metrics: m, dropped: 5}
}

func TestRenderCounters(t *testing.T) {
	p := NewPrometheusExporterFromSource(newStubSource())
	out := p.Render()

	for _, want := range []string{
		"# TYPE authkit_login_success_total counter",
		"authkit_login_success_total 2",
		"authkit_token_invalidated_total 1",
		"authkit_audit_dropped_total 5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderHistogramIsCumulative(t *testing.T) {
	p := NewPrometheusExporterFromSource(newStubSource())
	out := p.Render()

	for _, want := range []string{
		"# TYPE authkit_validate_latency_seconds histogram",
		`authkit_validate_latency_seconds_bucket{le="0.005"} 1`,
		`authkit_validate_latency_seconds_bucket{le="0.5"} 1`,
		`authkit_validate_latency_seconds_bucket{le="+Inf"} 2`,
		"authkit_validate_latency_seconds_count 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderEmptyWhenNothingRecorded(t *testing.T) {
	m := authkit.NewMetrics(authkit.MetricsConfig{})
	p := NewPrometheusExporterFromSource(&stubSource{metrics: m})
	if out := p.Render(); out != "" {
		t.Fatalf("expected empty output, got %d bytes", len(out))
	}
}

func TestHandlerContentType(t *testing.T) {
	p := NewPrometheusExporterFromSource(newStubSource())
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authkit_login_success_total") {
		t.Fatal("body missing counters")
	}
}
