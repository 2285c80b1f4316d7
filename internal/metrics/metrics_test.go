package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrapeMetrics(t *testing.T, c *Collector) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading metrics body: %v", err)
	}
	return string(body)
}

func TestCollectorRegistersCleanly(t *testing.T) {
	if _, err := NewCollector(); err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}
}

func TestPipelineObservations(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}

	collector.ObserveArticlesFound(12)
	collector.ObserveArticlesProcessed(9)
	collector.ObserveArticleSkipped("duplicate")
	collector.ObserveArticleSkipped("duplicate")
	collector.ObserveScoringFallback()
	collector.ObserveSessionDuration("completed", 3*time.Second)

	body := scrapeMetrics(t, collector)

	expectations := []string{
		"vidyagam_scraper_articles_found_total 12",
		"vidyagam_scraper_articles_processed_total 9",
		`vidyagam_scraper_articles_skipped_total{reason="duplicate"} 2`,
		"vidyagam_scraper_scoring_fallbacks_total 1",
		`vidyagam_scraper_session_duration_seconds_count{status="completed"} 1`,
	}
	for _, want := range expectations {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestInstrumentHandlerRecordsRequests(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector failed: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/digest", nil)
	rec := httptest.NewRecorder()
	collector.InstrumentHandler(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}

	body := scrapeMetrics(t, collector)
	want := `vidyagam_http_requests_total{method="GET",path="/api/digest",status="418"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("metrics output missing %q", want)
	}
}
