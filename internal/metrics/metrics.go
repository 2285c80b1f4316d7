package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP requests and the
// scrape pipeline.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	articlesFound     prometheus.Counter
	articlesProcessed prometheus.Counter
	articlesSkipped   *prometheus.CounterVec
	scoringFallbacks  prometheus.Counter
	sessionDuration   *prometheus.HistogramVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vidyagam",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidyagam",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	articlesFound := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vidyagam",
		Subsystem: "scraper",
		Name:      "articles_found_total",
		Help:      "Total feed entries examined across scrape sessions.",
	})

	articlesProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vidyagam",
		Subsystem: "scraper",
		Name:      "articles_processed_total",
		Help:      "Total articles scored and persisted.",
	})

	articlesSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidyagam",
		Subsystem: "scraper",
		Name:      "articles_skipped_total",
		Help:      "Entries skipped during scraping, by reason.",
	}, []string{"reason"})

	scoringFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vidyagam",
		Subsystem: "scraper",
		Name:      "scoring_fallbacks_total",
		Help:      "Times the LLM scorer degraded to the heuristic fallback.",
	})

	sessionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vidyagam",
		Subsystem: "scraper",
		Name:      "session_duration_seconds",
		Help:      "Duration of scrape sessions by terminal status.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"status"})

	collectors := []prometheus.Collector{
		requestDuration, requestTotal,
		articlesFound, articlesProcessed, articlesSkipped,
		scoringFallbacks, sessionDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:          registry,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		articlesFound:     articlesFound,
		articlesProcessed: articlesProcessed,
		articlesSkipped:   articlesSkipped,
		scoringFallbacks:  scoringFallbacks,
		sessionDuration:   sessionDuration,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// ObserveArticlesFound records entries examined during a scrape run.
func (c *Collector) ObserveArticlesFound(n int) {
	c.articlesFound.Add(float64(n))
}

// ObserveArticlesProcessed records articles persisted during a scrape run.
func (c *Collector) ObserveArticlesProcessed(n int) {
	c.articlesProcessed.Add(float64(n))
}

// ObserveArticleSkipped records a skipped entry with the given reason.
func (c *Collector) ObserveArticleSkipped(reason string) {
	c.articlesSkipped.WithLabelValues(reason).Inc()
}

// ObserveScoringFallback records a degradation to the fallback scorer.
func (c *Collector) ObserveScoringFallback() {
	c.scoringFallbacks.Inc()
}

// ObserveSessionDuration records a finished scrape session.
func (c *Collector) ObserveSessionDuration(status string, d time.Duration) {
	c.sessionDuration.WithLabelValues(status).Observe(d.Seconds())
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
