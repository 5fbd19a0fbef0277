// Package metrics exposes Prometheus collectors for the books API.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	scrapeJobsTotal            *prometheus.CounterVec
	scrapeJobsActive           prometheus.Gauge
	scrapeBooksTotal           prometheus.Counter
	authFailuresTotal          *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)

		scrapeJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_jobs_total",
				Help: "Total number of scrape jobs that reached a status, labeled by status.",
			},
			[]string{"status"},
		)

		scrapeJobsActive = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scrape_jobs_active",
				Help: "Number of scrape jobs currently running.",
			},
		)

		scrapeBooksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scrape_books_total",
				Help: "Total number of books committed to the catalog by scrape jobs.",
			},
		)

		authFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_failures_total",
				Help: "Total number of rejected bearer tokens, labeled by internal reason.",
			},
			[]string{"reason"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveScrapeJob increments the job counter for the given status.
func ObserveScrapeJob(status string) {
	Init()
	scrapeJobsTotal.WithLabelValues(status).Inc()
}

// IncActiveScrapeJobs increments the running jobs gauge.
func IncActiveScrapeJobs() {
	Init()
	scrapeJobsActive.Inc()
}

// DecActiveScrapeJobs decrements the running jobs gauge.
func DecActiveScrapeJobs() {
	Init()
	scrapeJobsActive.Dec()
}

// ObserveBooksScraped adds n committed books.
func ObserveBooksScraped(n int) {
	Init()
	if n > 0 {
		scrapeBooksTotal.Add(float64(n))
	}
}

// ObserveAuthFailure counts a rejected token by reason.
func ObserveAuthFailure(reason string) {
	Init()
	if reason == "" {
		reason = "unknown"
	}
	authFailuresTotal.WithLabelValues(reason).Inc()
}
