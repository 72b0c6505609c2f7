/* metrics.go
 * Contains the Prometheus metrics of the bot. Every Metrics value has its own registry so tests and multiple bots in
 * one process don't collide on the global one
 * Authors: Zachary Bower
 */

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lolpro_bot"

// Poll results
const (
	PollInGame    = "in_game"
	PollNotInGame = "not_in_game"
	PollError     = "error"
)

// Publish results
const (
	PublishPosted = "posted"
	PublishDryRun = "dry_run"
	PublishGated  = "gated"
	PublishFailed = "failed"
)

type Metrics struct {
	Registry *prometheus.Registry

	Polls           *prometheus.CounterVec
	MatchesFound    prometheus.Counter
	RateLimited     *prometheus.CounterVec
	Publishes       *prometheus.CounterVec
	MatchScores     prometheus.Histogram
	ScanDuration    prometheus.Histogram
	TrackedAccounts prometheus.Gauge
}

// New creates the bot metrics and registers them, along with the Go runtime collectors, on a new registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "riot_polls_total",
			Help:      "Active game polls by result.",
		}, []string{"result"}),
		MatchesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_found_total",
			Help:      "Unique live matches found by scans.",
		}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "HTTP 429 answers by api.",
		}, []string{"api"}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Scored matches by publish result.",
		}, []string{"result"}),
		MatchScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Scores of the matches found by scans.",
			Buckets:   []float64{0, 500, 1000, 2000, 3000, 5000, 8000, 12000},
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time taken to drain the account queue.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		TrackedAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_accounts",
			Help:      "Resolved account IDs polled by every scan.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Polls,
		m.MatchesFound,
		m.RateLimited,
		m.Publishes,
		m.MatchScores,
		m.ScanDuration,
		m.TrackedAccounts,
	)
	return m
}

// OnRateLimited counts a 429 answer. Its signature matches the hook of the external clients
func (m *Metrics) OnRateLimited(api string) {
	m.RateLimited.WithLabelValues(api).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
