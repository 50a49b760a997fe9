package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_gateway_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_gateway_http_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	StoreRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_gateway_store_requests_total",
		Help: "Total number of record store calls",
	}, []string{"backend", "operation", "status"})

	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_gateway_store_duration_seconds",
		Help:    "Record store call duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	Votes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_gateway_votes_total",
		Help: "Vote toggles by action and outcome",
	}, []string{"kind", "outcome"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_gateway_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_gateway_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"cache"})
)

const (
	VoteApplied    = "applied"
	VoteRolledBack = "rolled_back"
	VoteRejected   = "rejected"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
