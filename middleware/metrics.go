package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdblog_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mdblog_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// PageViews counts successful page GETs, leaving out health, metrics and assets.
	PageViews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdblog_page_views_total",
		Help: "Successful page views by route.",
	}, []string{"route"})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdblog_posts_created_total",
		Help: "Posts written to the store.",
	})

	PageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdblog_page_cache_hits_total",
		Help: "Rendered pages served from the page cache.",
	}, []string{"page"})
)

// Metrics records request counters and latency after each request.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())

		if c.Request.Method != "GET" || status < 200 || status >= 400 {
			return
		}
		if route == "/health" || route == "/metrics" || strings.HasPrefix(route, "/static/") || route == "unmatched" {
			return
		}
		PageViews.WithLabelValues(route).Inc()
	}
}
