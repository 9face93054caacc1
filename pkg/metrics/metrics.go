package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "videogen",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "videogen",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "videogen",
		Name:      "status_transitions_total",
		Help:      "Status transitions by entity, target status and outcome.",
	}, []string{"entity", "to", "outcome"})

	adapterCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "videogen",
		Name:      "provider_calls_total",
		Help:      "Outbound provider calls by provider, operation and result.",
	}, []string{"provider", "operation", "result"})
)

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveTransition 记录状态迁移结果，outcome 为 ok 或 rejected
func ObserveTransition(entity, to string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	transitions.WithLabelValues(entity, to, outcome).Inc()
}

// ObserveProviderCall 记录外部服务调用
func ObserveProviderCall(provider, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	adapterCalls.WithLabelValues(provider, operation, result).Inc()
}

// Handler Prometheus 拉取端点
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
