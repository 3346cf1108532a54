// Package metrics Prometheus 指标与 gin 中间件
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
	// httpRequestsTotal HTTP 请求总数
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperly_http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration HTTP 请求耗时
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paperly_http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CacheHits 搜索缓存命中次数
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paperly_search_cache_hits_total",
		Help: "搜索缓存命中次数",
	})

	// CacheMisses 搜索缓存未命中次数
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paperly_search_cache_misses_total",
		Help: "搜索缓存未命中次数",
	})

	// Searches 按类型统计的搜索次数
	Searches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperly_searches_total",
			Help: "搜索次数",
		},
		[]string{"type"},
	)

	// PapersCreated 新建论文数
	PapersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paperly_papers_created_total",
		Help: "新建论文数",
	})
)

// Middleware 记录请求数与耗时
// 使用路由模板作为 path 标签，避免 /papers/:id 产生大量时间序列
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 暴露端点
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
