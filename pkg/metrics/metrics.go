// Package metrics 提供 Prometheus 指标：HTTP 请求、上传去重结果、文档库规模与外部调用.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.UploadsTotal.WithLabelValues(metrics.UploadStored).Inc()
//	metrics.RequestDuration.WithLabelValues("GET", "/documents").Observe(0.1)
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/docchat/pkg/configs"
)

// 上传结果标签.
const (
	UploadStored    = "stored"
	UploadDuplicate = "duplicate"
	UploadRejected  = "rejected"
	UploadFailed    = "failed"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// RateLimited 被限流拒绝的请求数.
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// UploadsTotal 按结果统计的上传次数.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_uploads_total",
			Help: "Document uploads by outcome (stored, duplicate, rejected, failed)",
		},
		[]string{"result"},
	)

	// UploadBytes 成功入库的文件大小分布.
	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docchat_upload_bytes",
			Help:    "Size of stored documents in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	// QueriesLogged 记录的查询条数.
	QueriesLogged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docchat_queries_logged_total",
			Help: "Number of query log entries written",
		},
	)

	// QARequests 问答服务调用结果.
	QARequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_qa_requests_total",
			Help: "Calls to the question answering service by outcome",
		},
		[]string{"outcome"},
	)

	// EventsPublished 事件发布结果.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_events_published_total",
			Help: "Domain events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	// LibraryDocuments 文档库中的文档数量，由定时任务刷新.
	LibraryDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docchat_library_documents",
			Help: "Number of documents in the library",
		},
	)

	// LibraryEmbedded 已缓存向量的文档数量.
	LibraryEmbedded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docchat_library_embedded_documents",
			Help: "Number of documents whose embeddings are cached",
		},
	)

	// LibraryQueries 查询记录总数.
	LibraryQueries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docchat_library_queries",
			Help: "Number of logged queries",
		},
	)

	// LibraryBytes 文档总字节数.
	LibraryBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docchat_library_bytes",
			Help: "Total size of stored documents in bytes",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections, RateLimited,
			UploadsTotal, UploadBytes, QueriesLogged, QARequests, EventsPublished,
			LibraryDocuments, LibraryEmbedded, LibraryQueries, LibraryBytes,
		)
	})

	return nil
}

// StartMetricsServer 在 engine 上注册指标与 pprof 路由.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	engine.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
