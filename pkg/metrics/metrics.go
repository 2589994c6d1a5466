package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 业务指标
	reportsFiled       *prometheus.CounterVec
	suspensions        prometheus.Counter
	withdrawals        prometheus.Counter
	cascadeFailures    *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	blacklistCache     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewCollector 创建指标收集器，reg 为 nil 时使用默认注册表
func NewCollector(reg *prometheus.Registry) *Collector {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	return &Collector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		reportsFiled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "footstep_reports_filed_total",
				Help: "Reports accepted, by target kind",
			},
			[]string{"kind"},
		),
		suspensions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "footstep_suspensions_total",
				Help: "Authors suspended after crossing the report threshold",
			},
		),
		withdrawals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "footstep_withdrawals_total",
				Help: "Accounts withdrawn by their owner",
			},
		),
		cascadeFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "footstep_cascade_item_failures_total",
				Help: "Cascade items that could not be applied",
			},
			[]string{"operation", "collection"},
		),
		notificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "footstep_notifications_total",
				Help: "Notices delivered to authors",
			},
			[]string{"kind", "status"},
		),
		blacklistCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "footstep_blacklist_cache_total",
				Help: "Viewer blacklist cache lookups",
			},
			[]string{"result"},
		),
		gatherer: gatherer,
	}
}

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordReport 记录举报
func (c *Collector) RecordReport(kind string) {
	c.reportsFiled.WithLabelValues(kind).Inc()
}

// RecordSuspension 记录封禁
func (c *Collector) RecordSuspension() {
	c.suspensions.Inc()
}

// RecordWithdrawal 记录注销
func (c *Collector) RecordWithdrawal() {
	c.withdrawals.Inc()
}

// RecordCascadeFailure 记录级联失败项
func (c *Collector) RecordCascadeFailure(operation, collection string) {
	c.cascadeFailures.WithLabelValues(operation, collection).Inc()
}

// RecordNotification 记录通知发送结果
func (c *Collector) RecordNotification(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	c.notificationsTotal.WithLabelValues(kind, status).Inc()
}

// RecordBlacklistCache 记录黑名单缓存命中情况
func (c *Collector) RecordBlacklistCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.blacklistCache.WithLabelValues(result).Inc()
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
