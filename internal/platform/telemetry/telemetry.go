// Package telemetry 维护进程内的Prometheus指标，由 /metrics 暴露。
package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 是独立的注册表，避免测试之间重复注册到全局默认表
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plantify",
		Name:      "http_requests_total",
		Help:      "按路由和状态码统计的HTTP请求数",
	}, []string{"method", "route", "status"})

	agentCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plantify",
		Name:      "agent_calls_total",
		Help:      "AI代理调用次数",
	}, []string{"capability", "outcome"})

	agentLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "plantify",
		Name:      "agent_call_duration_seconds",
		Help:      "AI代理调用耗时",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 45, 90},
	}, []string{"capability"})

	quotaRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "plantify",
		Name:      "agent_quota_rejections_total",
		Help:      "因超出每小时配额被拒绝的AI调用",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests, agentCalls, agentLatency, quotaRejections,
	)
}

// Middleware 统计每个请求。未匹配到路由的请求统一记为 "unmatched"，防止标签基数失控。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler 返回 /metrics 的处理函数
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
	return gin.WrapH(h)
}

// AI代理调用的结果标签
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeSchemaError = "schema_error"
)

// ObserveAgentCall 记录一次AI代理调用的结果和耗时
func ObserveAgentCall(capability, outcome string, started time.Time) {
	agentCalls.WithLabelValues(capability, outcome).Inc()
	agentLatency.WithLabelValues(capability).Observe(time.Since(started).Seconds())
}

// IncQuotaRejection 记录一次配额拒绝
func IncQuotaRejection() {
	quotaRejections.Inc()
}
