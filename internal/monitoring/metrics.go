package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 标注流水线指标
	PipelineRuns        *prometheus.CounterVec // outcome: success / failure
	PipelineDuration    prometheus.Histogram
	ActionParseFailures prometheus.Counter

	// 对话指标
	ChatTurns *prometheus.CounterVec // outcome: success / failure
}

// HTTPHandler 返回 Prometheus 指标抓取端点的处理器。
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}

// NewMetrics 创建监控指标。
// promauto 注册到默认 registry，进程内只应调用一次。
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emailagent_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		PipelineRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_pipeline_runs_total",
				Help: "Total number of enrichment pipeline runs by outcome",
			},
			[]string{"outcome"},
		),

		PipelineDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "emailagent_pipeline_duration_seconds",
				Help: "Wall time of a full three-stage pipeline run",
				// 三次串行模型调用，秒级分桶
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
			},
		),

		ActionParseFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailagent_action_parse_failures_total",
				Help: "Action extraction outputs that degraded to an empty task list",
			},
		),

		ChatTurns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_chat_turns_total",
				Help: "Total number of chat turns by outcome",
			},
			[]string{"outcome"},
		),
	}
}
