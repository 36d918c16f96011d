package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"operation"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 告警桶大小
	AlertBucketSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_alert_bucket_size",
			Help:    "Number of action plans per alert bucket per categorization",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"bucket"},
	)

	// 因日期缺失或无法解析而被丢弃的记录
	DroppedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_dropped_items_total",
			Help: "Records dropped from view-models because of malformed dates",
		},
		[]string{"kind"}, // kind: milestone, action_plan
	)

	// 刷新节流结果
	RefreshGateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_refresh_gate_total",
			Help: "Advisory refresh gate decisions",
		},
		[]string{"scope", "outcome"}, // outcome: allowed, throttled, fail_open
	)

	// digest 生成计数
	DigestGeneratedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_digest_generated_total",
			Help: "Total number of alert digests generated",
		},
		[]string{"trigger"}, // trigger: schedule, event, manual
	)
)

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(operation string) {
	SlowQueryCount.WithLabelValues(operation).Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAlertBuckets 记录一次分类的桶大小
func RecordAlertBuckets(overdue, dueSoon, highPriority int) {
	AlertBucketSize.WithLabelValues("overdue").Observe(float64(overdue))
	AlertBucketSize.WithLabelValues("due_soon").Observe(float64(dueSoon))
	AlertBucketSize.WithLabelValues("high_priority").Observe(float64(highPriority))
}

// AddDroppedItems 记录被丢弃的记录数
func AddDroppedItems(kind string, n int) {
	if n > 0 {
		DroppedItems.WithLabelValues(kind).Add(float64(n))
	}
}

// IncrementRefreshGate 记录节流决策
func IncrementRefreshGate(scope, outcome string) {
	RefreshGateDecisions.WithLabelValues(scope, outcome).Inc()
}

// IncrementDigestGenerated 增加 digest 生成计数
func IncrementDigestGenerated(trigger string) {
	DigestGeneratedCount.WithLabelValues(trigger).Inc()
}
