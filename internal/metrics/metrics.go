package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服务使用的 Prometheus 指标，nil 接收者上的方法均为空操作
type Metrics struct {
	VotesCast       *prometheus.CounterVec
	VoteRejections  *prometheus.CounterVec
	CastLatency     prometheus.Histogram
	SessionsOpened  prometheus.Counter
	EventsPublished *prometheus.CounterVec
	EventsConsumed  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics 在 reg 上注册指标，reg 为 nil 时使用新的独立注册表
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		VotesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Committed votes by option.",
		}, []string{"option"}),
		VoteRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_rejections_total",
			Help:      "Rejected vote attempts by error kind.",
		}, []string{"kind"}),
		CastLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cast_vote_latency_ms",
			Help:      "End-to-end latency of a vote cast in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		SessionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Voting sessions opened.",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_events_published_total",
			Help:      "Vote events handed to the broker by result.",
		}, []string{"result"}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_events_consumed_total",
			Help:      "Vote events processed by the audit consumer by result.",
		}, []string{"result"}),
		gatherer: reg,
	}
}

func (m *Metrics) VoteCast(option string, d time.Duration) {
	if m == nil {
		return
	}
	m.VotesCast.WithLabelValues(option).Inc()
	m.CastLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) VoteRejected(kind string) {
	if m == nil {
		return
	}
	m.VoteRejections.WithLabelValues(kind).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsOpened.Inc()
}

func (m *Metrics) EventPublished(ok bool) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) EventConsumed(ok bool) {
	if m == nil {
		return
	}
	m.EventsConsumed.WithLabelValues(result(ok)).Inc()
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
