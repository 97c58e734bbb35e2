package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricConfig 指标配置
type MetricConfig struct {
	Namespace string // 指标前缀
	Enabled   bool   // 启用指标
}

// Metrics 指标服务，使用独立的注册表
type Metrics struct {
	registry       *prometheus.Registry
	mutations      *prometheus.CounterVec
	externalCalls  *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	people         prometheus.Gauge
}

// NewMetrics 创建指标服务实例
func NewMetrics(config *MetricConfig) *Metrics {
	ns := config.Namespace
	if ns == "" {
		ns = "heritage"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "mutations_total",
			Help:      "Store mutations by operation and result.",
		}, []string{"operation", "result"}),
		externalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "external_calls_total",
			Help:      "Calls to AI and publish collaborators by action and result.",
		}, []string{"action", "result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "render_duration_seconds",
			Help:      "Time spent resolving, laying out and rendering the tree.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		people: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "people",
			Help:      "Number of people in the store.",
		}),
	}
	m.registry.MustRegister(
		m.mutations,
		m.externalCalls,
		m.renderDuration,
		m.people,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry 注册表，供 /metrics 使用
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveMutation 记录一次变更
func (m *Metrics) ObserveMutation(op string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, result(err)).Inc()
}

// ObserveExternal 记录一次外部调用
func (m *Metrics) ObserveExternal(action string, err error) {
	if m == nil {
		return
	}
	m.externalCalls.WithLabelValues(action, result(err)).Inc()
}

// ObserveRender 记录渲染耗时
func (m *Metrics) ObserveRender(format string, start time.Time) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
}

// SetPeople 更新成员数
func (m *Metrics) SetPeople(n int) {
	if m == nil {
		return
	}
	m.people.Set(float64(n))
}
