package monitoring

import (
	"sort"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP 层指标，业务计数由 MonitorCollector 从 service.Monitor 读取
var (
	httpRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_http_requests_total",
			Help: "Total number of HTTP requests by route and status code.",
		},
		[]string{"server", "method", "route", "code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookstore_http_request_duration_seconds",
			Help:    "Latency of HTTP request handling in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server", "method", "route"},
	)
)

// CounterSource 提供扁平计数快照
type CounterSource interface {
	Counters() map[string]int64
}

// MonitorCollector 把进程内计数以 bookstore_<name>_total 导出
type MonitorCollector struct {
	src CounterSource
}

func NewMonitorCollector(src CounterSource) *MonitorCollector {
	return &MonitorCollector{src: src}
}

func (c *MonitorCollector) desc(name string) *prometheus.Desc {
	return prometheus.NewDesc("bookstore_"+name+"_total", "Bookstore counter "+name+".", nil, nil)
}

// Describe 计数项固定，按当前快照描述
func (c *MonitorCollector) Describe(ch chan<- *prometheus.Desc) {
	for name := range c.src.Counters() {
		ch <- c.desc(name)
	}
}

func (c *MonitorCollector) Collect(ch chan<- prometheus.Metric) {
	counters := c.src.Counters()
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ch <- prometheus.MustNewConstMetric(c.desc(name), prometheus.CounterValue, float64(counters[name]))
	}
}

// NewRegistry 创建独立的指标注册表，包含 HTTP、业务计数与 Go 运行时指标
func NewRegistry(src CounterSource) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		httpRequestTotal,
		httpRequestDuration,
		NewMonitorCollector(src),
		collectors.NewGoCollector(),
	)
	return reg
}

// Handler /metrics 接口
func Handler(reg *prometheus.Registry) iris.Handler {
	return iris.FromStd(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

// HTTPMetrics 记录请求数与耗时，route 取路由模板避免基数膨胀
func HTTPMetrics(server string) iris.Handler {
	return func(ctx iris.Context) {
		start := time.Now()
		ctx.Next()

		route := "unmatched"
		if r := ctx.GetCurrentRoute(); r != nil {
			route = r.Path()
		}
		method := ctx.Method()
		httpRequestTotal.WithLabelValues(server, method, route, strconv.Itoa(ctx.GetStatusCode())).Inc()
		httpRequestDuration.WithLabelValues(server, method, route).Observe(time.Since(start).Seconds())
	}
}
