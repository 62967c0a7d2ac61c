// Package metrics exposes Prometheus metrics for the conversion pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	conversions   *prometheus.CounterVec
	uploadBytes   prometheus.Histogram
	httpRequests  *prometheus.CounterVec
}

// NewCollector registers every metric on reg under the given namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"stage", "provider"},
		),
		stageFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_failures_total",
				Help:      "Pipeline stage failures",
			},
			[]string{"stage"},
		),
		conversions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Conversion requests by outcome",
			},
			[]string{"result"},
		),
		uploadBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_bytes",
				Help:      "Size of accepted audio uploads in bytes",
				Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
			},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (c *Collector) ObserveStage(stage, provider string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(stage, provider).Observe(d.Seconds())
	if err != nil {
		c.stageFailures.WithLabelValues(stage).Inc()
	}
}

// RecordConversion counts one finished request; result is "ok" or an error kind.
func (c *Collector) RecordConversion(result string) {
	if c == nil {
		return
	}
	c.conversions.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveUpload(size int64) {
	if c == nil {
		return
	}
	c.uploadBytes.Observe(float64(size))
}

func (c *Collector) RecordHTTPRequest(method, path string, status int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
