package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はプールとハッシュ処理の Prometheus コレクタ
// worker.Observer を満たす
type Collector struct {
	registry *prometheus.Registry

	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsPanicked  prometheus.Counter
	ActiveJobs    prometheus.Gauge
	JobLatency    prometheus.Histogram
	FilesHashed   prometheus.Counter
	FilesFailed   prometheus.Counter
	BytesHashed   prometheus.Counter
}

// NewCollector はコレクタを作成し、専用レジストリに登録する
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs submitted to the pool",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that ran to completion or panicked",
		}),
		JobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_panicked_total",
			Help:      "Total number of jobs recovered from a panic",
		}),
		ActiveJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "active_jobs",
			Help:      "Number of jobs currently executing",
		}),
		JobLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
		FilesHashed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "files_hashed_total",
			Help:      "Total number of files hashed",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "files_failed_total",
			Help:      "Total number of files that could not be hashed",
		}),
		BytesHashed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "bytes_hashed_total",
			Help:      "Total number of bytes read by the hasher",
		}),
	}

	c.registry.MustRegister(
		c.JobsSubmitted,
		c.JobsCompleted,
		c.JobsPanicked,
		c.ActiveJobs,
		c.JobLatency,
		c.FilesHashed,
		c.FilesFailed,
		c.BytesHashed,
	)
	return c
}

// JobSubmitted はジョブ投入を記録する
func (c *Collector) JobSubmitted() {
	c.JobsSubmitted.Inc()
}

// JobStarted はジョブ開始を記録する
func (c *Collector) JobStarted() {
	c.ActiveJobs.Inc()
}

// JobFinished はジョブ終了を記録する
func (c *Collector) JobFinished(elapsed time.Duration, panicked bool) {
	c.ActiveJobs.Dec()
	c.JobsCompleted.Inc()
	c.JobLatency.Observe(elapsed.Seconds())
	if panicked {
		c.JobsPanicked.Inc()
	}
}

// RecordHash は成功したハッシュ計算を記録する
func (c *Collector) RecordHash(size int64, _ time.Duration) {
	c.FilesHashed.Inc()
	if size > 0 {
		c.BytesHashed.Add(float64(size))
	}
}

// RecordFailure は失敗したハッシュ計算を記録する
func (c *Collector) RecordFailure() {
	c.FilesFailed.Inc()
}

// Registry はコレクタが登録されたレジストリを返す
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler は /metrics 用の HTTP ハンドラを返す
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
