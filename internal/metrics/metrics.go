package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const defaultMaxLatencySamples = 1000

// Config はメトリクスの設定
type Config struct {
	MaxLatencySamples int // 保持するハッシュ時間サンプル数
}

// Metrics はジョブとハッシュ処理のメトリクスを収集する
// worker.Observer を満たす
type Metrics struct {
	jobsSubmitted atomic.Uint64
	jobsActive    atomic.Int64
	jobsExecuted  atomic.Uint64
	jobsPanicked  atomic.Uint64

	filesHashed   atomic.Uint64
	filesFailed   atomic.Uint64
	bytesHashed   atomic.Uint64
	totalHashTime atomic.Uint64

	mu                sync.RWMutex
	startTime         time.Time
	latencies         []time.Duration
	maxLatencySamples int
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return NewWithConfig(Config{MaxLatencySamples: defaultMaxLatencySamples})
}

// NewWithConfig は設定を指定してメトリクスを作成する
func NewWithConfig(config Config) *Metrics {
	samples := config.MaxLatencySamples
	if samples <= 0 {
		samples = defaultMaxLatencySamples
	}
	return &Metrics{
		startTime:         time.Now(),
		latencies:         make([]time.Duration, 0, samples),
		maxLatencySamples: samples,
	}
}

// JobSubmitted はジョブ投入を記録する
func (m *Metrics) JobSubmitted() {
	m.jobsSubmitted.Add(1)
}

// JobStarted はジョブ開始を記録する
func (m *Metrics) JobStarted() {
	m.jobsActive.Add(1)
}

// JobFinished はジョブ終了を記録する
func (m *Metrics) JobFinished(_ time.Duration, panicked bool) {
	m.jobsActive.Add(-1)
	m.jobsExecuted.Add(1)
	if panicked {
		m.jobsPanicked.Add(1)
	}
}

// RecordHash は成功したハッシュ計算を記録する
func (m *Metrics) RecordHash(size int64, elapsed time.Duration) {
	m.filesHashed.Add(1)
	if size > 0 {
		m.bytesHashed.Add(uint64(size))
	}
	m.totalHashTime.Add(uint64(elapsed.Nanoseconds()))

	m.mu.Lock()
	if len(m.latencies) < m.maxLatencySamples {
		m.latencies = append(m.latencies, elapsed)
	}
	m.mu.Unlock()
}

// RecordFailure は失敗したハッシュ計算を記録する
func (m *Metrics) RecordFailure() {
	m.filesFailed.Add(1)
}

// FilesHashed はハッシュ済みファイル数を返す
func (m *Metrics) FilesHashed() uint64 {
	return m.filesHashed.Load()
}

// FilesFailed は失敗したファイル数を返す
func (m *Metrics) FilesFailed() uint64 {
	return m.filesFailed.Load()
}

// BytesHashed はハッシュしたバイト数を返す
func (m *Metrics) BytesHashed() uint64 {
	return m.bytesHashed.Load()
}

// AverageHashTime は平均ハッシュ時間を返す
func (m *Metrics) AverageHashTime() time.Duration {
	n := m.filesHashed.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(m.totalHashTime.Load() / n)
}

// P99HashTime はP99ハッシュ時間を返す（サンプルベース）
func (m *Metrics) P99HashTime() time.Duration {
	m.mu.RLock()
	sorted := slices.Clone(m.latencies)
	m.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Throughput は開始からの平均スループット（バイト/秒）を返す
func (m *Metrics) Throughput() float64 {
	elapsed := time.Since(m.startTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.bytesHashed.Load()) / elapsed
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	JobsSubmitted   uint64        `json:"jobs_submitted"`
	JobsActive      int64         `json:"jobs_active"`
	JobsExecuted    uint64        `json:"jobs_executed"`
	JobsPanicked    uint64        `json:"jobs_panicked"`
	FilesHashed     uint64        `json:"files_hashed"`
	FilesFailed     uint64        `json:"files_failed"`
	BytesHashed     uint64        `json:"bytes_hashed"`
	AverageHashTime time.Duration `json:"average_hash_time_ns"`
	P99HashTime     time.Duration `json:"p99_hash_time_ns"`
	Throughput      float64       `json:"throughput_bps"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		JobsSubmitted:   m.jobsSubmitted.Load(),
		JobsActive:      m.jobsActive.Load(),
		JobsExecuted:    m.jobsExecuted.Load(),
		JobsPanicked:    m.jobsPanicked.Load(),
		FilesHashed:     m.FilesHashed(),
		FilesFailed:     m.FilesFailed(),
		BytesHashed:     m.BytesHashed(),
		AverageHashTime: m.AverageHashTime(),
		P99HashTime:     m.P99HashTime(),
		Throughput:      m.Throughput(),
		Elapsed:         time.Since(m.startTime),
	}
}
