package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dupfind/internal/events"
	"dupfind/internal/filter"
	"dupfind/internal/hasher"
	"dupfind/internal/logger"
	"dupfind/internal/metrics"
	"dupfind/internal/results"
	"dupfind/internal/worker"
)

// ErrAlreadyRunning は実行中の Engine で Run を呼んだときのエラー
var ErrAlreadyRunning = errors.New("scan: already running")

// Config はスキャンの設定
type Config struct {
	Root       string // 走査するディレクトリ
	Workers    int    // ワーカー数（0でCPU数）
	ChunkSize  int    // ハッシュの読み込みサイズ
	MinSize    int64  // これより小さいファイルは無視
	Filter     string // JavaScript のフィルタ式
	SkipHidden bool   // ドットで始まるファイル/ディレクトリを無視
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Root:      ".",
		Workers:   4,
		ChunkSize: hasher.DefaultChunkSize,
	}
}

// Result はスキャン結果
type Result struct {
	ScanID      string            `json:"scan_id"`
	Root        string            `json:"root"`
	Workers     int               `json:"workers"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	Duration    time.Duration     `json:"duration_ns"`
	Interrupted bool              `json:"interrupted"`
	Walk        WalkStats         `json:"walk"`
	Metrics     metrics.Snapshot  `json:"metrics"`
	Failures    []results.Failure `json:"failures,omitempty"`
	Groups      []results.Group   `json:"duplicates"`
}

// Status は実行中スキャンの状態
type Status struct {
	Running   bool              `json:"running"`
	ScanID    string            `json:"scan_id,omitempty"`
	Root      string            `json:"root,omitempty"`
	QueueSize int               `json:"queue_size"`
	Metrics   *metrics.Snapshot `json:"metrics,omitempty"`
}

// Engine はスキャン実行エンジン
type Engine struct {
	config    Config
	eventBus  *events.Bus
	collector *metrics.Collector

	mu      sync.RWMutex
	running bool
	scanID  string
	pool    *worker.Pool
	metrics *metrics.Metrics
	last    *Result
}

// New は新しいEngineを作成する
func New(config Config) *Engine {
	return &Engine{
		config: config,
	}
}

// SetEventBus はイベントバスを設定する
func (e *Engine) SetEventBus(bus *events.Bus) {
	e.eventBus = bus
}

// SetCollector は Prometheus コレクタを設定する
func (e *Engine) SetCollector(c *metrics.Collector) {
	e.collector = c
}

// Config は設定を返す
func (e *Engine) Config() Config {
	return e.config
}

// Run はスキャンを実行する
// 走査が終わる（またはキャンセルされる）とプールをシャットダウンし、
// 投入済みの全ジョブの完了を待ってから結果を集計する
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	cfg := e.config
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", cfg.Root)
	}

	flt, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.pool = nil
		e.mu.Unlock()
	}()

	scanID := uuid.NewString()
	m := metrics.New()
	sink := metrics.Multi{m}
	if e.collector != nil {
		sink = append(sink, e.collector)
	}

	pool, err := worker.NewPoolWithConfig(worker.PoolConfig{
		NumWorkers: cfg.Workers,
		Observer:   sink,
		PanicHandler: func(workerID int, recovered any) {
			e.eventBus.Publish(events.NewJobPanickedEvent(scanID, workerID, recovered))
		},
	})
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.scanID = scanID
	e.pool = pool
	e.metrics = m
	e.mu.Unlock()

	logger.Info("scan", "=== Scan %s started: root=%s workers=%d ===", scanID, cfg.Root, cfg.Workers)
	if flt.Expr() != "" {
		logger.Info("scan", "Filter: %s", flt.Expr())
	}
	e.eventBus.Publish(events.NewScanStartedEvent(scanID, cfg.Root))

	result := &Result{
		ScanID:    scanID,
		Root:      cfg.Root,
		Workers:   cfg.Workers,
		StartTime: time.Now(),
	}

	store := results.NewStore()
	walker := &Walker{
		Root:       cfg.Root,
		MinSize:    cfg.MinSize,
		SkipHidden: cfg.SkipHidden,
		ScanID:     scanID,
		Filter:     flt,
		Hasher:     &hasher.Hasher{ChunkSize: cfg.ChunkSize},
		Store:      store,
		Recorder:   sink,
		Bus:        e.eventBus,
	}

	stats, walkErr := walker.Walk(ctx, pool)

	// 投入済みジョブの完了を待つ
	logger.Info("scan", "Walk finished: %d files submitted, waiting for %d queued jobs", stats.Submitted, pool.QueueSize())
	pool.Shutdown()

	if walkErr != nil {
		if !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("walk failed: %w", walkErr)
		}
		result.Interrupted = true
		logger.Warn("scan", "Scan interrupted: %v", walkErr)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Walk = stats
	result.Metrics = m.Snapshot()
	result.Failures = store.Failures()
	result.Groups = store.Duplicates()

	e.eventBus.Publish(events.NewScanCompletedEvent(scanID, store.Len(), len(result.Groups)))
	logger.Info("scan", "=== Scan %s completed: %d files, %d duplicate groups ===", scanID, store.Len(), len(result.Groups))

	e.mu.Lock()
	e.last = result
	e.mu.Unlock()

	return result, nil
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Status は現在の状態を返す
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := Status{
		Running: e.running,
		ScanID:  e.scanID,
		Root:    e.config.Root,
	}
	if e.pool != nil {
		st.QueueSize = e.pool.QueueSize()
	}
	if e.metrics != nil {
		snap := e.metrics.Snapshot()
		st.Metrics = &snap
	}
	return st
}

// LastResult は直近に完了したスキャン結果を返す
func (e *Engine) LastResult() *Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Report は結果をフォーマットして返す
func (r *Result) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, `
================================================================================
                         SCAN REPORT: %s
================================================================================

EXECUTION SUMMARY
-----------------
  Root:           %s
  Workers:        %d
  Start Time:     %s
  End Time:       %s
  Duration:       %v
  Interrupted:    %v

FILES
-----
  Visited:          %d
  Hashed:           %d
  Skipped:          %d
  Failed:           %d
  Bytes Hashed:     %d
  Avg Hash Time:    %v
  P99 Hash Time:    %v

JOBS
----
  Submitted:        %d
  Executed:         %d
  Panicked:         %d

DUPLICATES
----------
  Groups:           %d
  Wasted Bytes:     %d
`,
		r.ScanID,
		r.Root,
		r.Workers,
		r.StartTime.Format("2006-01-02 15:04:05"),
		r.EndTime.Format("2006-01-02 15:04:05"),
		r.Duration.Round(time.Millisecond),
		r.Interrupted,
		r.Walk.Visited,
		r.Metrics.FilesHashed,
		r.Walk.Skipped,
		r.Metrics.FilesFailed+uint64(r.Walk.Errors),
		r.Metrics.BytesHashed,
		r.Metrics.AverageHashTime.Round(time.Microsecond),
		r.Metrics.P99HashTime.Round(time.Microsecond),
		r.Metrics.JobsSubmitted,
		r.Metrics.JobsExecuted,
		r.Metrics.JobsPanicked,
		len(r.Groups),
		results.TotalWasted(r.Groups),
	)

	_ = results.WriteText(&b, r.Groups)

	b.WriteString("\n================================================================================")
	return b.String()
}
