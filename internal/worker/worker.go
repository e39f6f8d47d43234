package worker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dupfind/internal/logger"
)

var (
	// ErrInvalidArgument はワーカー数が 1 未満のときに返される
	ErrInvalidArgument = errors.New("worker: pool size must be at least 1")
	// ErrPoolClosed はシャットダウン開始後の投入で返される
	ErrPoolClosed = errors.New("worker: pool is closed")
	// ErrNilJob は nil ジョブの投入で返される
	ErrNilJob = errors.New("worker: nil job")
)

// Job はワーカーが一度だけ実行する作業単位
type Job interface {
	Run()
}

// JobFunc は関数を Job として扱うアダプタ
type JobFunc func()

// Run は関数を呼び出す
func (f JobFunc) Run() { f() }

// Observer はジョブのライフサイクルを観測する
type Observer interface {
	JobSubmitted()
	JobStarted()
	JobFinished(elapsed time.Duration, panicked bool)
}

// PanicHandler はジョブが panic したときに呼ばれる
type PanicHandler func(workerID int, recovered any)

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers   int          // ワーカー数（1以上）
	PanicHandler PanicHandler // panic 通知先（任意）
	Observer     Observer     // メトリクス連携（任意）
}

// Stats はプールの累積統計
type Stats struct {
	Submitted uint64
	Executed  uint64
	Panicked  uint64
}

// Pool は固定数のワーカーゴルーチンを管理する
type Pool struct {
	numWorkers int
	queue      *Queue
	wg         sync.WaitGroup
	closeOnce  sync.Once

	onPanic  PanicHandler
	observer Observer

	submitted atomic.Uint64
	executed  atomic.Uint64
	panicked  atomic.Uint64
}

// NewPool は numWorkers 個のワーカーで起動済みのプールを作成する
func NewPool(numWorkers int) (*Pool, error) {
	return NewPoolWithConfig(PoolConfig{NumWorkers: numWorkers})
}

// NewPoolWithConfig は設定を指定してプールを作成する
// ワーカー数が 1 未満の場合はゴルーチンを起動せずにエラーを返す
func NewPoolWithConfig(config PoolConfig) (*Pool, error) {
	if config.NumWorkers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidArgument, config.NumWorkers)
	}

	p := &Pool{
		numWorkers: config.NumWorkers,
		queue:      NewQueue(),
		onPanic:    config.PanicHandler,
		observer:   config.Observer,
	}

	p.wg.Add(p.numWorkers)
	for i := range p.numWorkers {
		go p.worker(i)
	}

	logger.Debug("", "WorkerPool started with %d workers", p.numWorkers)
	return p, nil
}

// worker はキューが閉じて空になるまでジョブを一つずつ実行する
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	scope := fmt.Sprintf("worker-%d", id)
	for {
		job, ok := p.queue.Pop()
		if !ok {
			logger.Debug(scope, "queue drained, exiting")
			return
		}
		p.run(id, scope, job)
	}
}

// run は一つのジョブを実行し、panic を回収してワーカーを存続させる
func (p *Pool) run(id int, scope string, job Job) {
	start := time.Now()
	panicked := false

	if p.observer != nil {
		p.observer.JobStarted()
	}

	defer func() {
		if r := recover(); r != nil {
			panicked = true
			p.panicked.Add(1)
			logger.Error(scope, "job panicked: %v", r)
			if p.onPanic != nil {
				p.onPanic(id, r)
			}
		}
		p.executed.Add(1)
		if p.observer != nil {
			p.observer.JobFinished(time.Since(start), panicked)
		}
	}()

	job.Run()
}

// Execute はジョブをキューに投入する（ノンブロッキング）
// シャットダウン開始後は ErrPoolClosed を返す
func (p *Pool) Execute(job Job) error {
	if err := p.queue.Push(job); err != nil {
		return err
	}
	p.submitted.Add(1)
	if p.observer != nil {
		p.observer.JobSubmitted()
	}
	return nil
}

// Submit は関数をジョブとして投入する
func (p *Pool) Submit(fn func()) error {
	if fn == nil {
		return ErrNilJob
	}
	return p.Execute(JobFunc(fn))
}

// Shutdown はキューを閉じ、投入済みの全ジョブが完了するまで待つ
// 2回目以降の呼び出しは即座に戻る。ジョブ内から呼んではならない
func (p *Pool) Shutdown() {
	p.closeOnce.Do(func() {
		p.queue.Close()
		logger.Debug("", "WorkerPool closing, %d jobs pending", p.queue.Len())
	})
	p.wg.Wait()
}

// IsClosed はシャットダウンが開始されたかを返す
func (p *Pool) IsClosed() bool {
	return p.queue.Closed()
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// QueueSize は現在のキューサイズを返す
func (p *Pool) QueueSize() int {
	return p.queue.Len()
}

// Stats は累積統計を返す
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Executed:  p.executed.Load(),
		Panicked:  p.panicked.Load(),
	}
}
