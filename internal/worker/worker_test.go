package worker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWorkerPool(t *testing.T) {
	pool, err := NewPool(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer pool.Shutdown()

	if pool.NumWorkers() != 4 {
		t.Errorf("expected 4 workers, got %d", pool.NumWorkers())
	}
}

func TestWorkerPoolInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, -5} {
		pool, err := NewPool(size)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("NewPool(%d): expected ErrInvalidArgument, got %v", size, err)
		}
		if pool != nil {
			t.Errorf("NewPool(%d): expected nil pool", size)
		}
	}
}

func TestWorkerPoolExecutesAllJobs(t *testing.T) {
	for _, size := range []int{1, 2, 8} {
		pool, err := NewPool(size)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var counter atomic.Int32
		const jobs = 500
		for range jobs {
			if err := pool.Submit(func() {
				counter.Add(1)
			}); err != nil {
				t.Fatalf("submit failed: %v", err)
			}
		}

		// Shutdown は全ジョブの完了を待つのでスリープ不要
		pool.Shutdown()

		if counter.Load() != jobs {
			t.Errorf("size %d: expected %d jobs completed, got %d", size, jobs, counter.Load())
		}
		stats := pool.Stats()
		if stats.Submitted != jobs || stats.Executed != jobs {
			t.Errorf("size %d: unexpected stats %+v", size, stats)
		}
	}
}

func TestWorkerPoolExactlyOnce(t *testing.T) {
	pool, err := NewPool(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var mu sync.Mutex
	var log []int

	const jobs = 1000
	for i := range jobs {
		id := i
		_ = pool.Submit(func() {
			mu.Lock()
			log = append(log, id)
			mu.Unlock()
		})
	}
	pool.Shutdown()

	if len(log) != jobs {
		t.Fatalf("expected %d log entries, got %d", jobs, len(log))
	}
	seen := make(map[int]bool, jobs)
	for _, id := range log {
		if seen[id] {
			t.Fatalf("job %d executed more than once", id)
		}
		seen[id] = true
	}
}

func TestWorkerPoolSubmitAfterShutdown(t *testing.T) {
	pool, err := NewPool(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pool.Shutdown()

	var ran atomic.Bool
	err = pool.Submit(func() {
		ran.Store(true)
	})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
	if pool.QueueSize() != 0 {
		t.Errorf("expected empty queue, got %d", pool.QueueSize())
	}
	if !pool.IsClosed() {
		t.Error("expected pool to report closed")
	}
	if ran.Load() {
		t.Error("rejected job must not run")
	}
}

func TestWorkerPoolShutdownIdempotent(t *testing.T) {
	pool, err := NewPool(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = pool.Submit(func() { time.Sleep(20 * time.Millisecond) })

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Shutdown()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for concurrent Shutdown")
	}

	// Double shutdown should be no-op
	pool.Shutdown()
}

func TestWorkerPoolShutdownWaitsForInFlight(t *testing.T) {
	pool, err := NewPool(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started := make(chan struct{})
	var finished atomic.Bool
	_ = pool.Submit(func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})
	<-started

	pool.Shutdown()
	if !finished.Load() {
		t.Error("Shutdown returned before in-flight job finished")
	}
}

func TestWorkerPoolConcurrentSubmit(t *testing.T) {
	pool, err := NewPool(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var counter atomic.Int32
	const numGoroutines = 10
	const jobsPerGoroutine = 100

	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobsPerGoroutine {
				if err := pool.Submit(func() {
					counter.Add(1)
				}); err != nil {
					t.Errorf("submit failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	pool.Shutdown()

	expected := int32(numGoroutines * jobsPerGoroutine)
	if counter.Load() != expected {
		t.Errorf("expected %d jobs completed, got %d", expected, counter.Load())
	}
}

func TestWorkerPoolParallelism(t *testing.T) {
	pool, err := NewPool(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var mu sync.Mutex
	counter := 0

	start := time.Now()
	for range 4 {
		_ = pool.Submit(func() {
			time.Sleep(100 * time.Millisecond)
			mu.Lock()
			counter++
			mu.Unlock()
		})
	}
	pool.Shutdown()
	elapsed := time.Since(start)

	if counter != 4 {
		t.Errorf("expected counter 4, got %d", counter)
	}
	if elapsed < 200*time.Millisecond {
		t.Errorf("expected at least 200ms for two batches, got %v", elapsed)
	}
	if elapsed >= 400*time.Millisecond {
		t.Errorf("expected parallel execution under 400ms, got %v", elapsed)
	}
}

func TestWorkerPoolPanicIsolation(t *testing.T) {
	var handled atomic.Int32
	pool, err := NewPoolWithConfig(PoolConfig{
		NumWorkers: 1,
		PanicHandler: func(workerID int, recovered any) {
			if workerID != 0 {
				t.Errorf("expected worker 0, got %d", workerID)
			}
			handled.Add(1)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var counter atomic.Int32
	_ = pool.Submit(func() { panic("boom") })
	for range 3 {
		_ = pool.Submit(func() { counter.Add(1) })
	}
	pool.Shutdown()

	// 単一ワーカーが panic 後も生き残っていること
	if counter.Load() != 3 {
		t.Errorf("expected 3 jobs after panic, got %d", counter.Load())
	}
	if handled.Load() != 1 {
		t.Errorf("expected panic handler called once, got %d", handled.Load())
	}
	if pool.Stats().Panicked != 1 {
		t.Errorf("expected 1 panicked job, got %d", pool.Stats().Panicked)
	}
}

type countingObserver struct {
	submitted atomic.Int32
	started   atomic.Int32
	finished  atomic.Int32
	panicked  atomic.Int32
}

func (o *countingObserver) JobSubmitted() { o.submitted.Add(1) }
func (o *countingObserver) JobStarted()   { o.started.Add(1) }
func (o *countingObserver) JobFinished(_ time.Duration, panicked bool) {
	o.finished.Add(1)
	if panicked {
		o.panicked.Add(1)
	}
}

func TestWorkerPoolObserver(t *testing.T) {
	obs := &countingObserver{}
	pool, err := NewPoolWithConfig(PoolConfig{NumWorkers: 3, Observer: obs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for range 10 {
		_ = pool.Submit(func() {})
	}
	_ = pool.Submit(func() { panic("observed") })
	pool.Shutdown()

	if obs.submitted.Load() != 11 || obs.started.Load() != 11 || obs.finished.Load() != 11 {
		t.Errorf("unexpected observer counts: submitted=%d started=%d finished=%d",
			obs.submitted.Load(), obs.started.Load(), obs.finished.Load())
	}
	if obs.panicked.Load() != 1 {
		t.Errorf("expected 1 panicked, got %d", obs.panicked.Load())
	}
}

func TestWorkerPoolNilJob(t *testing.T) {
	pool, err := NewPool(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer pool.Shutdown()

	if err := pool.Submit(nil); !errors.Is(err, ErrNilJob) {
		t.Errorf("expected ErrNilJob, got %v", err)
	}
	if err := pool.Execute(nil); !errors.Is(err, ErrNilJob) {
		t.Errorf("expected ErrNilJob, got %v", err)
	}
}
