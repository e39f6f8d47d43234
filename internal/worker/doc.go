// Package worker provides a fixed-size goroutine pool for fire-and-forget jobs.
//
// The Pool starts a fixed number of worker goroutines at construction. Every
// worker pulls from one shared Queue, so whichever worker is idle first
// receives the next job. Each job is delivered to exactly one worker.
//
// # Basic Usage
//
//	pool, err := worker.NewPool(4) // 4 workers
//	if err != nil {
//	    return err
//	}
//	defer pool.Shutdown()
//
//	for i := 0; i < 100; i++ {
//	    if err := pool.Submit(func() {
//	        // do work
//	    }); err != nil {
//	        // worker.ErrPoolClosed
//	    }
//	}
//
// # Shutdown
//
// Shutdown closes the queue and blocks until every job submitted before the
// call has finished. It is safe to call more than once. Execute and Submit
// return ErrPoolClosed once Shutdown has begun.
//
// # Panics
//
// A panicking job is recovered inside the worker loop and logged. The worker
// keeps running, so pool capacity never shrinks. Use PoolConfig.PanicHandler
// to be notified.
package worker
