// Package metrics provides job and hashing metrics for a scan.
//
// Metrics keeps in-process counters (jobs, files, bytes) and a bounded set
// of hash-time samples for average and P99 reporting. Collector exposes the
// same signals as Prometheus collectors on a private registry. Both satisfy
// the worker pool's Observer interface, and Multi fans one stream of
// records out to several sinks.
//
// # Basic Usage
//
//	m := metrics.New()
//	c := metrics.NewCollector("dupfind")
//	sink := metrics.Multi{m, c}
//
//	pool, _ := worker.NewPoolWithConfig(worker.PoolConfig{
//	    NumWorkers: 4,
//	    Observer:   sink,
//	})
//
//	// In a job:
//	start := time.Now()
//	// ... hash ...
//	sink.RecordHash(size, time.Since(start))
//
//	snap := m.Snapshot()
//	http.Handle("/metrics", c.Handler())
//
// # Thread Safety
//
// All operations use atomic counters or a mutex and are safe for concurrent
// access.
package metrics
