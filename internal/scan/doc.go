// Package scan finds duplicate files under a directory tree.
//
// A Walker enumerates regular files and submits one hashing job per file to
// a worker.Pool. Each job streams the file through the hasher and records
// (digest, path) in a shared results.Store. The Engine wires these together:
// it creates the pool, runs the walker as the only producer, shuts the pool
// down (which waits for every submitted job), and aggregates duplicate
// groups.
//
// # Basic Usage
//
//	cfg := scan.DefaultConfig()
//	cfg.Root = "/data"
//	engine := scan.New(cfg)
//	result, err := engine.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Report())
//
// # Cancellation
//
// Cancelling ctx stops the walk. Jobs already submitted still run to
// completion before Run returns; the result is marked Interrupted.
package scan
