// Package results collects file digests and reports duplicate groups.
//
// Store is the shared digest -> paths mapping written by hashing jobs. It is
// safe for concurrent use. After the worker pool has shut down, Duplicates
// returns every digest that has more than one path.
//
//	store := results.NewStore()
//	store.Add(digest, path, size) // from many goroutines
//	groups := store.Duplicates()
//	_ = results.WriteText(os.Stdout, groups)
package results
