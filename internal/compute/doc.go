// Package compute provides the fork-join worker pool used by the spatial
// models.
//
// A [Pool] is sized once and owned by a single model. Every call to
// [Pool.Run] splits an index range into contiguous chunks, runs one goroutine
// per chunk and waits for all of them:
//
//	pool := compute.NewPool(4)
//	pool.Run(len(rows), func(start, end int) {
//		for i := start; i < end; i++ {
//			// rows[i] only
//		}
//	})
//
// Chunks never overlap, so workers write disjoint parts of a shared output
// slice without locking.
package compute
