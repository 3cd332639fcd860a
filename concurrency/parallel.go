// Package concurrency provides the chunked work-splitter used by every
// parallel loop in the pipeline: dense grid evaluation, the brick map's
// two allocation passes, and dual contouring's surface scan and vertex
// placement. Dual contouring's face emission does not use it and runs
// sequentially. There are no suspension points inside fn — each call blocks
// until every chunk has finished, and a panic inside any worker
// propagates to the caller instead of being swallowed.
package concurrency

import (
	"runtime"
	"sync"
)

// Parallelize splits the range [0, n) into contiguous chunks, one per
// available CPU (capped at n), and runs fn(lo, hi) for each chunk on its
// own goroutine. It blocks until every chunk has completed. If n is zero
// or negative, fn is never called.
func Parallelize(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers
	var (
		wg       sync.WaitGroup
		panicMu  sync.Mutex
		panicked any
	)
	for lo := 0; lo < n; lo += chunkSize {
		hi := lo + chunkSize
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if panicked == nil {
						panicked = r
					}
					panicMu.Unlock()
				}
			}()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}
}

// ParallelizeIndexed is Parallelize for the common case where fn handles
// one index at a time rather than a [lo,hi) range.
func ParallelizeIndexed(n int, fn func(i int)) {
	Parallelize(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}
