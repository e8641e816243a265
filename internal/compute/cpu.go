package compute

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size fork-join pool. The zero value runs everything inline.
type Pool struct {
	workers int
}

// NewPool returns a pool with the given number of workers. Values below 1
// select runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	if p == nil || p.workers < 1 {
		return 1
	}
	return p.workers
}

// ChunkSize returns the length of the chunks Run uses for n items.
func (p *Pool) ChunkSize(n int) int {
	w := p.Workers()
	return (n + w - 1) / w
}

// Run calls fn over [0, n) split into ceil(n/workers)-sized chunks and blocks
// until every chunk has finished. With a single worker fn runs inline.
func (p *Pool) Run(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	w := p.Workers()
	if w < 2 || n < 2 {
		fn(0, n)
		return
	}

	chunkSize := p.ChunkSize(n)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Chunks returns the [start, end) bounds Run would use for n items.
func (p *Pool) Chunks(n int) [][2]int {
	if n <= 0 {
		return nil
	}
	chunkSize := n
	if p.Workers() >= 2 {
		chunkSize = p.ChunkSize(n)
	}
	var out [][2]int
	for start := 0; start < n; start += chunkSize {
		out = append(out, [2]int{start, min(start+chunkSize, n)})
	}
	return out
}
