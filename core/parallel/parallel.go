// Package parallel splits row-wise dense work across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the number of rows below which work stays on the
// calling goroutine. Small problems lose more to goroutine startup than
// they gain.
const DefaultThreshold = 256

// Rows divides [0, n) into contiguous chunks, one per CPU core, and runs
// fn on each chunk concurrently. fn must only write to rows in [start, end).
func Rows(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
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

// RowsWithThreshold behaves like Rows when n exceeds threshold and calls
// fn(0, n) sequentially otherwise. A non-positive threshold uses
// DefaultThreshold.
func RowsWithThreshold(n, threshold int, fn func(start, end int)) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if n <= threshold {
		if n > 0 {
			fn(0, n)
		}
		return
	}
	Rows(n, fn)
}
