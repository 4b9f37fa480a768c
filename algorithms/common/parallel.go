package common

import (
	"runtime"
	"sync"
)

// WorkerCount picks how many goroutines to use for n independent jobs.
// A positive requested value is honoured (capped at n); otherwise the count
// follows the available CPUs and the workload size.
func WorkerCount(n, requested int) int {
	if n <= 0 {
		return 0
	}
	if requested > 0 {
		return min(requested, n)
	}

	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if n < 100 {
		return max(1, min(numCPU/2, n))
	}

	// For medium workloads, use most CPUs
	if n < 1000 {
		return max(1, min(numCPU, 8))
	}

	return max(1, numCPU)
}

// ParallelFor calls fn(i) for every i in [0, n) using the given number of
// workers and returns once all calls have finished. fn must only write state
// owned by index i.
func ParallelFor(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers = WorkerCount(n, workers)

	if workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	wg.Wait()
}
