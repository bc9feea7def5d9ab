package imgproc

import (
	"runtime"
	"sync"
)

// parallelRows splits [0,h) into contiguous chunks and runs fn on each chunk
// from its own goroutine. Each filter writes a fresh output buffer and only
// reads its input buffer, so no locking is needed.
func parallelRows(h, workers int, fn func(y0, y1 int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		fn(0, h)
		return
	}
	chunk := (h + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += chunk {
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		go func(a, b int) {
			defer wg.Done()
			fn(a, b)
		}(y0, y1)
	}
	wg.Wait()
}
