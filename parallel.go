package glance

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelize partitions the half-open row range [start, stop) into
// contiguous bands, one per worker, with band sizes balanced within one row
// of each other, and runs fn over each band on its own goroutine. It returns
// only after every band completed.
//
// Every filter in the library funnels its work through this function. The
// contract keeping it lock-free: fn reads only from the input buffer and
// writes only to rows [lo, hi) of the output buffer, so the write regions of
// the bands are statically disjoint and the assembled result is identical
// for any worker count.
func parallelize(workers, start, stop int, fn func(lo, hi int)) {
	rows := stop - start
	if rows <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > rows {
		workers = rows
	}

	base := rows / workers
	rem := rows % workers

	var g errgroup.Group
	lo := start
	for i := 0; i < workers; i++ {
		hi := lo + base
		if i < rem {
			hi++
		}
		band := [2]int{lo, hi}
		g.Go(func() error {
			fn(band[0], band[1])
			return nil
		})
		lo = hi
	}
	// The workers never return an error; Wait is used purely as a join.
	_ = g.Wait()
}
