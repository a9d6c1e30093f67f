package tilematch

import "sync/atomic"

// ProgressTracker is a progress channel between the goroutine running Run
// and one reader. The writer is Func; the reader is Snapshot.
type ProgressTracker struct {
	done  atomic.Int64
	total atomic.Int64
}

// Func returns a ProgressFunc that records into the tracker.
func (t *ProgressTracker) Func() ProgressFunc {
	return func(done, total int) {
		t.total.Store(int64(total))
		t.done.Store(int64(done))
	}
}

// Snapshot returns the last recorded counters.
func (t *ProgressTracker) Snapshot() (done, total int) {
	return int(t.done.Load()), int(t.total.Load())
}

// Fraction returns done/total, or 0 before the first update.
func (t *ProgressTracker) Fraction() float64 {
	done, total := t.Snapshot()
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total)
}
