package monitor

import (
	"sync"
	"time"
)

// runLog keeps the start times of the most recent ticker runs.
type runLog struct {
	size  int
	times []time.Time
	mu    sync.Mutex
}

func newRunLog(size int) *runLog {
	return &runLog{size: size, times: make([]time.Time, 0, size)}
}

func (l *runLog) add(t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Wall clock only, so gaps across system sleep are measured correctly.
	t = t.Round(0)

	if len(l.times) >= l.size {
		l.times = l.times[1:]
	}
	l.times = append(l.times, t)
}

// last returns the latest run, or the zero time before the first one.
func (l *runLog) last() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.times) == 0 {
		return time.Time{}
	}
	return l.times[len(l.times)-1]
}

// streak counts the runs, newest first, that followed each other at most
// interval+1s apart.
func (l *runLog) streak(interval time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.times) == 0 {
		return 0
	}

	n := 1
	for i := len(l.times) - 1; i > 0; i-- {
		if l.times[i].Sub(l.times[i-1]) > interval+time.Second {
			break
		}
		n++
	}
	return n
}
