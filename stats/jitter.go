package stats

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Jitter keeps a rolling window of send intervals. The summary tells whether
// the output cadence is holding: on a healthy bridge the mean sits at the
// frame period and the spread stays within a couple of milliseconds.
type Jitter struct {
	mu        sync.Mutex
	intervals []float64 //milliseconds, ring buffer
	next      int
	full      bool
}

// JitterSummary is a snapshot of the interval window.
type JitterSummary struct {
	Samples  int     `json:"samples"`
	MeanMs   float64 `json:"meanMs"`
	StdDevMs float64 `json:"stdDevMs"`
	MaxMs    float64 `json:"maxMs"`
}

// NewJitter returns a Jitter holding the last window intervals.
func NewJitter(window int) *Jitter {
	if window <= 0 {
		window = 256
	}
	return &Jitter{intervals: make([]float64, window)}
}

// Record adds one interval between consecutive sends.
func (j *Jitter) Record(interval time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.intervals[j.next] = float64(interval) / float64(time.Millisecond)
	j.next++
	if j.next == len(j.intervals) {
		j.next = 0
		j.full = true
	}
}

// Summary returns mean, standard deviation and maximum over the window.
func (j *Jitter) Summary() JitterSummary {
	j.mu.Lock()
	n := j.next
	if j.full {
		n = len(j.intervals)
	}
	xs := make([]float64, n)
	copy(xs, j.intervals[:n])
	j.mu.Unlock()

	if n == 0 {
		return JitterSummary{}
	}
	s := JitterSummary{
		Samples: n,
		MeanMs:  stat.Mean(xs, nil),
	}
	if n > 1 {
		s.StdDevMs = stat.StdDev(xs, nil)
	}
	for _, x := range xs {
		if x > s.MaxMs {
			s.MaxMs = x
		}
	}
	return s
}
