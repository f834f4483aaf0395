package dispatching

import (
	"sync"
	"time"
)

// Summary aggregates the results of a run.
type Summary struct {
	RunID       string
	Seen        int
	Transferred int
	Planned     int
	Skipped     int
	Failed      int
	Warnings    int
	Bytes       int64
	SkipReasons map[string]int
	// Problems holds every failed result and every transfer with a warning.
	Problems    []Result
	Interrupted bool
	Elapsed     time.Duration
}

// Stats is a Summary safe for concurrent updates.
type Stats struct {
	mu      sync.Mutex
	summary Summary
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{summary: Summary{SkipReasons: make(map[string]int)}}
}

// Add folds one result into the totals.
func (s *Stats) Add(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summary.Seen++
	switch r.Outcome {
	case Transferred:
		s.summary.Transferred++
		s.summary.Bytes += r.Bytes
		if r.Warning() {
			s.summary.Warnings++
			s.summary.Problems = append(s.summary.Problems, r)
		}
	case Planned:
		s.summary.Planned++
	case Failed:
		s.summary.Failed++
		s.summary.Problems = append(s.summary.Problems, r)
	default:
		s.summary.Skipped++
		s.summary.SkipReasons[r.Reason]++
	}
}

// Snapshot returns a deep copy of the current totals.
func (s *Stats) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.summary
	out.SkipReasons = make(map[string]int, len(s.summary.SkipReasons))
	for k, v := range s.summary.SkipReasons {
		out.SkipReasons[k] = v
	}
	out.Problems = append([]Result(nil), s.summary.Problems...)
	return out
}

func (s *Stats) setRunID(id string) {
	s.mu.Lock()
	s.summary.RunID = id
	s.mu.Unlock()
}
