package telemetry

import "time"

// Point is one accepted, scaled position sample. Immutable once appended to
// a Result.
type Point struct {
	Lat   float64
	Lon   float64
	Alt   float64
	Time  time.Time
	Speed float64
}

// Stats counts sample dispositions for one build run. Counters only ever
// increment.
type Stats struct {
	OK         int
	BadFix     int
	BadFixSkip int
	Empty      int
	BadScale   int
}

// Total is the number of samples that reached a disposition. A sample
// counted in BadFixSkip is also counted in BadFix, matching the original
// per-counter semantics.
func (s Stats) Total() int {
	return s.OK + s.BadFix + s.BadFixSkip + s.Empty + s.BadScale
}

// Add folds another run's counters in. Used by callers aggregating
// independent per-file runs.
func (s *Stats) Add(o Stats) {
	s.OK += o.OK
	s.BadFix += o.BadFix
	s.BadFixSkip += o.BadFixSkip
	s.Empty += o.Empty
	s.BadScale += o.BadScale
}
