// Package timegrid provides the time-window and index primitives consumed by
// the resolver: explicit strictly-increasing timestamp lists, evenly spaced
// indices, and named scenario windows restricting how much of a longer
// historical record feeds the model.
//
// All construction failures are immediate; values are never coerced or
// truncated.
//
// Errors:
//
//	ErrEmpty          - no timestamps supplied.
//	ErrNotIncreasing  - explicit timestamps are not strictly increasing.
//	ErrBadStep        - step is zero or negative.
//	ErrBadCount       - count is zero or negative.
//	ErrWindowOrder    - window stop is not strictly after start.
//	ErrWindowAligned  - window endpoint is not a whole-year boundary.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmpty indicates an explicit index was constructed without timestamps.
	ErrEmpty = errors.New("timegrid: no timestamps")

	// ErrNotIncreasing indicates explicit timestamps are not strictly increasing.
	ErrNotIncreasing = errors.New("timegrid: timestamps must be strictly increasing")

	// ErrBadStep indicates a non-positive step duration.
	ErrBadStep = errors.New("timegrid: step must be positive")

	// ErrBadCount indicates a non-positive point count.
	ErrBadCount = errors.New("timegrid: count must be positive")

	// ErrWindowOrder indicates a window whose stop is not strictly after its start.
	ErrWindowOrder = errors.New("timegrid: window stop must be after start")

	// ErrWindowAligned indicates a window endpoint off a whole-year boundary.
	ErrWindowAligned = errors.New("timegrid: window endpoints must align to whole years")
)

// Points is an explicit, strictly increasing list of timestamps.
type Points struct {
	times []time.Time
}

// NewPoints constructs an explicit index, rejecting empty or non-increasing
// input. The slice is copied.
func NewPoints(times []time.Time) (Points, error) {
	if len(times) == 0 {
		return Points{}, ErrEmpty
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return Points{}, fmt.Errorf("%w: index %d (%s) not after index %d (%s)",
				ErrNotIncreasing, i, times[i], i-1, times[i-1])
		}
	}
	copied := make([]time.Time, len(times))
	copy(copied, times)
	return Points{times: copied}, nil
}

// Len returns the number of timestamps.
func (p Points) Len() int { return len(p.times) }

// At returns the timestamp at index i.
func (p Points) At(i int) time.Time { return p.times[i] }

// First returns the earliest timestamp.
func (p Points) First() time.Time { return p.times[0] }

// Last returns the latest timestamp.
func (p Points) Last() time.Time { return p.times[len(p.times)-1] }

// Times returns a copy of the underlying timestamps.
func (p Points) Times() []time.Time {
	out := make([]time.Time, len(p.times))
	copy(out, p.times)
	return out
}

// Regular is an evenly spaced index described by (start, step, count).
type Regular struct {
	start time.Time
	step  time.Duration
	count int
}

// NewRegular constructs an evenly spaced index, rejecting non-positive steps
// and counts.
func NewRegular(start time.Time, step time.Duration, count int) (Regular, error) {
	if step <= 0 {
		return Regular{}, fmt.Errorf("%w: got %s", ErrBadStep, step)
	}
	if count <= 0 {
		return Regular{}, fmt.Errorf("%w: got %d", ErrBadCount, count)
	}
	return Regular{start: start, step: step, count: count}, nil
}

// Len returns the number of points.
func (r Regular) Len() int { return r.count }

// Start returns the first point.
func (r Regular) Start() time.Time { return r.start }

// Step returns the spacing between points.
func (r Regular) Step() time.Duration { return r.step }

// At returns the point at index i, spaced i steps after the start.
func (r Regular) At(i int) time.Time {
	return r.start.Add(time.Duration(i) * r.step)
}

// End returns the instant one step past the final point, the half-open upper
// bound of the index.
func (r Regular) End() time.Time {
	return r.start.Add(time.Duration(r.count) * r.step)
}

// Times expands the index into explicit timestamps.
func (r Regular) Times() []time.Time {
	out := make([]time.Time, r.count)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// Window is a named scenario window (start, stop) restricting how much of a
// longer historical record feeds the model. Both endpoints must sit on a
// whole-year boundary and stop must be strictly after start.
type Window struct {
	name  string
	start time.Time
	stop  time.Time
}

// NewWindow constructs a scenario window, validating alignment and ordering.
func NewWindow(name string, start, stop time.Time) (Window, error) {
	if !isYearBoundary(start) {
		return Window{}, fmt.Errorf("%w: start %s", ErrWindowAligned, start)
	}
	if !isYearBoundary(stop) {
		return Window{}, fmt.Errorf("%w: stop %s", ErrWindowAligned, stop)
	}
	if !stop.After(start) {
		return Window{}, fmt.Errorf("%w: start %s, stop %s", ErrWindowOrder, start, stop)
	}
	return Window{name: name, start: start, stop: stop}, nil
}

// Name returns the window's name.
func (w Window) Name() string { return w.name }

// Start returns the inclusive lower bound.
func (w Window) Start() time.Time { return w.start }

// Stop returns the exclusive upper bound.
func (w Window) Stop() time.Time { return w.stop }

// Years returns the number of whole years the window spans.
func (w Window) Years() int {
	return w.stop.UTC().Year() - w.start.UTC().Year()
}

// Contains reports whether t falls inside the half-open window [start, stop).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.start) && t.Before(w.stop)
}

func isYearBoundary(t time.Time) bool {
	u := t.UTC()
	return u.Month() == time.January && u.Day() == 1 &&
		u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}
