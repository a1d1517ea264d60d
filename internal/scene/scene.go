// Package scene tracks the on-disk lifecycle of a Job's shared scene file:
// unknown, downloaded-but-unprocessed, or optimized and ready to drive
// renderer dispatch.
package scene

import (
	"fmt"
	"time"
)

// Variant is the three-way lifecycle tag a scene file can hold. It replaces
// the nested-optional representation of the reference implementation with a
// flat enum, per the reference org's own preference for small value types
// over generic wrappers.
type Variant int

const (
	// None means no scene file is known for this Job yet (either never
	// requested, or the last request failed).
	None Variant = iota
	// Downloaded means the scene file is on disk but has not yet been run
	// through the optimizer side-car script.
	Downloaded
	// Optimized means the side-car script ran successfully; the scene may
	// drive renderer dispatch.
	Optimized
)

func (v Variant) String() string {
	switch v {
	case None:
		return "none"
	case Downloaded:
		return "downloaded"
	case Optimized:
		return "optimized"
	default:
		return fmt.Sprintf("scene.Variant(%d)", int(v))
	}
}

// File holds state about a scene file shared by every Task of one Job:
// its on-disk path, access history, and a running tally of rendered-frame
// durations used to estimate remaining render time.
type File struct {
	Path           string
	Variant        Variant
	CreatedAt      time.Time
	LastAccessAt   time.Time
	FramesRendered int
	durations      []time.Duration
}

// New returns a File in the Downloaded variant, stamped with now for both
// CreatedAt and LastAccessAt.
func New(path string, now time.Time) *File {
	return &File{
		Path:         path,
		Variant:      Downloaded,
		CreatedAt:    now,
		LastAccessAt: now,
	}
}

// RecordFrame appends the elapsed time since the last access to the
// duration history, advances LastAccessAt to now, and increments
// FramesRendered. Call this once per finished frame.
func (f *File) RecordFrame(now time.Time) {
	f.durations = append(f.durations, now.Sub(f.LastAccessAt))
	f.LastAccessAt = now
	f.FramesRendered++
}

// Age returns the elapsed time since the scene file was first seen.
func (f *File) Age(now time.Time) time.Duration {
	return now.Sub(f.CreatedAt)
}

// SinceLastAccess returns the elapsed time since the scene file was last
// touched by a finished frame.
func (f *File) SinceLastAccess(now time.Time) time.Duration {
	return now.Sub(f.LastAccessAt)
}

// IsPastGrace reports whether more than d has elapsed since LastAccessAt.
func (f *File) IsPastGrace(now time.Time, d time.Duration) bool {
	return f.SinceLastAccess(now) > d
}

// LastFrameDuration returns the duration of the most recently recorded
// frame, and false if no frame has been recorded yet.
func (f *File) LastFrameDuration() (time.Duration, bool) {
	if len(f.durations) == 0 {
		return 0, false
	}
	return f.durations[len(f.durations)-1], true
}

// MeanDuration returns the arithmetic mean of all recorded frame durations.
func (f *File) MeanDuration() time.Duration {
	if len(f.durations) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range f.durations {
		sum += d
	}
	return sum / time.Duration(len(f.durations))
}

// MedianDuration returns the median of all recorded frame durations.
func (f *File) MedianDuration() time.Duration {
	if len(f.durations) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(f.durations))
	copy(sorted, f.durations)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted[len(sorted)/2]
}

// FormatDuration renders d at the coarsest granularity that still has a
// nonzero component: weeks+days+hours, days+hours+minutes, hours:min:sec,
// min:sec.millis, or sec.millis followed by "s". go-humanize has no
// week-granularity duration formatter, so this keeps the reference implementation's own threshold logic translated
// to Go rather than reaching for a library that doesn't cover the case.
func FormatDuration(d time.Duration) string {
	weeks := int64(d / (7 * 24 * time.Hour))
	d -= time.Duration(weeks) * 7 * 24 * time.Hour
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	mins := int64(d / time.Minute)
	d -= time.Duration(mins) * time.Minute
	secs := int64(d / time.Second)
	d -= time.Duration(secs) * time.Second
	millis := int64(d / time.Millisecond)

	switch {
	case weeks == 0 && days == 0 && hours == 0 && mins == 0:
		return fmt.Sprintf("%d.%ds", secs, millis)
	case weeks == 0 && days == 0 && hours == 0:
		return fmt.Sprintf("%d:%d.%d", mins, secs, millis)
	case weeks == 0 && days == 0:
		return fmt.Sprintf("%d:%d:%d", hours, mins, secs)
	case weeks == 0:
		return fmt.Sprintf("%d days %d hours %d min", days, hours, mins)
	default:
		return fmt.Sprintf("%d weeks %d days %d hours", weeks, days, hours)
	}
}
