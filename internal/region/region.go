// Package region provides byte-offset regions over a text buffer and the
// adjustment rules that keep them valid while the buffer changes underneath.
//
// A Region is a half-open interval [Begin, End). The same type doubles as an
// edit delta: Begin < End describes an insertion of End-Begin bytes at Begin,
// Begin > End describes a deletion of Begin-End bytes at Begin.
package region

import (
	"fmt"
	"sort"
)

// Region represents a byte range in the buffer.
// Begin is inclusive, End is exclusive: [Begin, End).
type Region struct {
	Begin int
	End   int
}

// New creates a new Region from begin and end offsets.
func New(begin, end int) Region {
	return Region{Begin: begin, End: end}
}

// Point returns an empty region at offset p.
func Point(p int) Region {
	return Region{Begin: p, End: p}
}

// String returns a human-readable representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("[%d:%d)", r.Begin, r.End)
}

// Size returns the absolute length of the region.
func (r Region) Size() int {
	if r.End < r.Begin {
		return r.Begin - r.End
	}
	return r.End - r.Begin
}

// Empty reports whether the region has zero length.
func (r Region) Empty() bool {
	return r.Begin == r.End
}

// Normalize returns the region with Begin <= End.
func (r Region) Normalize() Region {
	if r.End < r.Begin {
		return Region{Begin: r.End, End: r.Begin}
	}
	return r
}

// Contains reports whether offset p lies within [Begin, End).
func (r Region) Contains(p int) bool {
	return p >= r.Begin && p < r.End
}

// Covers reports whether other lies entirely within r.
func (r Region) Covers(other Region) bool {
	return other.Begin >= r.Begin && other.End <= r.End
}

// Intersects reports whether the two regions share at least one byte, or
// whether an empty region sits inside the other.
func (r Region) Intersects(other Region) bool {
	if r.Empty() {
		return other.Begin <= r.Begin && r.Begin <= other.End
	}
	if other.Empty() {
		return r.Begin <= other.Begin && other.Begin <= r.End
	}
	return r.Begin < other.End && other.Begin < r.End
}

// Shift returns a new region moved by delta bytes.
func (r Region) Shift(delta int) Region {
	return Region{Begin: r.Begin + delta, End: r.End + delta}
}

// Less orders regions by Begin, then End.
func (r Region) Less(other Region) bool {
	if r.Begin != other.Begin {
		return r.Begin < other.Begin
	}
	return r.End < other.End
}

// Sort sorts regions in ascending document order.
func Sort(rs []Region) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Less(rs[j]) })
}

// SortDescending sorts regions so the highest offset comes first.
func SortDescending(rs []Region) {
	sort.Slice(rs, func(i, j int) bool { return rs[j].Less(rs[i]) })
}

// Dedup removes duplicates from a sorted slice in place.
func Dedup(rs []Region) []Region {
	if len(rs) < 2 {
		return rs
	}
	out := rs[:1]
	for _, r := range rs[1:] {
		if r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}
