package timeline

import (
	"fmt"
	"time"
)

// SegmentID identifies a segment for the lifetime of a Model. IDs are never reused.
type SegmentID uint64

// Segment is one contiguous slice of source video time
type Segment struct {
	ID       SegmentID
	Start    time.Duration
	Duration time.Duration
}

// End returns the exclusive end of the segment in source time
func (s Segment) End() time.Duration {
	return s.Start + s.Duration
}

// Contains reports whether pos falls in [Start, End)
func (s Segment) Contains(pos time.Duration) bool {
	return pos >= s.Start && pos < s.End()
}

func (s Segment) String() string {
	return fmt.Sprintf("#%d[%v+%v]", s.ID, s.Start, s.Duration)
}

// IndexedSegment pairs a segment with its position in the sequence
type IndexedSegment struct {
	Index   int
	Segment Segment
}
