package timeline

import "errors"

var (
	ErrInvalidDuration     = errors.New("timeline: duration must be positive")
	ErrNoSegmentAtPosition = errors.New("timeline: no segment at position")
	ErrAlreadySplit        = errors.New("timeline: position is already a segment boundary")
	ErrUnknownSegment      = errors.New("timeline: unknown segment")
	ErrOverlap             = errors.New("timeline: move rejected by collision rule")
	ErrInvalidIndex        = errors.New("timeline: index out of range")
	ErrInvalidSpeed        = errors.New("timeline: unsupported speed factor")
	ErrEmptySelection      = errors.New("timeline: no segments selected")
	ErrStale               = errors.New("timeline: edit does not match current sequence")
)
