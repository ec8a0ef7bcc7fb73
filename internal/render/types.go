// Package render compiles a timeline snapshot into an ordered list of
// transcode invocations and runs them in sequence inside a scoped work dir.
// Invocations are structured descriptors; turning them into process
// arguments is the Runner's job.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDestinationExists = errors.New("render: destination already exists")
	ErrEmptyTimeline     = errors.New("render: timeline has no segments")
)

// Kind is the operation an invocation performs
type Kind string

const (
	KindCut     Kind = "cut"
	KindConcat  Kind = "concat"
	KindRetime  Kind = "retime"
	KindOverlay Kind = "overlay"
)

// Invocation is one external tool run. Only the fields of its Kind are set.
type Invocation struct {
	Step   int
	Kind   Kind
	Inputs []string
	Output string

	// cut
	Start    time.Duration
	Duration time.Duration

	// concat
	ListFile string

	// retime
	PTSScale float64
	Tempo    float64
	NoAudio  bool

	// overlay
	Image    string
	Position string
}

// ConcatList returns the concat demuxer list for the inputs, one
// file '<path>' entry per line
func (inv Invocation) ConcatList() string {
	lines := make([]string, len(inv.Inputs))
	for i, in := range inv.Inputs {
		lines[i] = "file '" + strings.ReplaceAll(in, "'", `'\''`) + "'"
	}
	return strings.Join(lines, "\n")
}

func (inv Invocation) String() string {
	switch inv.Kind {
	case KindCut:
		return fmt.Sprintf("cut %v+%v -> %s", inv.Start, inv.Duration, inv.Output)
	case KindConcat:
		return fmt.Sprintf("concat %d files -> %s", len(inv.Inputs), inv.Output)
	case KindRetime:
		if inv.NoAudio {
			return fmt.Sprintf("retime pts*%g (video only) -> %s", inv.PTSScale, inv.Output)
		}
		return fmt.Sprintf("retime pts*%g atempo=%g -> %s", inv.PTSScale, inv.Tempo, inv.Output)
	case KindOverlay:
		return fmt.Sprintf("overlay %s at %s -> %s", inv.Image, inv.Position, inv.Output)
	}
	return fmt.Sprintf("%s -> %s", inv.Kind, inv.Output)
}

// StepError reports the plan step whose invocation failed
type StepError struct {
	Step  int
	Kind  Kind
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("render step %d (%s) failed: %v", e.Step, e.Kind, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}
