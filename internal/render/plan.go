package render

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/keagan/videomaker/internal/timeline"
)

const (
	defaultExt   = ".mp4"
	listFileName = "files.txt"
)

// Mode is the post-concat chain selected by the edit state
type Mode int

const (
	ModePlain Mode = iota
	ModeSpeed
	ModeOverlay
	ModeSpeedOverlay
)

// ModeFor picks the chain for a snapshot
func ModeFor(snap timeline.Snapshot) Mode {
	speed := snap.Speed != 0
	overlay := snap.Overlay.IsSet()
	switch {
	case speed && overlay:
		return ModeSpeedOverlay
	case speed:
		return ModeSpeed
	case overlay:
		return ModeOverlay
	}
	return ModePlain
}

// stages lists the steps run after the cuts. The last stage writes the destination.
func (m Mode) stages() []Kind {
	switch m {
	case ModeSpeed:
		return []Kind{KindConcat, KindRetime}
	case ModeOverlay:
		return []Kind{KindConcat, KindOverlay}
	case ModeSpeedOverlay:
		return []Kind{KindConcat, KindRetime, KindOverlay}
	}
	return []Kind{KindConcat}
}

func (m Mode) String() string {
	switch m {
	case ModeSpeed:
		return "speed"
	case ModeOverlay:
		return "overlay"
	case ModeSpeedOverlay:
		return "speed+overlay"
	}
	return "plain"
}

// Plan is the ordered invocation list for one render
type Plan struct {
	Source      string
	Destination string
	WorkDir     string
	Mode        Mode
	Steps       []Invocation
}

// Final returns the step that writes the destination
func (p *Plan) Final() Invocation {
	return p.Steps[len(p.Steps)-1]
}

// Count returns how many steps are of kind k
func (p *Plan) Count(k Kind) int {
	n := 0
	for _, s := range p.Steps {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// PlanOption adjusts how a plan is compiled
type PlanOption func(*planOptions)

type planOptions struct {
	noAudio bool
}

// VideoOnly plans for a source without an audio stream: retime steps only
// rescale video timestamps
func VideoOnly() PlanOption {
	return func(o *planOptions) {
		o.noAudio = true
	}
}

// NewPlan compiles snap into invocations. Cut outputs are named 0..N-1 inside
// workDir, later intermediates continue the numbering, and the last stage
// writes dest directly.
func NewPlan(snap timeline.Snapshot, source, dest, workDir string, opts ...PlanOption) (*Plan, error) {
	if len(snap.Segments) == 0 {
		return nil, ErrEmptyTimeline
	}
	if source == "" {
		return nil, fmt.Errorf("source path is required")
	}
	if dest == "" {
		return nil, fmt.Errorf("destination path is required")
	}
	if workDir == "" {
		return nil, fmt.Errorf("work dir is required")
	}

	var po planOptions
	for _, opt := range opts {
		opt(&po)
	}

	ext := filepath.Ext(dest)
	if ext == "" {
		ext = defaultExt
	}
	name := func(i int) string {
		return filepath.Join(workDir, strconv.Itoa(i)+ext)
	}

	mode := ModeFor(snap)
	plan := &Plan{
		Source:      source,
		Destination: dest,
		WorkDir:     workDir,
		Mode:        mode,
	}

	cuts := make([]string, len(snap.Segments))
	for i, seg := range snap.Segments {
		cuts[i] = name(i)
		plan.add(Invocation{
			Kind:     KindCut,
			Inputs:   []string{source},
			Output:   cuts[i],
			Start:    seg.Start,
			Duration: seg.Duration,
		})
	}

	next := len(cuts)
	working := ""
	stages := mode.stages()
	for k, kind := range stages {
		out := dest
		if k < len(stages)-1 {
			out = name(next)
			next++
		}

		inv := Invocation{Kind: kind, Output: out}
		switch kind {
		case KindConcat:
			inv.Inputs = cuts
			inv.ListFile = filepath.Join(workDir, listFileName)
		case KindRetime:
			inv.Inputs = []string{working}
			inv.PTSScale = 1 / snap.Speed
			inv.Tempo = snap.Speed
			inv.NoAudio = po.noAudio
		case KindOverlay:
			inv.Inputs = []string{working}
			inv.Image = snap.Overlay.Image
			inv.Position = snap.Overlay.Anchor.Position()
		}
		plan.add(inv)
		working = out
	}

	return plan, nil
}

func (p *Plan) add(inv Invocation) {
	inv.Step = len(p.Steps)
	p.Steps = append(p.Steps, inv)
}
