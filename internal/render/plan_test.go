package render

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/keagan/videomaker/internal/overlays"
	"github.com/keagan/videomaker/internal/timeline"
)

const ms = time.Millisecond

// threeSegments builds the 1000ms timeline split at 400 and 700
func threeSegments(t *testing.T) *timeline.Model {
	t.Helper()
	m, err := timeline.New(1000*ms, 1000)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []time.Duration{400 * ms, 700 * ms} {
		if _, err := m.SplitAt(p); err != nil {
			t.Fatalf("split at %v: %v", p, err)
		}
	}
	return m
}

func kinds(p *Plan) []Kind {
	out := make([]Kind, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Kind
	}
	return out
}

func TestPlanSpeedOnly(t *testing.T) {
	m := threeSegments(t)
	if _, err := m.SetSpeed(1.5); err != nil {
		t.Fatal(err)
	}

	plan, err := NewPlan(m.Snapshot(), "in.mp4", "/out/final.mp4", "/work")
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	want := []Kind{KindCut, KindCut, KindCut, KindConcat, KindRetime}
	if got := kinds(plan); !reflect.DeepEqual(got, want) {
		t.Fatalf("got kinds %v, want %v", got, want)
	}
	if plan.Mode != ModeSpeed {
		t.Errorf("expected speed mode, got %v", plan.Mode)
	}

	cuts := []struct {
		start, dur time.Duration
	}{{0, 400 * ms}, {400 * ms, 300 * ms}, {700 * ms, 300 * ms}}
	for i, c := range cuts {
		step := plan.Steps[i]
		if step.Start != c.start || step.Duration != c.dur {
			t.Errorf("cut %d: got %v+%v, want %v+%v", i, step.Start, step.Duration, c.start, c.dur)
		}
		if step.Output != filepath.Join("/work", []string{"0.mp4", "1.mp4", "2.mp4"}[i]) {
			t.Errorf("cut %d output %q", i, step.Output)
		}
		if step.Inputs[0] != "in.mp4" {
			t.Errorf("cut %d input %q", i, step.Inputs[0])
		}
	}

	concat := plan.Steps[3]
	if !reflect.DeepEqual(concat.Inputs, []string{"/work/0.mp4", "/work/1.mp4", "/work/2.mp4"}) {
		t.Errorf("concat inputs %v", concat.Inputs)
	}
	if concat.Output != "/work/3.mp4" || concat.ListFile != "/work/files.txt" {
		t.Errorf("concat output %q list %q", concat.Output, concat.ListFile)
	}

	retime := plan.Steps[4]
	if retime.Tempo != 1.5 || retime.PTSScale != 1/1.5 {
		t.Errorf("retime tempo %v pts %v", retime.Tempo, retime.PTSScale)
	}
	if retime.Inputs[0] != concat.Output {
		t.Errorf("retime reads %q, want concat output", retime.Inputs[0])
	}
	if final := plan.Final(); final.Output != "/out/final.mp4" || final.Kind != KindRetime {
		t.Errorf("final step %v", final)
	}
	if plan.Count(KindOverlay) != 0 {
		t.Error("unexpected overlay step")
	}
}

func TestPlanVideoOnlyRetime(t *testing.T) {
	m := threeSegments(t)
	if _, err := m.SetSpeed(2); err != nil {
		t.Fatal(err)
	}

	plan, err := NewPlan(m.Snapshot(), "in.mp4", "/out/final.mp4", "/work", VideoOnly())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	retime := plan.Final()
	if retime.Kind != KindRetime || !retime.NoAudio {
		t.Errorf("expected video-only retime, got %+v", retime)
	}
	for _, step := range plan.Steps[:len(plan.Steps)-1] {
		if step.NoAudio {
			t.Errorf("step %d %v should keep audio handling unchanged", step.Step, step.Kind)
		}
	}

	plan, err = NewPlan(m.Snapshot(), "in.mp4", "/out/final.mp4", "/work")
	if err != nil {
		t.Fatal(err)
	}
	if plan.Final().NoAudio {
		t.Error("retime should carry audio by default")
	}
}

func TestPlanModes(t *testing.T) {
	tests := []struct {
		name    string
		speed   float64
		overlay overlays.Overlay
		mode    Mode
		tail    []Kind
		outputs []string
	}{
		{
			name:    "plain",
			mode:    ModePlain,
			tail:    []Kind{KindConcat},
			outputs: []string{"/out/final.mp4"},
		},
		{
			name:    "overlay only",
			overlay: overlays.Overlay{Image: "logo.png", Anchor: overlays.RightBottom},
			mode:    ModeOverlay,
			tail:    []Kind{KindConcat, KindOverlay},
			outputs: []string{"/work/3.mp4", "/out/final.mp4"},
		},
		{
			name:    "speed and overlay",
			speed:   2,
			overlay: overlays.Overlay{Image: "logo.png", Anchor: overlays.Center},
			mode:    ModeSpeedOverlay,
			tail:    []Kind{KindConcat, KindRetime, KindOverlay},
			outputs: []string{"/work/3.mp4", "/work/4.mp4", "/out/final.mp4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := threeSegments(t)
			m.SetSpeed(tt.speed)
			m.SetOverlay(tt.overlay)

			plan, err := NewPlan(m.Snapshot(), "in.mp4", "/out/final.mp4", "/work")
			if err != nil {
				t.Fatal(err)
			}
			if plan.Mode != tt.mode {
				t.Errorf("mode %v, want %v", plan.Mode, tt.mode)
			}

			tail := plan.Steps[3:]
			for i, step := range tail {
				if step.Kind != tt.tail[i] {
					t.Errorf("step %d kind %s, want %s", step.Step, step.Kind, tt.tail[i])
				}
				if step.Output != tt.outputs[i] {
					t.Errorf("step %d output %q, want %q", step.Step, step.Output, tt.outputs[i])
				}
				if i > 0 && step.Inputs[0] != tail[i-1].Output {
					t.Errorf("step %d does not chain from previous output", step.Step)
				}
			}
			if len(tail) != len(tt.tail) {
				t.Fatalf("got %d trailing steps, want %d", len(tail), len(tt.tail))
			}
		})
	}
}

func TestPlanOverlayParameters(t *testing.T) {
	m := threeSegments(t)
	m.SetOverlay(overlays.Overlay{Image: "/img/logo.png", Anchor: overlays.Top})

	plan, err := NewPlan(m.Snapshot(), "in.mp4", "out.mkv", "/work")
	if err != nil {
		t.Fatal(err)
	}
	final := plan.Final()
	if final.Image != "/img/logo.png" || final.Position != "main_w/2-overlay_w/2:0" {
		t.Errorf("overlay step %+v", final)
	}
	if plan.Steps[0].Output != "/work/0.mkv" {
		t.Errorf("intermediates should use the destination extension, got %q", plan.Steps[0].Output)
	}
}

func TestPlanFollowsSequenceOrder(t *testing.T) {
	m := threeSegments(t)
	segs := m.Segments()
	m.Reposition(segs[2].ID, 0)
	m.DeleteSelected([]timeline.SegmentID{segs[1].ID})

	plan, err := NewPlan(m.Snapshot(), "in.mp4", "out", "/work")
	if err != nil {
		t.Fatal(err)
	}
	if plan.Count(KindCut) != 2 {
		t.Fatalf("expected 2 cuts, got %d", plan.Count(KindCut))
	}
	if plan.Steps[0].Start != 700*ms || plan.Steps[1].Start != 0 {
		t.Errorf("cuts out of sequence order: %v, %v", plan.Steps[0], plan.Steps[1])
	}
	if plan.Steps[0].Output != "/work/0.mp4" {
		t.Errorf("default extension not applied: %q", plan.Steps[0].Output)
	}
}

func TestPlanErrors(t *testing.T) {
	m := threeSegments(t)

	empty := m.Snapshot()
	empty.Segments = nil
	if _, err := NewPlan(empty, "in.mp4", "out.mp4", "/work"); !errors.Is(err, ErrEmptyTimeline) {
		t.Errorf("expected ErrEmptyTimeline, got %v", err)
	}
	if _, err := NewPlan(m.Snapshot(), "", "out.mp4", "/work"); err == nil {
		t.Error("expected error for missing source")
	}
	if _, err := NewPlan(m.Snapshot(), "in.mp4", "", "/work"); err == nil {
		t.Error("expected error for missing destination")
	}
}

func TestConcatList(t *testing.T) {
	inv := Invocation{
		Kind:   KindConcat,
		Inputs: []string{"/work/0.mp4", "/work/it's.mp4"},
	}
	want := "file '/work/0.mp4'\nfile '/work/it'\\''s.mp4'"
	if got := inv.ConcatList(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
