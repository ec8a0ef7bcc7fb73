package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/keagan/videomaker/internal/render"
	"github.com/keagan/videomaker/pkg/util"
)

// Args translates a render invocation into ffmpeg arguments, without the
// global flags Run prepends
func (e *Executor) Args(inv render.Invocation) ([]string, error) {
	if inv.Output == "" {
		return nil, fmt.Errorf("step %d: output path is required", inv.Step)
	}

	switch inv.Kind {
	case render.KindCut:
		if len(inv.Inputs) != 1 {
			return nil, fmt.Errorf("cut needs exactly one input, got %d", len(inv.Inputs))
		}
		if inv.Duration <= 0 {
			return nil, fmt.Errorf("invalid cut duration %v", inv.Duration)
		}
		args := []string{
			"-ss", util.FormatDuration(inv.Start),
			"-i", inv.Inputs[0],
			"-t", util.FormatDuration(inv.Duration),
		}
		args = append(args, e.videoArgs()...)
		args = append(args, "-c:a", e.encode.AudioCodec)
		return append(args, inv.Output), nil

	case render.KindConcat:
		if len(inv.Inputs) == 0 {
			return nil, fmt.Errorf("no input files provided")
		}
		if inv.ListFile == "" {
			return nil, fmt.Errorf("concat list file is required")
		}
		return []string{
			"-f", "concat",
			"-safe", "0",
			"-i", inv.ListFile,
			"-c", "copy",
			inv.Output,
		}, nil

	case render.KindRetime:
		if len(inv.Inputs) != 1 {
			return nil, fmt.Errorf("retime needs exactly one input, got %d", len(inv.Inputs))
		}
		if inv.PTSScale <= 0 || inv.Tempo <= 0 {
			return nil, fmt.Errorf("invalid retime factors pts=%g tempo=%g", inv.PTSScale, inv.Tempo)
		}
		fb := NewFilterBuilder().SetPTS("0:v", inv.PTSScale, "v")
		if !inv.NoAudio {
			fb.ATempo("0:a", inv.Tempo, "a")
		}
		args := []string{
			"-i", inv.Inputs[0],
			"-filter_complex", fb.Build(),
			"-map", "[v]",
		}
		if inv.NoAudio {
			args = append(args, e.videoArgs()...)
			args = append(args, "-an")
			return append(args, inv.Output), nil
		}
		args = append(args, "-map", "[a]")
		args = append(args, e.videoArgs()...)
		args = append(args, "-c:a", e.encode.AudioCodec)
		return append(args, inv.Output), nil

	case render.KindOverlay:
		if len(inv.Inputs) != 1 {
			return nil, fmt.Errorf("overlay needs exactly one input, got %d", len(inv.Inputs))
		}
		if inv.Image == "" || inv.Position == "" {
			return nil, fmt.Errorf("overlay image and position are required")
		}
		graph := NewFilterBuilder().
			Overlay("0:v", "1:v", inv.Position, "").
			Build()
		args := []string{
			"-i", inv.Inputs[0],
			"-i", inv.Image,
			"-filter_complex", graph,
		}
		args = append(args, e.videoArgs()...)
		args = append(args, "-c:a", "copy")
		return append(args, inv.Output), nil
	}

	return nil, fmt.Errorf("unsupported step kind %q", inv.Kind)
}

func (e *Executor) videoArgs() []string {
	return []string{
		"-c:v", e.encode.VideoCodec,
		"-preset", e.encode.Preset,
		"-crf", strconv.Itoa(e.encode.CRF),
	}
}

// Invoke runs one render step. Concat steps write their list file first.
func (e *Executor) Invoke(ctx context.Context, inv render.Invocation) error {
	args, err := e.Args(inv)
	if err != nil {
		return err
	}

	if inv.Kind == render.KindConcat {
		if err := os.WriteFile(inv.ListFile, []byte(inv.ConcatList()+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write concat list: %w", err)
		}
	}

	e.logger.Info().
		Int("step", inv.Step).
		Str("kind", string(inv.Kind)).
		Str("output", inv.Output).
		Msg("running ffmpeg step")

	return e.Run(ctx, RunOptions{
		Args:            args,
		ProgressHandler: e.progress,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Int("step", inv.Step).Msg("output")
		},
	})
}

// StepRunner adapts an Executor to render.Runner
type StepRunner struct {
	exec *Executor
}

// StepRunner returns a render.Runner backed by e
func (e *Executor) StepRunner() *StepRunner {
	return &StepRunner{exec: e}
}

func (s *StepRunner) Run(ctx context.Context, inv render.Invocation) error {
	return s.exec.Invoke(ctx, inv)
}
