package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keagan/videomaker/internal/timeline"
	"github.com/keagan/videomaker/pkg/util"
	"github.com/rs/zerolog"
)

// Runner executes a single invocation. It must return a non-nil error when
// the external tool exits with a non-zero status.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// Result summarizes a finished render
type Result struct {
	Plan    *Plan
	Elapsed time.Duration
}

// Renderer runs plans one step at a time inside a temporary work dir that is
// removed on every exit path
type Renderer struct {
	logger  zerolog.Logger
	runner  Runner
	tempDir string
}

// NewRenderer creates a renderer. tempDir is the parent for work dirs; "" uses the OS default.
func NewRenderer(logger zerolog.Logger, runner Runner, tempDir string) *Renderer {
	return &Renderer{
		logger:  logger.With().Str("component", "renderer").Logger(),
		runner:  runner,
		tempDir: tempDir,
	}
}

// Render plans snap and executes it, writing dest. dest must not exist.
// On failure the remaining steps are skipped and no partial destination is left behind.
func (r *Renderer) Render(ctx context.Context, snap timeline.Snapshot, source, dest string, opts ...PlanOption) (*Result, error) {
	if util.FileExists(dest) {
		return nil, fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	}

	if r.tempDir != "" {
		if err := util.EnsureDir(r.tempDir); err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
	}
	workDir, err := os.MkdirTemp(r.tempDir, "videomaker-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	// concat list entries resolve against the list file's directory, so
	// every intermediate path must be absolute
	if abs, err := filepath.Abs(workDir); err == nil {
		workDir = abs
	} else {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("failed to resolve work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			r.logger.Warn().Err(err).Str("work_dir", workDir).Msg("failed to remove work dir")
		}
	}()

	plan, err := NewPlan(snap, source, dest, workDir, opts...)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("source", source).
		Str("destination", dest).
		Str("mode", plan.Mode.String()).
		Int("steps", len(plan.Steps)).
		Str("work_dir", workDir).
		Msg("starting render")

	started := time.Now()
	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Step: step.Step, Kind: step.Kind, Cause: err}
		}

		stepStart := time.Now()
		r.logger.Debug().Int("step", step.Step).Str("invocation", step.String()).Msg("running step")

		if err := r.runner.Run(ctx, step); err != nil {
			if step.Output == dest {
				if cerr := util.CleanupFiles(dest); cerr != nil {
					r.logger.Warn().Err(cerr).Str("destination", dest).Msg("failed to remove partial output")
				}
			}
			r.logger.Error().Err(err).Int("step", step.Step).Str("kind", string(step.Kind)).Msg("render step failed")
			return nil, &StepError{Step: step.Step, Kind: step.Kind, Cause: err}
		}

		r.logger.Info().
			Int("step", step.Step).
			Str("kind", string(step.Kind)).
			Dur("elapsed", time.Since(stepStart)).
			Msg("step complete")
	}

	result := &Result{Plan: plan, Elapsed: time.Since(started)}
	r.logger.Info().Str("destination", dest).Dur("elapsed", result.Elapsed).Msg("render complete")
	return result, nil
}
