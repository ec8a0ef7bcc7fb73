package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keagan/videomaker/internal/ffmpeg"
	"github.com/keagan/videomaker/internal/history"
	"github.com/keagan/videomaker/internal/overlays"
	"github.com/keagan/videomaker/internal/render"
	"github.com/keagan/videomaker/internal/timeline"
	"github.com/keagan/videomaker/pkg/util"
	"github.com/rs/zerolog"
)

// ErrNoRenderer is returned by Render on a session built without a renderer
var ErrNoRenderer = errors.New("pipeline: session has no renderer")

// SessionOptions configures a Session
type SessionOptions struct {
	DisplayWidth  float64
	Registry      *overlays.Registry
	DefaultAnchor overlays.Anchor
	Renderer      *render.Renderer
	TempDir       string
}

// Session is one editing session on a source video: a timeline model plus
// its undo history. Every edit goes through a command pushed on the history.
// A Session is not safe for concurrent use.
type Session struct {
	logger   zerolog.Logger
	source   string
	info     *ffmpeg.VideoInfo
	model    *timeline.Model
	history  *history.Stack
	registry *overlays.Registry
	anchor   overlays.Anchor
	renderer *render.Renderer
	tempDir  string
}

// NewSession starts a session on source whose timeline spans total
func NewSession(logger zerolog.Logger, source string, total time.Duration, opts SessionOptions) (*Session, error) {
	if source == "" {
		return nil, fmt.Errorf("source path cannot be empty")
	}
	width := opts.DisplayWidth
	if width <= 0 {
		width = timeline.DefaultDisplayWidth
	}
	model, err := timeline.New(total, width)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = overlays.NewRegistry()
	}
	anchor := opts.DefaultAnchor
	if !anchor.Valid() {
		anchor = overlays.RightBottom
	}

	return &Session{
		logger:   logger.With().Str("component", "session").Str("source", filepath.Base(source)).Logger(),
		source:   source,
		model:    model,
		history:  history.New(),
		registry: registry,
		anchor:   anchor,
		renderer: opts.Renderer,
		tempDir:  opts.TempDir,
	}, nil
}

func (s *Session) Source() string               { return s.source }
func (s *Session) Model() *timeline.Model       { return s.model }
func (s *Session) History() *history.Stack      { return s.history }
func (s *Session) Registry() *overlays.Registry { return s.registry }

// Info returns the probed metadata, or nil when the session was not opened from a probe
func (s *Session) Info() *ffmpeg.VideoInfo { return s.info }

// Snapshot returns the current render input
func (s *Session) Snapshot() timeline.Snapshot { return s.model.Snapshot() }

func (s *Session) push(c history.Command) error {
	if err := s.history.Push(c); err != nil {
		return err
	}
	s.logger.Debug().
		Str("edit", c.Label()).
		Int("segments", s.model.Len()).
		Int("history", s.history.Len()).
		Msg("applied edit")
	return nil
}

// Split cuts the segment covering pos
func (s *Session) Split(pos time.Duration) error {
	c, err := timeline.NewSplitCommand(s.model, pos)
	if err != nil {
		return err
	}
	return s.push(c)
}

// Delete removes the segments with the given ids
func (s *Session) Delete(ids ...timeline.SegmentID) error {
	c, err := timeline.NewDeleteCommand(s.model, ids)
	if err != nil {
		return err
	}
	return s.push(c)
}

// DeleteIndices removes the segments at the given 0-based sequence indices
func (s *Session) DeleteIndices(indices ...int) error {
	ids := make([]timeline.SegmentID, 0, len(indices))
	for _, i := range indices {
		seg, err := s.model.At(i)
		if err != nil {
			return err
		}
		ids = append(ids, seg.ID)
	}
	return s.Delete(ids...)
}

// Move repositions segment id to sequence index to
func (s *Session) Move(id timeline.SegmentID, to int) error {
	c, err := timeline.NewMoveCommand(s.model, id, to)
	if err != nil {
		return err
	}
	return s.push(c)
}

// MoveIndex repositions the segment at index from to index to
func (s *Session) MoveIndex(from, to int) error {
	seg, err := s.model.At(from)
	if err != nil {
		return err
	}
	return s.Move(seg.ID, to)
}

// SetSpeed sets the retime factor; 0 is normal speed
func (s *Session) SetSpeed(factor float64) error {
	c, err := timeline.NewSpeedCommand(s.model, factor)
	if err != nil {
		return err
	}
	return s.push(c)
}

// AddImage sets the overlay. ref is resolved through the registry and
// AnchorNone selects the session's default anchor.
func (s *Session) AddImage(ref string, anchor overlays.Anchor) error {
	if ref == "" {
		return overlays.ErrMissingImage
	}
	image := s.registry.Resolve(ref)
	if !util.FileExists(image) {
		return fmt.Errorf("overlay image not found: %s", image)
	}
	if anchor == overlays.AnchorNone {
		anchor = s.anchor
	}
	c, err := timeline.NewImageCommand(s.model, image, anchor)
	if err != nil {
		return err
	}
	return s.push(c)
}

// RemoveImage clears the overlay
func (s *Session) RemoveImage() error {
	c, err := timeline.NewImageCommand(s.model, "", overlays.AnchorNone)
	if err != nil {
		return err
	}
	return s.push(c)
}

// Undo reverts the last edit. It reports false when there is nothing to undo.
func (s *Session) Undo() (bool, error) {
	label := s.history.UndoLabel()
	ok, err := s.history.Undo()
	if ok && err == nil {
		s.logger.Debug().Str("edit", label).Msg("undo")
	}
	return ok, err
}

// Redo reapplies the last undone edit. It reports false when there is nothing to redo.
func (s *Session) Redo() (bool, error) {
	label := s.history.RedoLabel()
	ok, err := s.history.Redo()
	if ok && err == nil {
		s.logger.Debug().Str("edit", label).Msg("redo")
	}
	return ok, err
}

// Apply performs one declarative edit
func (s *Session) Apply(e Edit) error {
	kind, err := e.Kind()
	if err != nil {
		return err
	}

	switch kind {
	case EditSplit:
		pos, err := util.ParseTimestamp(e.Split)
		if err != nil {
			return err
		}
		return s.Split(pos.Truncate(time.Millisecond))
	case EditDelete:
		return s.DeleteIndices(e.Delete...)
	case EditMove:
		return s.MoveIndex(e.Move.From, e.Move.To)
	case EditSpeed:
		factor, err := timeline.ParseSpeed(e.Speed)
		if err != nil {
			return err
		}
		return s.SetSpeed(factor)
	case EditOverlay:
		if e.Overlay.Image == "" {
			return s.RemoveImage()
		}
		anchor, err := overlays.ParseAnchor(e.Overlay.Anchor)
		if err != nil {
			return err
		}
		return s.AddImage(e.Overlay.Image, anchor)
	case EditUndo:
		return s.repeat(e.Undo, s.Undo)
	case EditRedo:
		return s.repeat(e.Redo, s.Redo)
	}
	return fmt.Errorf("unsupported edit %q", kind)
}

// repeat calls step n times, stopping early once there is nothing left to do
func (s *Session) repeat(n int, step func() (bool, error)) error {
	if n < 0 {
		return fmt.Errorf("count cannot be negative: %d", n)
	}
	for i := 0; i < n; i++ {
		ok, err := step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

// ApplyAll performs edits in order, stopping at the first failure
func (s *Session) ApplyAll(edits []Edit) error {
	for i, e := range edits {
		if err := s.Apply(e); err != nil {
			kind, _ := e.Kind()
			return fmt.Errorf("edit %d (%s): %w", i, kind, err)
		}
	}
	return nil
}

// Plan compiles the current timeline without running it. workDir "" uses a
// placeholder under the configured temp dir.
func (s *Session) Plan(dest, workDir string) (*render.Plan, error) {
	if workDir == "" {
		parent := s.tempDir
		if parent == "" {
			parent = os.TempDir()
		}
		workDir = filepath.Join(parent, "videomaker-render")
	}
	return render.NewPlan(s.model.Snapshot(), s.source, dest, workDir, s.planOptions()...)
}

// planOptions adapts the plan to the probed source
func (s *Session) planOptions() []render.PlanOption {
	if s.info != nil && !s.info.HasAudio {
		return []render.PlanOption{render.VideoOnly()}
	}
	return nil
}

// Render writes the current timeline to dest
func (s *Session) Render(ctx context.Context, dest string) (*render.Result, error) {
	if s.renderer == nil {
		return nil, ErrNoRenderer
	}
	return s.renderer.Render(ctx, s.model.Snapshot(), s.source, dest, s.planOptions()...)
}
