package timeline

import (
	"fmt"
	"time"

	"github.com/keagan/videomaker/internal/overlays"
)

// SplitCommand splits one segment in two
type SplitCommand struct {
	model *Model
	split Split
}

// NewSplitCommand plans a split at pos. Nothing changes until Redo.
func NewSplitCommand(m *Model, pos time.Duration) (*SplitCommand, error) {
	sp, err := m.PlanSplit(pos)
	if err != nil {
		return nil, err
	}
	return &SplitCommand{model: m, split: sp}, nil
}

func (c *SplitCommand) Redo() error   { return c.model.ApplySplit(c.split) }
func (c *SplitCommand) Undo() error   { return c.model.RevertSplit(c.split) }
func (c *SplitCommand) Label() string { return "Cut" }
func (c *SplitCommand) Split() Split  { return c.split }

// DeleteCommand removes a selection of segments
type DeleteCommand struct {
	model    *Model
	deletion Deletion
}

// NewDeleteCommand plans deleting ids
func NewDeleteCommand(m *Model, ids []SegmentID) (*DeleteCommand, error) {
	d, err := m.PlanDelete(ids)
	if err != nil {
		return nil, err
	}
	return &DeleteCommand{model: m, deletion: d}, nil
}

func (c *DeleteCommand) Redo() error        { return c.model.ApplyDelete(c.deletion) }
func (c *DeleteCommand) Undo() error        { return c.model.RestoreDelete(c.deletion) }
func (c *DeleteCommand) Label() string      { return "Delete" }
func (c *DeleteCommand) Deletion() Deletion { return c.deletion }

// MoveCommand moves one segment to a new sequence index
type MoveCommand struct {
	model *Model
	move  Move
}

// NewMoveCommand plans moving id to index to
func NewMoveCommand(m *Model, id SegmentID, to int) (*MoveCommand, error) {
	mv, err := m.PlanMove(id, to)
	if err != nil {
		return nil, err
	}
	return &MoveCommand{model: m, move: mv}, nil
}

func (c *MoveCommand) Redo() error   { return c.model.ApplyMove(c.move) }
func (c *MoveCommand) Undo() error   { return c.model.RevertMove(c.move) }
func (c *MoveCommand) Label() string { return "Move" }
func (c *MoveCommand) Move() Move    { return c.move }

// SpeedCommand replaces the speed factor
type SpeedCommand struct {
	model  *Model
	before float64
	after  float64
}

// NewSpeedCommand captures the current factor and validates the new one
func NewSpeedCommand(m *Model, factor float64) (*SpeedCommand, error) {
	if !ValidSpeed(factor) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, factor)
	}
	return &SpeedCommand{model: m, before: m.Speed(), after: factor}, nil
}

func (c *SpeedCommand) Redo() error {
	_, err := c.model.SetSpeed(c.after)
	return err
}

func (c *SpeedCommand) Undo() error {
	_, err := c.model.SetSpeed(c.before)
	return err
}

func (c *SpeedCommand) Label() string {
	if c.after == 0 {
		return "Normal speed"
	}
	return fmt.Sprintf("Change speed %sx", SpeedLabel(c.after))
}

// ImageCommand places, replaces or clears the overlay image
type ImageCommand struct {
	model  *Model
	before overlays.Overlay
	after  overlays.Overlay
}

// NewImageCommand captures the current overlay and validates the new one
func NewImageCommand(m *Model, image string, anchor overlays.Anchor) (*ImageCommand, error) {
	after, err := overlays.New(image, anchor)
	if err != nil {
		return nil, err
	}
	return &ImageCommand{model: m, before: m.Overlay(), after: after}, nil
}

func (c *ImageCommand) Redo() error {
	_, err := c.model.SetOverlay(c.after)
	return err
}

func (c *ImageCommand) Undo() error {
	_, err := c.model.SetOverlay(c.before)
	return err
}

func (c *ImageCommand) Label() string { return c.after.Label() }
