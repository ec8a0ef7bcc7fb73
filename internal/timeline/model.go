// Package timeline holds the segment sequence of a single-video edit and the
// edit state applied on render. Every mutation comes in three parts: a Plan
// step that validates and computes the exact before/after values, an Apply
// step, and a Revert step. Commands in this package drive those steps.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/keagan/videomaker/internal/overlays"
)

// DefaultDisplayWidth is used when a model is built without a display width
const DefaultDisplayWidth = 1280

// CollisionRule decides whether moving id from index from to index to is allowed.
// seq is the current sequence and must not be modified.
type CollisionRule func(seq []Segment, id SegmentID, from, to int) bool

// EditState is the global state applied to the whole output
type EditState struct {
	Speed   float64 // 0 means unchanged
	Overlay overlays.Overlay
}

// Snapshot is an immutable copy of the model used for render planning
type Snapshot struct {
	Total    time.Duration
	Segments []Segment
	Speed    float64
	Overlay  overlays.Overlay
}

// Duration returns the summed duration of the remaining segments, before retiming
func (s Snapshot) Duration() time.Duration {
	var d time.Duration
	for _, seg := range s.Segments {
		d += seg.Duration
	}
	return d
}

// Model owns the ordered segment sequence and the edit state
type Model struct {
	total    time.Duration
	mapper   PositionMapper
	segments []Segment
	index    map[SegmentID]int
	nextID   SegmentID
	state    EditState
	collide  CollisionRule
}

// New creates a model with one segment covering [0, total)
func New(total time.Duration, displayWidth float64) (*Model, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, total)
	}
	if displayWidth <= 0 {
		displayWidth = DefaultDisplayWidth
	}

	m := &Model{
		total:  total,
		mapper: NewPositionMapper(total, displayWidth),
		index:  make(map[SegmentID]int),
	}
	m.segments = []Segment{{ID: m.allocID(), Start: 0, Duration: total}}
	m.reindex()
	return m, nil
}

// SetCollisionRule installs the rule consulted by Reposition. nil accepts every move.
func (m *Model) SetCollisionRule(rule CollisionRule) {
	m.collide = rule
}

func (m *Model) Total() time.Duration   { return m.total }
func (m *Model) Mapper() PositionMapper { return m.mapper }
func (m *Model) Len() int               { return len(m.segments) }
func (m *Model) State() EditState       { return m.state }
func (m *Model) Speed() float64         { return m.state.Speed }

func (m *Model) Overlay() overlays.Overlay { return m.state.Overlay }

// Segments returns a copy of the sequence in order
func (m *Model) Segments() []Segment {
	out := make([]Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// At returns the segment at sequence index i
func (m *Model) At(i int) (Segment, error) {
	if i < 0 || i >= len(m.segments) {
		return Segment{}, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	return m.segments[i], nil
}

// IndexOf returns the sequence index of id
func (m *Model) IndexOf(id SegmentID) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Lookup returns the segment with the given id
func (m *Model) Lookup(id SegmentID) (Segment, bool) {
	i, ok := m.index[id]
	if !ok {
		return Segment{}, false
	}
	return m.segments[i], true
}

// Snapshot copies the current sequence and edit state
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Total:    m.total,
		Segments: m.Segments(),
		Speed:    m.state.Speed,
		Overlay:  m.state.Overlay,
	}
}

// DisplayWidth returns the proportional display width of s
func (m *Model) DisplayWidth(s Segment) float64 {
	return m.mapper.Width(s.Duration)
}

// SegmentAt returns the segment whose source span contains pos
func (m *Model) SegmentAt(pos time.Duration) (IndexedSegment, error) {
	for i, s := range m.segments {
		if s.Contains(pos) {
			return IndexedSegment{Index: i, Segment: s}, nil
		}
	}
	return IndexedSegment{}, fmt.Errorf("%w: %v", ErrNoSegmentAtPosition, pos)
}

// SegmentAtPixel returns the segment under display coordinate x
func (m *Model) SegmentAtPixel(x float64) (IndexedSegment, error) {
	return m.SegmentAt(m.mapper.ToTime(x))
}

// Split describes replacing Original at Index with Left and Right
type Split struct {
	Index    int
	Original Segment
	Left     Segment
	Right    Segment
}

// PlanSplit validates a split at pos and computes its result without applying it.
// The left part is [Start, pos), the right part [pos, End). A successful plan
// reserves two fresh segment IDs even if it is never applied; IDs are never reused.
func (m *Model) PlanSplit(pos time.Duration) (Split, error) {
	if pos <= 0 || m.mapper.ToPixel(pos) == 0 {
		return Split{}, fmt.Errorf("%w: %v", ErrNoSegmentAtPosition, pos)
	}

	for i, s := range m.segments {
		if s.Start == pos {
			return Split{}, fmt.Errorf("%w: %v", ErrAlreadySplit, pos)
		}
		if !s.Contains(pos) {
			continue
		}
		return Split{
			Index:    i,
			Original: s,
			Left:     Segment{ID: m.allocID(), Start: s.Start, Duration: pos - s.Start},
			Right:    Segment{ID: m.allocID(), Start: pos, Duration: s.End() - pos},
		}, nil
	}

	return Split{}, fmt.Errorf("%w: %v", ErrNoSegmentAtPosition, pos)
}

// ApplySplit replaces the original segment with its two parts
func (m *Model) ApplySplit(sp Split) error {
	if !m.matches(sp.Index, sp.Original) {
		return fmt.Errorf("%w: split of %v at index %d", ErrStale, sp.Original, sp.Index)
	}

	seq := make([]Segment, 0, len(m.segments)+1)
	seq = append(seq, m.segments[:sp.Index]...)
	seq = append(seq, sp.Left, sp.Right)
	seq = append(seq, m.segments[sp.Index+1:]...)
	m.segments = seq
	m.reindex()
	return nil
}

// RevertSplit merges the two parts of a split back into the original segment
func (m *Model) RevertSplit(sp Split) error {
	if !m.matches(sp.Index, sp.Left) || !m.matches(sp.Index+1, sp.Right) {
		return fmt.Errorf("%w: merge of %v and %v", ErrStale, sp.Left, sp.Right)
	}

	merged := Segment{
		ID:       sp.Original.ID,
		Start:    sp.Left.Start,
		Duration: sp.Left.Duration + sp.Right.Duration,
	}

	seq := make([]Segment, 0, len(m.segments)-1)
	seq = append(seq, m.segments[:sp.Index]...)
	seq = append(seq, merged)
	seq = append(seq, m.segments[sp.Index+2:]...)
	m.segments = seq
	m.reindex()
	return nil
}

// SplitAt plans and applies a split in one step
func (m *Model) SplitAt(pos time.Duration) (Split, error) {
	sp, err := m.PlanSplit(pos)
	if err != nil {
		return Split{}, err
	}
	return sp, m.ApplySplit(sp)
}

// Deletion records removed segments with their indices, ascending
type Deletion struct {
	Removed []IndexedSegment
}

// IDs returns the ids of the removed segments
func (d Deletion) IDs() []SegmentID {
	ids := make([]SegmentID, len(d.Removed))
	for i, r := range d.Removed {
		ids[i] = r.Segment.ID
	}
	return ids
}

// PlanDelete validates the selection. Duplicate ids are ignored.
func (m *Model) PlanDelete(ids []SegmentID) (Deletion, error) {
	if len(ids) == 0 {
		return Deletion{}, ErrEmptySelection
	}

	seen := make(map[SegmentID]bool, len(ids))
	removed := make([]IndexedSegment, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		i, ok := m.index[id]
		if !ok {
			return Deletion{}, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
		}
		removed = append(removed, IndexedSegment{Index: i, Segment: m.segments[i]})
	}

	sort.Slice(removed, func(a, b int) bool {
		return removed[a].Index < removed[b].Index
	})
	return Deletion{Removed: removed}, nil
}

// ApplyDelete removes the recorded segments. Remaining segments keep their time values.
func (m *Model) ApplyDelete(d Deletion) error {
	for _, r := range d.Removed {
		if !m.matches(r.Index, r.Segment) {
			return fmt.Errorf("%w: delete of %v at index %d", ErrStale, r.Segment, r.Index)
		}
	}

	drop := make(map[int]bool, len(d.Removed))
	for _, r := range d.Removed {
		drop[r.Index] = true
	}
	seq := make([]Segment, 0, len(m.segments)-len(d.Removed))
	for i, s := range m.segments {
		if !drop[i] {
			seq = append(seq, s)
		}
	}
	m.segments = seq
	m.reindex()
	return nil
}

// RestoreDelete reinserts the recorded segments at their original indices
func (m *Model) RestoreDelete(d Deletion) error {
	n := len(m.segments)
	for k, r := range d.Removed {
		if _, ok := m.index[r.Segment.ID]; ok {
			return fmt.Errorf("%w: %v is already present", ErrStale, r.Segment)
		}
		// each insert grows the sequence by one
		if r.Index < 0 || r.Index > n+k {
			return fmt.Errorf("%w: reinsert at index %d", ErrStale, r.Index)
		}
	}

	seq := m.Segments()
	for _, r := range d.Removed {
		seq = append(seq, Segment{})
		copy(seq[r.Index+1:], seq[r.Index:])
		seq[r.Index] = r.Segment
	}
	m.segments = seq
	m.reindex()
	return nil
}

// DeleteSelected plans and applies a deletion in one step
func (m *Model) DeleteSelected(ids []SegmentID) (Deletion, error) {
	d, err := m.PlanDelete(ids)
	if err != nil {
		return Deletion{}, err
	}
	return d, m.ApplyDelete(d)
}

// Move describes moving a segment between sequence indices
type Move struct {
	ID   SegmentID
	From int
	To   int
}

// PlanMove validates moving id to index to
func (m *Model) PlanMove(id SegmentID, to int) (Move, error) {
	from, ok := m.index[id]
	if !ok {
		return Move{}, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	if to < 0 || to >= len(m.segments) {
		return Move{}, fmt.Errorf("%w: %d", ErrInvalidIndex, to)
	}
	if m.collide != nil && !m.collide(m.Segments(), id, from, to) {
		return Move{}, fmt.Errorf("%w: segment %d to index %d", ErrOverlap, id, to)
	}
	return Move{ID: id, From: from, To: to}, nil
}

// ApplyMove moves the segment from mv.From to mv.To
func (m *Model) ApplyMove(mv Move) error {
	return m.move(mv.ID, mv.From, mv.To)
}

// RevertMove moves the segment back from mv.To to mv.From
func (m *Model) RevertMove(mv Move) error {
	return m.move(mv.ID, mv.To, mv.From)
}

// Reposition plans and applies a move in one step
func (m *Model) Reposition(id SegmentID, to int) (Move, error) {
	mv, err := m.PlanMove(id, to)
	if err != nil {
		return Move{}, err
	}
	return mv, m.ApplyMove(mv)
}

func (m *Model) move(id SegmentID, from, to int) error {
	if from < 0 || from >= len(m.segments) || m.segments[from].ID != id {
		return fmt.Errorf("%w: segment %d not at index %d", ErrStale, id, from)
	}
	if to < 0 || to >= len(m.segments) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, to)
	}

	s := m.segments[from]
	seq := append(m.Segments()[:from], m.segments[from+1:]...)
	seq = append(seq[:to], append([]Segment{s}, seq[to:]...)...)
	m.segments = seq
	m.reindex()
	return nil
}

// SetSpeed replaces the speed factor and returns the previous one
func (m *Model) SetSpeed(factor float64) (float64, error) {
	if !ValidSpeed(factor) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSpeed, factor)
	}
	prev := m.state.Speed
	m.state.Speed = factor
	return prev, nil
}

// SetOverlay replaces the overlay and returns the previous one.
// An overlay with AnchorNone clears it.
func (m *Model) SetOverlay(o overlays.Overlay) (overlays.Overlay, error) {
	o, err := overlays.New(o.Image, o.Anchor)
	if err != nil {
		return overlays.Overlay{}, err
	}
	prev := m.state.Overlay
	m.state.Overlay = o
	return prev, nil
}

func (m *Model) matches(i int, s Segment) bool {
	return i >= 0 && i < len(m.segments) && m.segments[i] == s
}

func (m *Model) allocID() SegmentID {
	m.nextID++
	return m.nextID
}

func (m *Model) reindex() {
	clear(m.index)
	for i, s := range m.segments {
		m.index[s.ID] = i
	}
}
