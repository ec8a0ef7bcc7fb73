package pipeline

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EditKind names the operation an Edit performs
type EditKind string

const (
	EditSplit   EditKind = "split"
	EditDelete  EditKind = "delete"
	EditMove    EditKind = "move"
	EditSpeed   EditKind = "speed"
	EditOverlay EditKind = "overlay"
	EditUndo    EditKind = "undo"
	EditRedo    EditKind = "redo"
)

// Edit is one declarative timeline operation. Exactly one field is set.
//
//   - split: "00:00:04.5"
//   - delete: [0, 2]
//   - move: {from: 2, to: 0}
//   - speed: 1.5
//   - overlay: {image: logo, anchor: Right-Bottom}
//   - undo: 1
type Edit struct {
	Split   string       `yaml:"split,omitempty"`
	Delete  []int        `yaml:"delete,omitempty"`
	Move    *MoveEdit    `yaml:"move,omitempty"`
	Speed   string       `yaml:"speed,omitempty"`
	Overlay *OverlayEdit `yaml:"overlay,omitempty"`
	Undo    int          `yaml:"undo,omitempty"`
	Redo    int          `yaml:"redo,omitempty"`
}

// MoveEdit repositions the segment at sequence index From to index To
type MoveEdit struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// OverlayEdit sets or clears the overlay. Image may be a registry name or a
// path; an empty image removes the overlay.
type OverlayEdit struct {
	Image  string `yaml:"image"`
	Anchor string `yaml:"anchor,omitempty"`
}

// Kind reports which operation the edit carries
func (e Edit) Kind() (EditKind, error) {
	var kinds []EditKind
	if e.Split != "" {
		kinds = append(kinds, EditSplit)
	}
	if len(e.Delete) > 0 {
		kinds = append(kinds, EditDelete)
	}
	if e.Move != nil {
		kinds = append(kinds, EditMove)
	}
	if e.Speed != "" {
		kinds = append(kinds, EditSpeed)
	}
	if e.Overlay != nil {
		kinds = append(kinds, EditOverlay)
	}
	if e.Undo != 0 {
		kinds = append(kinds, EditUndo)
	}
	if e.Redo != 0 {
		kinds = append(kinds, EditRedo)
	}

	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("edit has no operation")
	case 1:
		return kinds[0], nil
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("edit has several operations: %s", strings.Join(names, ", "))
}

// Script is an ordered list of edits, stored as YAML
type Script struct {
	Edits []Edit `yaml:"edits"`
}

// ParseScript decodes and validates an edit script
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse edit script: %w", err)
	}
	for i, e := range s.Edits {
		if _, err := e.Kind(); err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
	}
	return &s, nil
}

// LoadScript reads an edit script from disk
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// Save writes the script as YAML
func (s *Script) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
