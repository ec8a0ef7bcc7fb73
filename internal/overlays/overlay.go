package overlays

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrUnknownAnchor = errors.New("overlays: unknown anchor")
	ErrMissingImage  = errors.New("overlays: anchored overlay needs an image")
)

// Anchor is one of the nine placements of an image over the video frame
type Anchor int

const (
	AnchorNone Anchor = iota
	LeftTop
	Top
	RightTop
	Left
	Center
	Right
	LeftBottom
	Bottom
	RightBottom
)

var anchorNames = [...]string{
	AnchorNone:  "none",
	LeftTop:     "Left-Top",
	Top:         "Top",
	RightTop:    "Right-Top",
	Left:        "Left",
	Center:      "Center",
	Right:       "Right",
	LeftBottom:  "Left-Bottom",
	Bottom:      "Bottom",
	RightBottom: "Right-Bottom",
}

// axis tokens handed to Position, x then y
var anchorTokens = [...][2]string{
	LeftTop:     {"0", "0"},
	Top:         {"w/2", "0"},
	RightTop:    {"w", "0"},
	Left:        {"0", "h/2"},
	Center:      {"w/2", "h/2"},
	Right:       {"w", "h/2"},
	LeftBottom:  {"0", "h"},
	Bottom:      {"w/2", "h"},
	RightBottom: {"w", "h"},
}

func (a Anchor) String() string {
	if a < AnchorNone || int(a) >= len(anchorNames) {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// Valid reports whether a is one of the nine placements
func (a Anchor) Valid() bool {
	return a > AnchorNone && int(a) < len(anchorNames)
}

// Position returns the overlay filter coordinate expression for the anchor.
// AnchorNone has no position and returns "".
func (a Anchor) Position() string {
	if !a.Valid() {
		return ""
	}
	t := anchorTokens[a]
	return Position(t[0], t[1])
}

// Anchors lists the placements in the order the editor presents them
func Anchors() []Anchor {
	return []Anchor{LeftTop, Top, RightTop, Left, Center, Right, LeftBottom, Bottom, RightBottom}
}

// ParseAnchor accepts an anchor name, case-insensitively. "" and "none" yield AnchorNone.
func ParseAnchor(s string) (Anchor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnchorNone, nil
	}
	for i, name := range anchorNames {
		if strings.EqualFold(name, s) {
			return Anchor(i), nil
		}
	}
	return AnchorNone, fmt.Errorf("%w: %q", ErrUnknownAnchor, s)
}

// Position builds an "x:y" overlay expression. An axis whose token is the literal "0"
// stays at the start edge; any other token t becomes main_t-overlay_t.
func Position(xToken, yToken string) string {
	return axis(xToken) + ":" + axis(yToken)
}

func axis(token string) string {
	if token == "0" {
		return "0"
	}
	return "main_" + token + "-overlay_" + token
}

// Overlay is an image composited over the whole output.
// The zero value means no overlay.
type Overlay struct {
	Image  string
	Anchor Anchor
}

// New validates an overlay. AnchorNone clears the overlay regardless of image.
func New(image string, anchor Anchor) (Overlay, error) {
	if anchor == AnchorNone {
		return Overlay{}, nil
	}
	if !anchor.Valid() {
		return Overlay{}, fmt.Errorf("%w: %d", ErrUnknownAnchor, int(anchor))
	}
	if strings.TrimSpace(image) == "" {
		return Overlay{}, ErrMissingImage
	}
	return Overlay{Image: image, Anchor: anchor}, nil
}

// IsSet reports whether an image is placed
func (o Overlay) IsSet() bool {
	return o.Anchor.Valid()
}

// Label describes the overlay for history views
func (o Overlay) Label() string {
	if !o.IsSet() {
		return "Remove image"
	}
	return fmt.Sprintf("Add image %s at %s", filepath.Base(o.Image), o.Anchor)
}

// Registry maps overlay names from config to image paths
type Registry struct {
	overlays map[string]string
}

// NewRegistry creates a new overlay registry
func NewRegistry() *Registry {
	return &Registry{
		overlays: make(map[string]string),
	}
}

// NewRegistryFrom creates a registry preloaded with name → path entries
func NewRegistryFrom(entries map[string]string) *Registry {
	r := NewRegistry()
	for name, path := range entries {
		r.Register(name, path)
	}
	return r
}

// Register adds an overlay to the registry
func (r *Registry) Register(name, path string) {
	r.overlays[name] = path
}

// Get retrieves an overlay path by name
func (r *Registry) Get(name string) (string, bool) {
	path, ok := r.overlays[name]
	return path, ok
}

// Resolve returns the registered path for ref, or ref itself when it is not a name
func (r *Registry) Resolve(ref string) string {
	if path, ok := r.Get(ref); ok {
		return path
	}
	return ref
}

// List returns all registered overlay names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.overlays))
	for name := range r.overlays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
