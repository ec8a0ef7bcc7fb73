package overlays

import (
	"errors"
	"reflect"
	"testing"
)

func TestPositionTokens(t *testing.T) {
	if got := Position("w", "h"); got != "main_w-overlay_w:main_h-overlay_h" {
		t.Errorf("Position(w, h) = %q", got)
	}
	if got := Position("0", "0"); got != "0:0" {
		t.Errorf("Position(0, 0) = %q", got)
	}
	if got := Position("w/2", "0"); got != "main_w/2-overlay_w/2:0" {
		t.Errorf("Position(w/2, 0) = %q", got)
	}
}

func TestAnchorPositions(t *testing.T) {
	tests := []struct {
		anchor Anchor
		want   string
	}{
		{LeftTop, "0:0"},
		{Top, "main_w/2-overlay_w/2:0"},
		{RightTop, "main_w-overlay_w:0"},
		{Left, "0:main_h/2-overlay_h/2"},
		{Center, "main_w/2-overlay_w/2:main_h/2-overlay_h/2"},
		{Right, "main_w-overlay_w:main_h/2-overlay_h/2"},
		{LeftBottom, "0:main_h-overlay_h"},
		{Bottom, "main_w/2-overlay_w/2:main_h-overlay_h"},
		{RightBottom, "main_w-overlay_w:main_h-overlay_h"},
		{AnchorNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.anchor.String(), func(t *testing.T) {
			if got := tt.anchor.Position(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAnchor(t *testing.T) {
	for _, a := range Anchors() {
		got, err := ParseAnchor(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAnchor(%q) = %v, %v", a.String(), got, err)
		}
	}

	if got, err := ParseAnchor("right-bottom"); err != nil || got != RightBottom {
		t.Errorf("case-insensitive parse failed: %v %v", got, err)
	}
	if got, err := ParseAnchor("none"); err != nil || got != AnchorNone {
		t.Errorf("none: %v %v", got, err)
	}
	if _, err := ParseAnchor("Middle"); !errors.Is(err, ErrUnknownAnchor) {
		t.Errorf("expected ErrUnknownAnchor, got %v", err)
	}
}

func TestNewOverlay(t *testing.T) {
	o, err := New("logo.png", Center)
	if err != nil || !o.IsSet() {
		t.Fatalf("New failed: %+v %v", o, err)
	}

	o, err = New("logo.png", AnchorNone)
	if err != nil || o.IsSet() || o.Image != "" {
		t.Errorf("AnchorNone should clear: %+v %v", o, err)
	}

	if _, err := New("  ", Top); !errors.Is(err, ErrMissingImage) {
		t.Errorf("expected ErrMissingImage, got %v", err)
	}
	if _, err := New("x.png", Anchor(42)); !errors.Is(err, ErrUnknownAnchor) {
		t.Errorf("expected ErrUnknownAnchor, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistryFrom(map[string]string{
		"logo":      "/assets/logo.png",
		"watermark": "/assets/wm.png",
	})

	if got := r.Resolve("logo"); got != "/assets/logo.png" {
		t.Errorf("Resolve(logo) = %q", got)
	}
	if got := r.Resolve("./other.png"); got != "./other.png" {
		t.Errorf("unregistered refs should pass through, got %q", got)
	}
	if got := r.List(); !reflect.DeepEqual(got, []string{"logo", "watermark"}) {
		t.Errorf("List() = %v", got)
	}
}
