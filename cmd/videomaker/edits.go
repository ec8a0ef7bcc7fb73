package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/keagan/videomaker/internal/pipeline"
	"github.com/spf13/cobra"
)

// editFlags collects the edit flags shared by render and plan
type editFlags struct {
	script  string
	splits  []string
	moves   []string
	deletes []int
	speed   string
	overlay string
	anchor  string
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.script, "script", "", "YAML edit script, applied before the flags")
	cmd.Flags().StringSliceVar(&f.splits, "split", nil, "cut at timestamp (repeatable, e.g. 00:01:02.5)")
	cmd.Flags().StringSliceVar(&f.moves, "move", nil, "move segment FROM:TO by 0-based index (repeatable)")
	cmd.Flags().IntSliceVar(&f.deletes, "delete", nil, "delete segments by 0-based index, after splits and moves")
	cmd.Flags().StringVar(&f.speed, "speed", "", "playback speed: Normal, 0.5, 0.75, 1.25, 1.5, 1.75, 2")
	cmd.Flags().StringVar(&f.overlay, "overlay", "", "overlay image path or configured overlay name")
	cmd.Flags().StringVar(&f.anchor, "anchor", "", "overlay anchor (default from config)")
}

// build returns script edits followed by splits, moves, deletes, speed and overlay
func (f *editFlags) build() ([]pipeline.Edit, error) {
	var out []pipeline.Edit

	if f.script != "" {
		script, err := pipeline.LoadScript(f.script)
		if err != nil {
			return nil, err
		}
		out = append(out, script.Edits...)
	}

	for _, s := range f.splits {
		out = append(out, pipeline.Edit{Split: s})
	}

	for _, m := range f.moves {
		move, err := parseMove(m)
		if err != nil {
			return nil, err
		}
		out = append(out, pipeline.Edit{Move: move})
	}

	if len(f.deletes) > 0 {
		out = append(out, pipeline.Edit{Delete: f.deletes})
	}

	if f.speed != "" {
		out = append(out, pipeline.Edit{Speed: f.speed})
	}

	if f.overlay != "" {
		out = append(out, pipeline.Edit{Overlay: &pipeline.OverlayEdit{Image: f.overlay, Anchor: f.anchor}})
	} else if f.anchor != "" {
		return nil, fmt.Errorf("--anchor requires --overlay")
	}

	return out, nil
}

// parseMove reads FROM:TO
func parseMove(s string) (*pipeline.MoveEdit, error) {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid move %q: expected FROM:TO", s)
	}
	f, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return nil, fmt.Errorf("invalid move %q: %w", s, err)
	}
	t, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return nil, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return &pipeline.MoveEdit{From: f, To: t}, nil
}

// planDuration reads --duration; zero means the source is probed
func planDuration(cmd *cobra.Command) (time.Duration, error) {
	d, err := cmd.Flags().GetDuration("duration")
	if err != nil {
		return 0, fmt.Errorf("invalid --duration: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid --duration %v: must not be negative", d)
	}
	return d, nil
}
