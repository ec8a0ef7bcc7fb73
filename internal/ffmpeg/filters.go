package ffmpeg

import (
	"strconv"
	"strings"
)

// FilterBuilder assembles a -filter_complex graph one labelled chain at a time
type FilterBuilder struct {
	chains []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		chains: make([]string, 0),
	}
}

// SetPTS rescales video timestamps. scale 0.5 plays twice as fast.
func (fb *FilterBuilder) SetPTS(input string, scale float64, output string) *FilterBuilder {
	return fb.Custom([]string{input}, "setpts="+formatFloat(scale)+"*PTS", output)
}

// ATempo changes audio tempo without altering pitch
func (fb *FilterBuilder) ATempo(input string, tempo float64, output string) *FilterBuilder {
	return fb.Custom([]string{input}, "atempo="+formatFloat(tempo), output)
}

// Overlay composites over on top of main at an "x:y" position expression
func (fb *FilterBuilder) Overlay(main, over, position, output string) *FilterBuilder {
	return fb.Custom([]string{main, over}, "overlay="+position, output)
}

// Custom adds a chain reading the labelled inputs. An empty output leaves
// the chain unlabelled so ffmpeg maps it to the output file.
func (fb *FilterBuilder) Custom(inputs []string, filter, output string) *FilterBuilder {
	var b strings.Builder
	for _, in := range inputs {
		b.WriteString(label(in))
	}
	b.WriteString(filter)
	if output != "" {
		b.WriteString(label(output))
	}
	fb.chains = append(fb.chains, b.String())
	return fb
}

// Build returns the complete graph joined with semicolons
func (fb *FilterBuilder) Build() string {
	return strings.Join(fb.chains, ";")
}

// Len returns the number of chains
func (fb *FilterBuilder) Len() int {
	return len(fb.chains)
}

func label(name string) string {
	if strings.HasPrefix(name, "[") {
		return name
	}
	return "[" + name + "]"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
