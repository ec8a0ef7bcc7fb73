package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/keagan/videomaker/internal/ffmpeg"
	"github.com/keagan/videomaker/internal/render"
	"github.com/keagan/videomaker/internal/timeline"
	"github.com/keagan/videomaker/pkg/util"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E2E8F0")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(1, 2)
)

func renderInfo(info *ffmpeg.VideoInfo) string {
	lines := []string{
		headerStyle.Render(filepath.Base(info.FilePath)),
		dimStyle.Render(strings.Repeat("─", 36)),
		infoLine("Duration", util.FormatDuration(info.Duration)),
		infoLine("Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)),
		infoLine("FPS", fmt.Sprintf("%.2f", info.FPS)),
		infoLine("Video codec", info.VideoCodec),
	}
	if info.Bitrate > 0 {
		lines = append(lines, infoLine("Bitrate", fmt.Sprintf("%d kb/s", info.Bitrate/1000)))
	}
	if info.HasAudio {
		lines = append(lines, infoLine("Audio codec", info.AudioCodec))
	} else {
		lines = append(lines, infoLine("Audio", "none"))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func infoLine(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func renderSegments(m *timeline.Model) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "ID", "Start", "Duration", "Width").
		StyleFunc(tableStyle)

	for i, seg := range m.Segments() {
		t.Row(
			strconv.Itoa(i),
			strconv.FormatUint(uint64(seg.ID), 10),
			util.FormatDuration(seg.Start),
			util.FormatDuration(seg.Duration),
			fmt.Sprintf("%.0f", m.DisplayWidth(seg)),
		)
	}

	snap := m.Snapshot()
	summary := fmt.Sprintf("%d segments, %s, speed %s", len(snap.Segments),
		util.FormatDuration(snap.Duration()), timeline.SpeedLabel(snap.Speed))
	if snap.Overlay.IsSet() {
		summary += fmt.Sprintf(", %s at %s", filepath.Base(snap.Overlay.Image), snap.Overlay.Anchor)
	}
	return t.Render() + "\n" + dimStyle.Render(summary)
}

func renderPlan(plan *render.Plan) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Step", "Kind", "Inputs", "Parameters", "Output").
		StyleFunc(tableStyle)

	for _, step := range plan.Steps {
		t.Row(
			strconv.Itoa(step.Step),
			string(step.Kind),
			inputsCell(step),
			paramsCell(step),
			filepath.Base(step.Output),
		)
	}

	header := headerStyle.Render(fmt.Sprintf("%s plan, %d steps -> %s", plan.Mode, len(plan.Steps), plan.Destination))
	return header + "\n" + t.Render()
}

func tableStyle(row, col int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle.Padding(0, 1)
	}
	return cellStyle
}

func inputsCell(step render.Invocation) string {
	if len(step.Inputs) > 3 {
		return fmt.Sprintf("%s ... %s (%d)", filepath.Base(step.Inputs[0]),
			filepath.Base(step.Inputs[len(step.Inputs)-1]), len(step.Inputs))
	}
	names := make([]string, len(step.Inputs))
	for i, in := range step.Inputs {
		names[i] = filepath.Base(in)
	}
	return strings.Join(names, ", ")
}

func paramsCell(step render.Invocation) string {
	switch step.Kind {
	case render.KindCut:
		return util.FormatDuration(step.Start) + " +" + util.FormatDuration(step.Duration)
	case render.KindConcat:
		return "list " + filepath.Base(step.ListFile)
	case render.KindRetime:
		if step.NoAudio {
			return fmt.Sprintf("setpts %.4g*PTS, no audio", step.PTSScale)
		}
		return fmt.Sprintf("setpts %.4g*PTS, atempo %g", step.PTSScale, step.Tempo)
	case render.KindOverlay:
		return fmt.Sprintf("%s @ %s", filepath.Base(step.Image), step.Position)
	}
	return ""
}
