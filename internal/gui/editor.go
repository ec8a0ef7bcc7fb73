// Package gui is the fyne editor window. It only translates user actions
// into Session edits and redraws from the model afterwards.
package gui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/keagan/videomaker/internal/overlays"
	"github.com/keagan/videomaker/internal/pipeline"
	"github.com/keagan/videomaker/internal/timeline"
	"github.com/keagan/videomaker/pkg/util"
)

var videoExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm"}

// Editor is the main window
type Editor struct {
	ctx      context.Context
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
	session  *pipeline.Session
	selected map[timeline.SegmentID]bool
	busy     bool
	syncing  bool

	window         fyne.Window
	videoLabel     *widget.Label
	timestampLabel *widget.Label
	statusLabel    *widget.Label
	slider         *widget.Slider
	segments       *widget.List
	historyList    *widget.List
	speedSelect    *widget.Select
	anchorSelect   *widget.Select
	overlayLabel   *widget.Label
	undoButton     *widget.Button
	redoButton     *widget.Button
	renderButton   *widget.Button
}

// Run opens the editor and blocks until the window closes. initial, if set,
// is loaded on start.
func Run(ctx context.Context, logger zerolog.Logger, p *pipeline.Pipeline, initial string) {
	a := app.NewWithID("com.keagan.videomaker")
	e := &Editor{
		ctx:      ctx,
		logger:   logger.With().Str("component", "gui").Logger(),
		pipeline: p,
		selected: make(map[timeline.SegmentID]bool),
		window:   a.NewWindow("videomaker"),
	}
	e.window.Resize(fyne.NewSize(900, 600))
	e.window.SetContent(e.build())
	e.refresh()

	if initial != "" {
		e.load(initial)
	}

	e.window.ShowAndRun()
}

func (e *Editor) build() fyne.CanvasObject {
	e.videoLabel = widget.NewLabel("No video loaded")
	e.timestampLabel = widget.NewLabel("Current: 00:00:00.000")
	e.statusLabel = widget.NewLabel("")
	e.overlayLabel = widget.NewLabel("No image")

	e.slider = widget.NewSlider(0, 1)
	e.slider.Step = 0.001
	e.slider.OnChanged = func(val float64) {
		pos := seconds(val)
		text := "Current: " + util.FormatDuration(pos)
		if e.session != nil {
			if hit, err := e.session.Model().SegmentAt(pos); err == nil {
				text += fmt.Sprintf("  (segment %d)", hit.Index+1)
			}
		}
		e.timestampLabel.SetText(text)
	}

	e.segments = widget.NewList(
		func() int {
			if e.session == nil {
				return 0
			}
			return e.session.Model().Len()
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("segment")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			seg, err := e.session.Model().At(id)
			if err != nil {
				return
			}
			mark := "[ ]"
			if e.selected[seg.ID] {
				mark = "[x]"
			}
			obj.(*widget.Label).SetText(fmt.Sprintf("%s %d  %s  +%s", mark, id+1,
				util.FormatDuration(seg.Start), util.FormatDuration(seg.Duration)))
		},
	)
	e.segments.OnSelected = func(id widget.ListItemID) {
		if seg, err := e.session.Model().At(id); err == nil {
			e.selected[seg.ID] = !e.selected[seg.ID]
		}
		e.segments.UnselectAll()
		e.segments.Refresh()
	}

	e.historyList = widget.NewList(
		func() int {
			if e.session == nil {
				return 0
			}
			return e.session.History().Len()
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("edit")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			h := e.session.History()
			label := h.Labels()[id]
			if id >= h.Cursor() {
				label += " (undone)"
			}
			obj.(*widget.Label).SetText(label)
		},
	)

	speedOptions := make([]string, 0, len(timeline.SpeedChoices()))
	for _, f := range timeline.SpeedChoices() {
		speedOptions = append(speedOptions, timeline.SpeedLabel(f))
	}
	e.speedSelect = widget.NewSelect(speedOptions, func(choice string) {
		if e.syncing {
			return
		}
		factor, err := timeline.ParseSpeed(choice)
		if err != nil {
			e.fail(err)
			return
		}
		e.edit(func(s *pipeline.Session) error { return s.SetSpeed(factor) })
	})

	anchorOptions := make([]string, 0, 9)
	for _, a := range overlays.Anchors() {
		anchorOptions = append(anchorOptions, a.String())
	}
	e.anchorSelect = widget.NewSelect(anchorOptions, nil)
	e.anchorSelect.SetSelected(overlays.RightBottom.String())

	loadButton := widget.NewButton("Load Video", func() {
		fd := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				e.fail(err)
				return
			}
			if ur == nil {
				return
			}
			path := ur.URI().Path()
			ur.Close()
			e.load(path)
		}, e.window)
		fd.SetFilter(storage.NewExtensionFileFilter(videoExtensions))
		fd.Show()
	})

	cutButton := widget.NewButton("Cut", func() {
		pos := seconds(e.slider.Value)
		e.edit(func(s *pipeline.Session) error { return s.Split(pos) })
	})

	deleteButton := widget.NewButton("Delete Selected", func() {
		ids := e.selectedIDs()
		e.edit(func(s *pipeline.Session) error { return s.Delete(ids...) })
	})

	moveUp := widget.NewButton("Move Up", func() { e.moveSelected(-1) })
	moveDown := widget.NewButton("Move Down", func() { e.moveSelected(1) })

	imageButton := widget.NewButton("Add Image", func() {
		fd := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				e.fail(err)
				return
			}
			if ur == nil {
				return
			}
			path := ur.URI().Path()
			ur.Close()
			anchor, err := overlays.ParseAnchor(e.anchorSelect.Selected)
			if err != nil {
				e.fail(err)
				return
			}
			e.edit(func(s *pipeline.Session) error { return s.AddImage(path, anchor) })
		}, e.window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
		fd.Show()
	})

	removeImageButton := widget.NewButton("Remove Image", func() {
		e.edit(func(s *pipeline.Session) error { return s.RemoveImage() })
	})

	e.undoButton = widget.NewButton("Undo", func() {
		e.edit(func(s *pipeline.Session) error {
			_, err := s.Undo()
			return err
		})
	})
	e.redoButton = widget.NewButton("Redo", func() {
		e.edit(func(s *pipeline.Session) error {
			_, err := s.Redo()
			return err
		})
	})

	e.renderButton = widget.NewButton("Render", e.showRenderDialog)

	controls := container.NewVBox(
		container.NewHBox(loadButton, e.videoLabel),
		e.slider,
		e.timestampLabel,
		container.NewHBox(cutButton, deleteButton, moveUp, moveDown, e.undoButton, e.redoButton),
		container.NewHBox(widget.NewLabel("Speed"), e.speedSelect,
			widget.NewLabel("Anchor"), e.anchorSelect, imageButton, removeImageButton, e.overlayLabel),
		container.NewHBox(e.renderButton, e.statusLabel),
	)

	lists := container.NewHSplit(
		container.NewBorder(widget.NewLabel("Segments"), nil, nil, nil, e.segments),
		container.NewBorder(widget.NewLabel("History"), nil, nil, nil, e.historyList),
	)
	lists.SetOffset(0.65)

	return container.NewBorder(controls, nil, nil, nil, lists)
}

// load probes path off the UI goroutine and swaps in a new session
func (e *Editor) load(path string) {
	e.setStatus("Probing " + filepath.Base(path) + "...")
	go func() {
		session, err := e.pipeline.Open(e.ctx, path)
		fyne.Do(func() {
			if err != nil {
				e.fail(err)
				return
			}
			e.session = session
			clear(e.selected)
			total := session.Model().Total()
			e.videoLabel.SetText(fmt.Sprintf("%s (%s)", filepath.Base(path), util.FormatDuration(total)))
			e.slider.Min = 0
			e.slider.Max = total.Seconds()
			e.slider.SetValue(0)
			e.setStatus("")
			e.refresh()
		})
	}()
}

// edit runs fn against the session and redraws
func (e *Editor) edit(fn func(*pipeline.Session) error) {
	if e.session == nil || e.busy {
		return
	}
	if err := fn(e.session); err != nil {
		e.fail(err)
	}
	e.prune()
	e.refresh()
}

func (e *Editor) moveSelected(delta int) {
	ids := e.selectedIDs()
	if len(ids) != 1 {
		e.setStatus("Select one segment to move")
		return
	}
	e.edit(func(s *pipeline.Session) error {
		i, ok := s.Model().IndexOf(ids[0])
		if !ok {
			return timeline.ErrUnknownSegment
		}
		return s.Move(ids[0], i+delta)
	})
}

func (e *Editor) selectedIDs() []timeline.SegmentID {
	var ids []timeline.SegmentID
	for _, seg := range e.session.Model().Segments() {
		if e.selected[seg.ID] {
			ids = append(ids, seg.ID)
		}
	}
	return ids
}

// prune drops selections of segments no longer in the sequence
func (e *Editor) prune() {
	for id := range e.selected {
		if _, ok := e.session.Model().IndexOf(id); !ok {
			delete(e.selected, id)
		}
	}
}

func (e *Editor) refresh() {
	loaded := e.session != nil
	e.segments.Refresh()
	e.historyList.Refresh()

	e.syncing = true
	defer func() { e.syncing = false }()

	if !loaded {
		e.undoButton.Disable()
		e.redoButton.Disable()
		e.renderButton.Disable()
		e.speedSelect.Disable()
		return
	}

	h := e.session.History()
	setEnabled(e.undoButton, h.CanUndo() && !e.busy)
	setEnabled(e.redoButton, h.CanRedo() && !e.busy)
	setEnabled(e.renderButton, !e.busy)
	e.speedSelect.Enable()
	e.speedSelect.SetSelected(timeline.SpeedLabel(e.session.Model().Speed()))

	if o := e.session.Model().Overlay(); o.IsSet() {
		e.overlayLabel.SetText(fmt.Sprintf("%s at %s", filepath.Base(o.Image), o.Anchor))
	} else {
		e.overlayLabel.SetText("No image")
	}
}

func (e *Editor) showRenderDialog() {
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			e.fail(err)
			return
		}
		if uc == nil {
			return
		}
		dest := uc.URI().Path()
		uc.Close()
		// the dialog creates the file; the renderer refuses existing destinations
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			e.fail(err)
			return
		}
		e.render(dest)
	}, e.window)
	fd.SetFileName("output.mp4")
	fd.Show()
}

// render runs the plan in the background, keeping edits disabled until it finishes
func (e *Editor) render(dest string) {
	e.busy = true
	e.setStatus("Rendering...")
	e.refresh()

	session := e.session
	go func() {
		result, err := session.Render(e.ctx, dest)
		fyne.Do(func() {
			e.busy = false
			e.refresh()
			if err != nil {
				e.fail(err)
				return
			}
			e.setStatus(fmt.Sprintf("Rendered %s in %s", filepath.Base(dest), result.Elapsed.Round(time.Millisecond)))
			dialog.ShowInformation("Render complete", dest, e.window)
		})
	}()
}

func (e *Editor) setStatus(msg string) {
	e.statusLabel.SetText(msg)
}

func (e *Editor) fail(err error) {
	e.logger.Error().Err(err).Msg("editor action failed")
	e.setStatus(firstLine(err.Error()))
	dialog.ShowError(err, e.window)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second)).Truncate(time.Millisecond)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
