package ggame

import (
	"fmt"

	"github.com/gogpu/ggame/graphics"
	"github.com/gogpu/ggame/load"
	"github.com/gogpu/ggame/text"
)

// LoadingScreen gives feedback while the game loads. Draw is called for
// every progress notification with a fresh frame, which the engine presents
// afterwards. Returning ErrTerminated stops loading and closes the engine.
type LoadingScreen interface {
	Draw(frame *Frame, progress load.Progress) error
}

// LoadingFunc adapts a function to a LoadingScreen.
type LoadingFunc func(frame *Frame, progress load.Progress) error

// Draw calls fn.
func (fn LoadingFunc) Draw(frame *Frame, progress load.Progress) error { return fn(frame, progress) }

// ProgressBar is a plain loading screen: a horizontal bar in the middle of
// the surface, filled with the percentage done, and the current stage title
// above it when Font is set.
type ProgressBar struct {
	Background graphics.RGBA
	Track      graphics.RGBA
	Fill       graphics.RGBA
	TextColor  graphics.RGBA
	// Font draws the stage title. Nil draws no text.
	Font *text.Font
	// Width is the bar width as a fraction of the surface width.
	Width float64
	// Height is the bar height in pixels.
	Height float64
}

// NewProgressBar returns a white bar on black.
func NewProgressBar() *ProgressBar {
	return &ProgressBar{
		Background: graphics.Black,
		Track:      graphics.RGB(0.2, 0.2, 0.2),
		Fill:       graphics.White,
		TextColor:  graphics.White,
		Width:      0.6,
		Height:     16,
	}
}

// Draw implements LoadingScreen.
func (p *ProgressBar) Draw(frame *Frame, progress load.Progress) error {
	w, h := frame.Size()
	bar := graphics.R(
		float64(w)*(1-p.Width)/2,
		(float64(h)-p.Height)/2,
		float64(w)*p.Width,
		p.Height,
	)

	if err := frame.Clear(p.Background); err != nil {
		return err
	}
	t := frame.Target()
	if err := t.DrawRect(bar, p.Track); err != nil {
		return err
	}
	done := bar
	done.W *= progress.Percentage() / 100
	if !done.Empty() {
		if err := t.DrawRect(done, p.Fill); err != nil {
			return err
		}
	}
	if p.Font == nil {
		return nil
	}

	label := fmt.Sprintf("%.0f%%", progress.Percentage())
	if stage := progress.Stage(); stage != "" {
		label = stage + " " + label
	}
	size := p.Font.Measure(label, 0)
	pos := graphics.Pt(bar.X+(bar.W-size.X)/2, bar.Y-size.Y-p.Height/2)
	return t.DrawText(p.Font, label, pos, 0, p.TextColor)
}
