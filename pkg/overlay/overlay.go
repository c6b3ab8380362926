// Package overlay draws face boxes and emotion labels onto frames.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Annotation is one face box with its label text.
type Annotation struct {
	Rect image.Rectangle
	Text string
}

// Style controls how annotations are drawn.
type Style struct {
	BoxColor       color.RGBA
	BoxThickness   int
	TextColor      color.RGBA
	Font           gocv.HersheyFont
	FontScale      float64
	FontThickness  int
	LabelOffset    int // gap between label baseline and box top
	LabelBelowGap  int // gap below the box when the label would leave the frame
	LabelMinY      int // baseline must be below this to sit above the box
	TextPadX       int
	TextPadBottom  int
	BackgroundPadY int
}

// DefaultStyle returns green boxes with black text on a green label.
func DefaultStyle() Style {
	return Style{
		BoxColor:       color.RGBA{G: 255, A: 255},
		BoxThickness:   2,
		TextColor:      color.RGBA{A: 255},
		Font:           gocv.FontHersheySimplex,
		FontScale:      0.6,
		FontThickness:  2,
		LabelOffset:    10,
		LabelBelowGap:  20,
		LabelMinY:      10,
		TextPadX:       5,
		TextPadBottom:  4,
		BackgroundPadY: 8,
	}
}

// Renderer draws annotations with a fixed style.
type Renderer struct {
	style Style
}

// NewRenderer creates a renderer with the default style.
func NewRenderer() *Renderer {
	return &Renderer{style: DefaultStyle()}
}

// NewRendererWithStyle creates a renderer with a custom style.
func NewRendererWithStyle(style Style) *Renderer {
	return &Renderer{style: style}
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style {
	return r.style
}

// Draw paints every annotation onto dst in place.
func (r *Renderer) Draw(dst *gocv.Mat, anns []Annotation) {
	for _, a := range anns {
		r.drawOne(dst, a)
	}
}

func (r *Renderer) drawOne(dst *gocv.Mat, a Annotation) {
	s := r.style
	gocv.Rectangle(dst, a.Rect, s.BoxColor, s.BoxThickness)

	if a.Text == "" {
		return
	}

	size := gocv.GetTextSize(a.Text, s.Font, s.FontScale, s.FontThickness)
	l := s.Layout(a.Rect, size)

	gocv.Rectangle(dst, l.Background, s.BoxColor, -1)
	gocv.PutText(dst, a.Text, l.Origin, s.Font, s.FontScale, s.TextColor, s.FontThickness)
}

// Layout is where a label's background and text go.
type Layout struct {
	Baseline   int
	Background image.Rectangle
	Origin     image.Point
}

// Layout places a label of the given text size against box.
func (s Style) Layout(box image.Rectangle, text image.Point) Layout {
	baseline := s.Baseline(box)
	return Layout{
		Baseline: baseline,
		Background: image.Rect(
			box.Min.X, baseline-text.Y-s.BackgroundPadY,
			box.Min.X+text.X+2*s.TextPadX, baseline+2,
		),
		Origin: image.Pt(box.Min.X+s.TextPadX, baseline-s.TextPadBottom),
	}
}

// Baseline returns the label baseline for box: above the box when there
// is room, otherwise below it.
func (s Style) Baseline(box image.Rectangle) int {
	if above := box.Min.Y - s.LabelOffset; above > s.LabelMinY {
		return above
	}
	return box.Max.Y + s.LabelBelowGap
}

// LabelBaseline returns the baseline for box using the default style.
func LabelBaseline(box image.Rectangle) int {
	return DefaultStyle().Baseline(box)
}
