package overlay

import (
	"image"
	"testing"
)

func TestLabelBaseline(t *testing.T) {
	tests := []struct {
		name string
		box  image.Rectangle
		want int
	}{
		{"room above", image.Rect(40, 50, 140, 150), 40},
		{"just enough room", image.Rect(0, 21, 50, 71), 11},
		{"boundary goes below", image.Rect(0, 20, 50, 70), 90},
		{"top of frame", image.Rect(10, 0, 60, 50), 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LabelBaseline(tt.box); got != tt.want {
				t.Errorf("LabelBaseline(%v) = %d, want %d", tt.box, got, tt.want)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	s := DefaultStyle()
	box := image.Rect(40, 50, 140, 150) // x=40 y=50 w=100 h=100
	text := image.Pt(80, 12)

	l := s.Layout(box, text)

	if l.Baseline != 40 {
		t.Errorf("Baseline = %d, want 40", l.Baseline)
	}
	wantBg := image.Rect(40, 40-12-8, 40+80+10, 42)
	if l.Background != wantBg {
		t.Errorf("Background = %v, want %v", l.Background, wantBg)
	}
	if want := image.Pt(45, 36); l.Origin != want {
		t.Errorf("Origin = %v, want %v", l.Origin, want)
	}
}

func TestLayoutBelowBox(t *testing.T) {
	s := DefaultStyle()
	box := image.Rect(10, 5, 110, 85)

	l := s.Layout(box, image.Pt(60, 10))

	if l.Baseline != 105 {
		t.Errorf("Baseline = %d, want 105", l.Baseline)
	}
	if l.Origin.Y != 101 {
		t.Errorf("Origin.Y = %d, want 101", l.Origin.Y)
	}
}

func TestDefaultStyle(t *testing.T) {
	s := DefaultStyle()
	if s.BoxColor.G != 255 || s.BoxColor.R != 0 || s.BoxColor.B != 0 {
		t.Errorf("BoxColor = %v, want green", s.BoxColor)
	}
	if s.TextColor.R != 0 || s.TextColor.G != 0 || s.TextColor.B != 0 {
		t.Errorf("TextColor = %v, want black", s.TextColor)
	}
	if s.FontScale != 0.6 || s.FontThickness != 2 || s.BoxThickness != 2 {
		t.Errorf("unexpected font settings: %+v", s)
	}
}
