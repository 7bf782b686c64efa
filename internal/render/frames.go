package render

import (
	"fmt"
	"strings"

	"github.com/jonathan/sketch-animator/internal/animate"
)

// progressAt returns how much of the stroke is drawn at time t, in [0, 1].
func progressAt(s *animate.Stroke, t float64) float64 {
	if t <= s.Start {
		return 0
	}
	if s.Duration <= 0 || t >= s.Start+s.Duration {
		return 1
	}
	return (t - s.Start) / s.Duration
}

// frameSVG renders the descriptor state at time t as an SVG document. Partial
// strokes are drawn with a dash the full length of the path, offset so that
// only the drawn prefix is visible.
func frameSVG(desc *animate.Descriptor, t float64) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`,
		desc.Width, desc.Height, desc.Width, desc.Height)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)

	for i := range desc.Strokes {
		s := &desc.Strokes[i]
		progress := progressAt(s, t)
		if progress <= 0 {
			continue
		}

		color := s.Color
		if color == "" {
			color = "#000000"
		}
		width := s.StrokeWidth
		if width <= 0 {
			width = 2
		}

		fmt.Fprintf(&b, `<path d="%s" stroke="%s" stroke-width="%g" fill="none" stroke-linecap="round"`,
			s.Path, color, width)
		if progress < 1 {
			offset := s.Length * (1 - progress)
			fmt.Fprintf(&b, ` stroke-dasharray="%g" stroke-dashoffset="%g"`, s.Length, offset)
		}
		b.WriteString(`/>`)
	}

	b.WriteString(`</svg>`)
	return []byte(b.String())
}
