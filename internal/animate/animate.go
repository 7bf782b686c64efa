// Package animate implements the second pipeline stage: planning how the
// strokes of a vectorized sketch are drawn over time. It parses the SVG
// outline, estimates per-path lengths and divides the clip duration among the
// strokes in proportion to their length.
package animate

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/sketch-animator/internal/pipeline"
	"github.com/jonathan/sketch-animator/internal/schemas"
)

const defaultStrokeWidth = 2.0

// ErrNoPaths is returned when the SVG contains nothing drawable, which
// usually means the sketch was blank or vectorization stripped everything.
var ErrNoPaths = errors.New("no drawable paths in vectorized image")

// Animator turns an SVG outline into an animation descriptor.
type Animator struct {
	width    int
	height   int
	fps      int
	duration float64
	logger   *zap.Logger
}

// New creates an Animator for the given canvas and clip length.
func New(width, height, fps int, durationSeconds float64, logger *zap.Logger) *Animator {
	return &Animator{
		width:    width,
		height:   height,
		fps:      fps,
		duration: durationSeconds,
		logger:   logger,
	}
}

// Name identifies the stage in failure messages.
func (a *Animator) Name() string { return pipeline.StageAnimate }

// Transform parses SVG bytes and produces a schema-valid animation descriptor
// as JSON. Strokes are drawn sequentially in document order, each getting a
// share of the clip proportional to its approximate length.
func (a *Animator) Transform(ctx context.Context, input []byte) ([]byte, error) {
	paths, err := extractPaths(input)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	desc := a.plan(paths)
	a.logger.Debug("planned animation",
		zap.Int("strokes", len(desc.Strokes)),
		zap.Float64("duration_seconds", desc.Duration))

	out, err := json.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("encoding descriptor: %w", err)
	}
	if err := schemas.ValidateAnimationDescriptor(out); err != nil {
		return nil, fmt.Errorf("descriptor failed validation: %w", err)
	}
	return out, nil
}

// plan allocates the timeline. Longer paths take longer to draw, so the pen
// appears to move at a constant speed across the whole sketch.
func (a *Animator) plan(paths []svgPath) *Descriptor {
	total := 0.0
	for _, p := range paths {
		total += p.length
	}

	desc := &Descriptor{
		Width:    a.width,
		Height:   a.height,
		FPS:      a.fps,
		Duration: a.duration,
		Strokes:  make([]Stroke, 0, len(paths)),
	}

	cursor := 0.0
	for _, p := range paths {
		share := a.duration * p.length / total
		desc.Strokes = append(desc.Strokes, Stroke{
			Path:        p.d,
			Color:       p.color,
			StrokeWidth: p.width,
			Length:      p.length,
			Start:       cursor,
			Duration:    share,
		})
		cursor += share
	}
	return desc
}

type svgPath struct {
	d      string
	color  string
	width  float64
	length float64
}

// extractPaths walks the SVG token stream collecting path elements. Anything
// without path data, or explicitly unstroked, is skipped.
func extractPaths(svg []byte) ([]svgPath, error) {
	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	var paths []svgPath

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing svg: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "path" {
			continue
		}

		p := svgPath{color: "#000000", width: defaultStrokeWidth}
		stroked := true
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "d":
				p.d = strings.TrimSpace(attr.Value)
			case "stroke":
				if attr.Value == "none" {
					stroked = false
				} else {
					p.color = attr.Value
				}
			case "stroke-width":
				if w, err := strconv.ParseFloat(attr.Value, 64); err == nil && w > 0 {
					p.width = w
				}
			}
		}
		if p.d == "" || !stroked {
			continue
		}
		p.length = approxPathLength(p.d)
		paths = append(paths, p)
	}
	return paths, nil
}
