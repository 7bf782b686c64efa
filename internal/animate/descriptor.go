package animate

// Descriptor is the stage-2 artifact: a time-ordered stroke plan the renderer
// turns into frames. It is serialized as JSON and schema-checked before it
// leaves this stage.
type Descriptor struct {
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	FPS      int      `json:"fps"`
	Duration float64  `json:"duration_seconds"`
	Strokes  []Stroke `json:"strokes"`
}

// Stroke is one drawable path with its slot on the timeline. Start and
// Duration are seconds; Length is the approximate path length used both for
// timing allocation and for dash-offset animation.
type Stroke struct {
	Path        string  `json:"path"`
	Color       string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Length      float64 `json:"length"`
	Start       float64 `json:"start_seconds"`
	Duration    float64 `json:"duration_seconds"`
}

// TotalFrames returns the number of video frames the descriptor spans.
func (d *Descriptor) TotalFrames() int {
	n := int(float64(d.FPS) * d.Duration)
	if n < 1 {
		n = 1
	}
	return n
}
