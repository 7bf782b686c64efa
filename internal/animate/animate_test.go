package animate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAnimator() *Animator {
	return New(1920, 1080, 30, 5.0, zap.NewNop())
}

func decode(t *testing.T, raw []byte) *Descriptor {
	t.Helper()
	var desc Descriptor
	require.NoError(t, json.Unmarshal(raw, &desc))
	return &desc
}

// TestTransformProducesValidDescriptor tests the happy path end to end
func TestTransformProducesValidDescriptor(t *testing.T) {
	svg := `<svg viewBox="0 0 1920 1080">
		<path stroke="#000000" stroke-width="2" fill="none" d="M 0 0 L 100 100"/>
		<path stroke="#000000" stroke-width="2" fill="none" d="M 50 50 L 60 60 L 70 70"/>
	</svg>`

	out, err := testAnimator().Transform(context.Background(), []byte(svg))
	require.NoError(t, err)

	desc := decode(t, out)
	assert.Equal(t, 1920, desc.Width)
	assert.Equal(t, 1080, desc.Height)
	assert.Equal(t, 30, desc.FPS)
	assert.Equal(t, 5.0, desc.Duration)
	require.Len(t, desc.Strokes, 2)

	assert.Equal(t, 0.0, desc.Strokes[0].Start)
	assert.InDelta(t, desc.Strokes[0].Duration, desc.Strokes[1].Start, 1e-9)
	total := desc.Strokes[0].Duration + desc.Strokes[1].Duration
	assert.InDelta(t, 5.0, total, 1e-9)
}

// TestTransformAllocatesTimeByLength tests proportional timing
func TestTransformAllocatesTimeByLength(t *testing.T) {
	long := "M 0 0" + strings.Repeat(" L 10 10", 100)
	svg := `<svg viewBox="0 0 100 100">
		<path d="` + long + `"/>
		<path d="M 1 1 L 2 2"/>
	</svg>`

	out, err := testAnimator().Transform(context.Background(), []byte(svg))
	require.NoError(t, err)

	desc := decode(t, out)
	require.Len(t, desc.Strokes, 2)
	assert.Greater(t, desc.Strokes[0].Duration, desc.Strokes[1].Duration)
}

// TestTransformEmptySVG tests the blank-sketch error
func TestTransformEmptySVG(t *testing.T) {
	_, err := testAnimator().Transform(context.Background(), []byte(`<svg viewBox="0 0 10 10"></svg>`))
	assert.ErrorIs(t, err, ErrNoPaths)
}

// TestTransformSkipsUnstrokedPaths tests that stroke="none" paths do not animate
func TestTransformSkipsUnstrokedPaths(t *testing.T) {
	svg := `<svg viewBox="0 0 10 10"><path stroke="none" d="M 0 0 L 5 5"/></svg>`
	_, err := testAnimator().Transform(context.Background(), []byte(svg))
	assert.ErrorIs(t, err, ErrNoPaths)
}

// TestTransformMalformedSVG tests the parse error path
func TestTransformMalformedSVG(t *testing.T) {
	_, err := testAnimator().Transform(context.Background(), []byte(`<svg><path`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing svg")
}

// TestTransformCarriesStrokeAttributes tests that color and width survive
func TestTransformCarriesStrokeAttributes(t *testing.T) {
	svg := `<svg viewBox="0 0 10 10"><path stroke="#ff0000" stroke-width="3.5" d="M 0 0 L 5 5"/></svg>`

	out, err := testAnimator().Transform(context.Background(), []byte(svg))
	require.NoError(t, err)

	desc := decode(t, out)
	require.Len(t, desc.Strokes, 1)
	assert.Equal(t, "#ff0000", desc.Strokes[0].Color)
	assert.Equal(t, 3.5, desc.Strokes[0].StrokeWidth)
}

// TestApproxPathLengthFloor tests the minimum length
func TestApproxPathLengthFloor(t *testing.T) {
	assert.Equal(t, 100.0, approxPathLength("M 0 0 L 1 1"))
}

// TestApproxPathLengthCounts tests the command and coordinate weighting
func TestApproxPathLengthCounts(t *testing.T) {
	d := "M 0 0" + strings.Repeat(" L 10 10", 20)
	// 21 commands at 10 each plus 21 coordinate pairs at 5 each
	assert.Equal(t, 315.0, approxPathLength(d))
}

// TestTotalFrames tests frame count derivation
func TestTotalFrames(t *testing.T) {
	desc := &Descriptor{FPS: 30, Duration: 5.0}
	assert.Equal(t, 150, desc.TotalFrames())

	desc = &Descriptor{FPS: 30, Duration: 0.01}
	assert.Equal(t, 1, desc.TotalFrames())
}
