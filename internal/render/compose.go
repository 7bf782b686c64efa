package render

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// penAnchor finds the point on the canvas where the pen is at time progress
// through a path, approximated by linearly interpolating between the path's
// coordinate pairs. Returns false when the path data yields no points.
func penAnchor(pathData string, progress float64) (x, y float64, ok bool) {
	points := pathPoints(pathData)
	if len(points) == 0 {
		return 0, 0, false
	}
	if len(points) == 1 || progress <= 0 {
		return points[0][0], points[0][1], true
	}
	if progress >= 1 {
		last := points[len(points)-1]
		return last[0], last[1], true
	}

	pos := progress * float64(len(points)-1)
	i := int(pos)
	frac := pos - float64(i)
	if i >= len(points)-1 {
		last := points[len(points)-1]
		return last[0], last[1], true
	}
	x = points[i][0] + frac*(points[i+1][0]-points[i][0])
	y = points[i][1] + frac*(points[i+1][1]-points[i][1])
	return x, y, true
}

// pathPoints extracts absolute coordinate pairs from path data, treating every
// run of numbers as alternating x and y values. Relative commands are rare in
// vtracer output, so the approximation stays close enough for hand placement.
func pathPoints(pathData string) [][2]float64 {
	fields := strings.FieldsFunc(pathData, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '-' && r != '+'
	})

	nums := make([]float64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		nums = append(nums, n)
	}

	points := make([][2]float64, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		points = append(points, [2]float64{nums[i], nums[i+1]})
	}
	return points
}

// composeHand draws the hand overlay onto a frame so its tip sits at (x, y),
// writing the result back to the frame file.
func composeHand(framePath string, hand image.Image, x, y int) error {
	f, err := os.Open(framePath)
	if err != nil {
		return fmt.Errorf("opening frame: %w", err)
	}
	frame, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}

	dst := image.NewRGBA(frame.Bounds())
	xdraw.Draw(dst, dst.Bounds(), frame, frame.Bounds().Min, xdraw.Src)

	// The pen tip is the hand image's top-left corner.
	hb := hand.Bounds()
	target := image.Rect(x, y, x+hb.Dx(), y+hb.Dy())
	xdraw.Draw(dst, target, hand, hb.Min, xdraw.Over)

	out, err := os.Create(framePath)
	if err != nil {
		return fmt.Errorf("rewriting frame: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, dst); err != nil {
		return fmt.Errorf("encoding composed frame: %w", err)
	}
	return nil
}
