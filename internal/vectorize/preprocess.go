package vectorize

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/jpeg" // register decoders for uploaded formats

	xdraw "golang.org/x/image/draw"
)

// autocontrast cutoff: the darkest and lightest 5% of pixels are clipped
// before stretching, matching what works well for pencil sketches.
const contrastCutoff = 0.05

// preprocess converts the upload to grayscale, fits it inside the target
// canvas and stretches its contrast, returning PNG bytes for vtracer.
func (v *Vectorizer) preprocess(input []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	gray := toGray(src)
	gray = autocontrast(gray, contrastCutoff)
	gray = fitWithin(gray, v.width, v.height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encoding preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image) *image.Gray {
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, src, bounds.Min, xdraw.Src)
	return gray
}

// autocontrast linearly stretches pixel values so that the cutoff fraction of
// pixels saturates at each end of the range.
func autocontrast(img *image.Gray, cutoff float64) *image.Gray {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return img
	}

	var hist [256]int
	for _, p := range img.Pix {
		hist[p]++
	}

	clip := int(float64(total) * cutoff)
	lo, hi := 0, 255
	for count := 0; lo < 255; lo++ {
		count += hist[lo]
		if count > clip {
			break
		}
	}
	for count := 0; hi > 0; hi-- {
		count += hist[hi]
		if count > clip {
			break
		}
	}
	if hi <= lo {
		return img
	}

	scale := 255.0 / float64(hi-lo)
	out := image.NewGray(bounds)
	for i, p := range img.Pix {
		val := (float64(p) - float64(lo)) * scale
		if val < 0 {
			val = 0
		} else if val > 255 {
			val = 255
		}
		out.Pix[i] = uint8(val)
	}
	return out
}

// fitWithin scales the image down to fit inside maxW x maxH, preserving the
// aspect ratio. Images already within bounds are returned unchanged.
func fitWithin(img *image.Gray, maxW, maxH int) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewGray(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}
