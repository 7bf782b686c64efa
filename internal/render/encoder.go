package render

import "strconv"

// Encoding settings for a smooth, widely playable MP4.
const (
	videoCodec   = "libx264"
	pixelFormat  = "yuv420p"
	videoBitrate = "5000k"
	x264Preset   = "medium"
)

// rasterizeArgs builds the rsvg-convert command line for one frame.
func rasterizeArgs(svgPath, pngPath string, width, height int) []string {
	return []string{
		"--width", strconv.Itoa(width),
		"--height", strconv.Itoa(height),
		"--output", pngPath,
		svgPath,
	}
}

// encodeArgs builds the ffmpeg command line turning the frame sequence into
// an MP4. The pattern is a printf-style path like frame_%05d.png.
func encodeArgs(framePattern string, fps int, outPath string) []string {
	return []string{
		"-y",
		"-framerate", strconv.Itoa(fps),
		"-i", framePattern,
		"-c:v", videoCodec,
		"-pix_fmt", pixelFormat,
		"-b:v", videoBitrate,
		"-preset", x264Preset,
		outPath,
	}
}
