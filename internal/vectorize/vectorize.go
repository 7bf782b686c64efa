// Package vectorize implements the first pipeline stage: converting a raster
// sketch into an SVG outline suitable for stroke animation. The heavy lifting
// is done by the external vtracer binary; this package preprocesses the image,
// drives the tool and normalizes its output.
package vectorize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/sketch-animator/internal/pipeline"
)

// vtracer tuning for line drawings.
const (
	colorMode       = "binary"
	preset          = "drawing"
	filterSpeckle   = 4
	cornerThreshold = 60.0
	maxIterations   = 10
	spliceThreshold = 45.0
	pathPrecision   = 8
)

// Vectorizer converts JPEG/PNG sketches to SVG outlines via vtracer.
type Vectorizer struct {
	binary string
	width  int
	height int
	logger *zap.Logger
}

// New creates a Vectorizer targeting the given canvas size.
func New(binary string, width, height int, logger *zap.Logger) *Vectorizer {
	return &Vectorizer{binary: binary, width: width, height: height, logger: logger}
}

// Name identifies the stage in failure messages.
func (v *Vectorizer) Name() string { return pipeline.StageVectorize }

// Transform converts raster image bytes into a normalized SVG outline.
func (v *Vectorizer) Transform(ctx context.Context, input []byte) ([]byte, error) {
	pre, err := v.preprocess(input)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "vectorize-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inPath := filepath.Join(tmpDir, "input.png")
	outPath := filepath.Join(tmpDir, "output.svg")
	if err := os.WriteFile(inPath, pre, 0o644); err != nil {
		return nil, fmt.Errorf("writing temp input: %w", err)
	}

	args := v.args(inPath, outPath)
	v.logger.Debug("running vtracer", zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, v.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("vtracer: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	svg, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading vtracer output: %w", err)
	}
	return normalizeSVG(svg, v.width, v.height), nil
}

// args builds the vtracer command line for the given input/output paths.
func (v *Vectorizer) args(inPath, outPath string) []string {
	return []string{
		"--input", inPath,
		"--output", outPath,
		"--mode", colorMode,
		"--preset", preset,
		"--filter-speckle", strconv.Itoa(filterSpeckle),
		"--corner-threshold", strconv.FormatFloat(cornerThreshold, 'f', -1, 64),
		"--max-iterations", strconv.Itoa(maxIterations),
		"--splice-threshold", strconv.FormatFloat(spliceThreshold, 'f', -1, 64),
		"--path-precision", strconv.Itoa(pathPrecision),
	}
}
