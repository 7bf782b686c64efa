// Package render implements the final pipeline stage: turning an animation
// descriptor into an MP4. Frames are emitted as SVG snapshots, rasterized
// with rsvg-convert in parallel, optionally composited with a Blender-drawn
// hand, and encoded with ffmpeg.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/sketch-animator/internal/animate"
	"github.com/jonathan/sketch-animator/internal/pipeline"
)

// Tools holds the external binaries the renderer shells out to. BlenderPath
// and HandScript are only used when HandOverlay is set.
type Tools struct {
	RsvgConvert string
	FFmpeg      string
	Blender     string
	HandScript  string
	HandOverlay bool
}

// Renderer encodes animation descriptors into MP4 videos.
type Renderer struct {
	tools       Tools
	parallelism int
	logger      *zap.Logger
}

// New creates a Renderer. Frame rasterization runs up to GOMAXPROCS
// rsvg-convert processes at a time.
func New(tools Tools, logger *zap.Logger) *Renderer {
	return &Renderer{
		tools:       tools,
		parallelism: runtime.GOMAXPROCS(0),
		logger:      logger,
	}
}

// Name identifies the stage in failure messages.
func (r *Renderer) Name() string { return pipeline.StageRender }

// Transform renders the descriptor to MP4 bytes.
func (r *Renderer) Transform(ctx context.Context, input []byte) ([]byte, error) {
	var desc animate.Descriptor
	if err := json.Unmarshal(input, &desc); err != nil {
		return nil, fmt.Errorf("decoding descriptor: %w", err)
	}
	if len(desc.Strokes) == 0 {
		return nil, fmt.Errorf("descriptor has no strokes")
	}

	tmpDir, err := os.MkdirTemp("", "render-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	hand := r.loadHand(ctx, tmpDir)

	frames := desc.TotalFrames()
	r.logger.Debug("rendering frames",
		zap.Int("frames", frames),
		zap.Int("strokes", len(desc.Strokes)))

	if err := r.rasterizeFrames(ctx, tmpDir, &desc, frames, hand); err != nil {
		return nil, err
	}

	outPath := filepath.Join(tmpDir, "output.mp4")
	pattern := filepath.Join(tmpDir, "frame_%05d.png")
	if err := r.runTool(ctx, r.tools.FFmpeg, encodeArgs(pattern, desc.FPS, outPath)); err != nil {
		return nil, fmt.Errorf("encoding video: %w", err)
	}

	video, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading encoded video: %w", err)
	}
	return video, nil
}

// rasterizeFrames writes and rasterizes every frame, fanning the rsvg-convert
// invocations out across a bounded worker group.
func (r *Renderer) rasterizeFrames(ctx context.Context, dir string, desc *animate.Descriptor, frames int, hand image.Image) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i := 0; i < frames; i++ {
		g.Go(func() error {
			t := float64(i) / float64(desc.FPS)
			svgPath := filepath.Join(dir, fmt.Sprintf("frame_%05d.svg", i))
			pngPath := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))

			if err := os.WriteFile(svgPath, frameSVG(desc, t), 0o644); err != nil {
				return fmt.Errorf("writing frame %d: %w", i, err)
			}
			args := rasterizeArgs(svgPath, pngPath, desc.Width, desc.Height)
			if err := r.runTool(gctx, r.tools.RsvgConvert, args); err != nil {
				return fmt.Errorf("rasterizing frame %d: %w", i, err)
			}

			if hand != nil {
				if x, y, ok := r.handPosition(desc, t); ok {
					if err := composeHand(pngPath, hand, x, y); err != nil {
						return fmt.Errorf("compositing frame %d: %w", i, err)
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// handPosition locates the pen tip for the stroke being drawn at time t.
// No stroke in progress means the hand is off screen.
func (r *Renderer) handPosition(desc *animate.Descriptor, t float64) (int, int, bool) {
	for i := range desc.Strokes {
		s := &desc.Strokes[i]
		progress := progressAt(s, t)
		if progress <= 0 || progress >= 1 {
			continue
		}
		if x, y, ok := penAnchor(s.Path, progress); ok {
			return int(x), int(y), true
		}
	}
	return 0, 0, false
}

// loadHand renders the hand overlay with Blender once per job. Overlay
// problems are logged and the video renders without a hand.
func (r *Renderer) loadHand(ctx context.Context, dir string) image.Image {
	if !r.tools.HandOverlay {
		return nil
	}

	handPath := filepath.Join(dir, "hand.png")
	args := []string{"--background", "--python", r.tools.HandScript, "--", handPath}
	if err := r.runTool(ctx, r.tools.Blender, args); err != nil {
		r.logger.Warn("hand overlay render failed, continuing without hand", zap.Error(err))
		return nil
	}

	f, err := os.Open(handPath)
	if err != nil {
		r.logger.Warn("hand overlay missing, continuing without hand", zap.Error(err))
		return nil
	}
	defer f.Close()

	hand, _, err := image.Decode(f)
	if err != nil {
		r.logger.Warn("hand overlay unreadable, continuing without hand", zap.Error(err))
		return nil
	}
	return hand
}

// runTool executes an external binary, surfacing its stderr on failure.
func (r *Renderer) runTool(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(binary), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
