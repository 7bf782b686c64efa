package pipeline

import "context"

// Stage names as they appear in failure messages.
const (
	StageVectorize = "vectorization"
	StageAnimate   = "animation"
	StageRender    = "rendering"
)

// Stage transforms one artifact into the next. Implementations may invoke
// external tools; they must honor ctx cancellation and must be safe for
// concurrent use across jobs.
type Stage interface {
	// Name identifies the stage in logs and failure messages.
	Name() string

	// Transform converts the previous stage's artifact into this stage's output.
	Transform(ctx context.Context, input []byte) ([]byte, error)
}
