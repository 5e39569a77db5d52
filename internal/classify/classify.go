// Package classify defines the vision-classifier contract the pipeline
// consumes, plus the prompts, response schemas and call plumbing shared by
// the provider backends.
package classify

import (
	"context"

	"github.com/realview-labs/realview/internal/inspection"
)

// Classifier is the two-pass vision model contract. Errors are opaque
// per-image failure signals; the pipeline catches them per image.
type Classifier interface {
	// Pass1 classifies the room type shown in the image, whether the image
	// is actionable, and a confidence score.
	Pass1(ctx context.Context, imageDataURL string) (inspection.Pass1Result, error)

	// Pass2 detects whitelisted defect features in an image already gated as
	// an actionable target room.
	Pass2(ctx context.Context, imageDataURL, roomType string) ([]inspection.FeatureDetection, error)
}
