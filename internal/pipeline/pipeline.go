// Package pipeline runs the multi-pass analysis over a property's photos and
// assembles the resulting case record.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/realview-labs/realview/internal/classify"
	"github.com/realview-labs/realview/internal/images"
	"github.com/realview-labs/realview/internal/inspection"
)

// Runner drives Pass 1 and Pass 2 for every image of a property. Images are
// processed concurrently up to the configured limit; one image failing never
// aborts the rest of the run.
type Runner struct {
	classifier  classify.Classifier
	concurrency int
}

// NewRunner returns a Runner using classifier, processing up to concurrency
// images at once.
func NewRunner(classifier classify.Classifier, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{classifier: classifier, concurrency: concurrency}
}

// ProcessFolder loads the images in dir and produces the case record for
// propertyID.
func (r *Runner) ProcessFolder(ctx context.Context, propertyID, dir string) (*inspection.CaseRecord, error) {
	imgs, err := images.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load images for property %s: %w", propertyID, err)
	}
	if len(imgs) == 0 {
		slog.Warn("No images found for property", "property_id", propertyID, "dir", dir)
	}
	return r.ProcessImages(ctx, propertyID, imgs), nil
}

// ProcessImages runs both passes over imgs, consolidates rooms and builds the
// case record.
func (r *Runner) ProcessImages(ctx context.Context, propertyID string, imgs []images.Image) *inspection.CaseRecord {
	records := make([]inspection.ImageRecord, len(imgs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, r.concurrency)

	for i, img := range imgs {
		wg.Add(1)
		go func(idx int, img images.Image) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			records[idx] = r.processImage(ctx, img)
		}(i, img)
	}

	// Consolidation is a barrier over the whole group: every image must have
	// finished both passes before rooms are merged.
	wg.Wait()

	rooms := ConsolidateRooms(records)
	return BuildCase(propertyID, records, rooms)
}

// processImage runs Pass 1 and, when the gate passes, Pass 2 for one image.
// Classifier failures are terminal for the image only.
func (r *Runner) processImage(ctx context.Context, img images.Image) inspection.ImageRecord {
	record := inspection.ImageRecord{Filename: img.Filename}

	slog.Info("Running pass1", "filename", img.Filename)
	p1, err := r.classifier.Pass1(ctx, img.DataURL)
	if err != nil {
		slog.Error("Pass1 failed", "filename", img.Filename, "err", err)
		record.Error = fmt.Sprintf("pass1 failed: %v", err)
		return record
	}
	record.Pass1 = &p1

	if !inspection.EligibleForPass2(p1) {
		return record
	}

	slog.Info("Running pass2", "filename", img.Filename, "room_type", p1.RoomType)
	detections, err := r.classifier.Pass2(ctx, img.DataURL, p1.RoomType)
	if err != nil {
		slog.Error("Pass2 failed", "filename", img.Filename, "err", err)
		record.Error = fmt.Sprintf("pass2 failed: %v", err)
		return record
	}

	record.Pass2 = filterDetections(img.Filename, p1.RoomType, detections)
	return record
}

// filterDetections drops detections whose feature id is not whitelisted for
// the room. Unknown ids are a data-quality warning, never fatal.
func filterDetections(filename, roomType string, detections []inspection.FeatureDetection) []inspection.FeatureDetection {
	kept := make([]inspection.FeatureDetection, 0, len(detections))
	for _, d := range detections {
		if !inspection.KnownFeature(roomType, d.FeatureID) {
			slog.Warn("Dropping detection with unknown feature id",
				"filename", filename, "room_type", roomType, "feature_id", d.FeatureID)
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// PartitionImages splits filenames into the actionable-target set and
// everything else. Failed images always land in review, so the two lists
// cover every image exactly once.
func PartitionImages(records []inspection.ImageRecord) (target, review []string) {
	target = []string{}
	review = []string{}
	for _, rec := range records {
		if !rec.Failed() && rec.Pass1 != nil && inspection.EligibleForPass2(*rec.Pass1) {
			target = append(target, rec.Filename)
		} else {
			review = append(review, rec.Filename)
		}
	}
	return target, review
}
