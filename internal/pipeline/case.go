package pipeline

import (
	"time"

	"github.com/realview-labs/realview/internal/inspection"
)

// BuildCase assembles the immutable case record for one pipeline run. The
// timestamp is stamped here; the images and rooms are taken as-is. Callers
// re-running a property replace the previous record wholesale.
func BuildCase(propertyID string, records []inspection.ImageRecord, rooms []inspection.RoomRecord) *inspection.CaseRecord {
	target, review := PartitionImages(records)
	return &inspection.CaseRecord{
		PropertyID:   propertyID,
		CreatedAt:    time.Now().UTC(),
		Images:       records,
		Rooms:        rooms,
		TargetImages: target,
		ReviewImages: review,
	}
}
