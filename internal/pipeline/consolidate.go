package pipeline

import (
	"log/slog"
	"sort"

	"github.com/realview-labs/realview/internal/inspection"
)

// ConsolidateRooms merges per-image detections into room-level records.
// A room record exists iff the room has at least two actionable images;
// smaller groups produce nothing, since a single photo is not enough evidence
// for a confirmed room-level finding.
func ConsolidateRooms(records []inspection.ImageRecord) []inspection.RoomRecord {
	groups := map[string][]inspection.ImageRecord{}
	for _, rec := range records {
		if rec.Failed() || rec.Pass1 == nil || !rec.Pass1.Actionable {
			continue
		}
		groups[rec.Pass1.RoomType] = append(groups[rec.Pass1.RoomType], rec)
	}

	var rooms []inspection.RoomRecord
	for roomType, group := range groups {
		if !inspection.ConsolidationEligible(len(group)) {
			slog.Info("Skipping room consolidation, not enough actionable images",
				"room_type", roomType, "images", len(group))
			continue
		}
		rooms = append(rooms, inspection.RoomRecord{
			RoomType:          roomType,
			ConfirmedFeatures: mergeDetections(group),
		})
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomType < rooms[j].RoomType })
	return rooms
}

// mergeDetections dedupes detections across a room group by feature id,
// keeping the occurrence with the highest confidence and recording which
// image it came from. The result is sorted by confidence descending, then
// feature id, so consolidation output is deterministic.
func mergeDetections(group []inspection.ImageRecord) []inspection.FeatureDetection {
	best := map[string]inspection.FeatureDetection{}
	for _, rec := range group {
		for _, d := range rec.Pass2 {
			d.SourceFile = rec.Filename
			current, seen := best[d.FeatureID]
			if !seen || d.Confidence > current.Confidence {
				best[d.FeatureID] = d
			}
		}
	}

	merged := make([]inspection.FeatureDetection, 0, len(best))
	for _, d := range best {
		merged = append(merged, d)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		return merged[i].FeatureID < merged[j].FeatureID
	})
	return merged
}
