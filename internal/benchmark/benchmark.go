// Package benchmark folds case records and the reviewer feedback log into
// classification and pipeline statistics. Every computation is a pure
// function of its inputs: nothing is cached, so two calls over the same
// state produce identical summaries.
package benchmark

import (
	"sort"
	"time"

	"github.com/realview-labs/realview/internal/inspection"
)

// ClassificationStats are precision/recall over reviewer-labeled Pass 1
// results, using the latest entry per image as ground truth.
type ClassificationStats struct {
	Correct        int     `json:"correct" yaml:"correct"`
	FalsePositives int     `json:"false_positives" yaml:"falsepositives"`
	FalseNegatives int     `json:"false_negatives" yaml:"falsenegatives"`
	Precision      float64 `json:"precision" yaml:"precision"`
	Recall         float64 `json:"recall" yaml:"recall"`
}

// FeatureFeedbackStats tally resolved feature-level verdicts.
type FeatureFeedbackStats struct {
	Agreements    int `json:"agreements" yaml:"agreements"`
	Disagreements int `json:"disagreements" yaml:"disagreements"`
}

// FunnelStats describe how much of the photo stream Pass 1 filters out.
type FunnelStats struct {
	TotalImages      int     `json:"total_images" yaml:"totalimages"`
	FailedImages     int     `json:"failed_images" yaml:"failedimages"`
	TargetRoomImages int     `json:"target_room_images" yaml:"targetroomimages"`
	NoiseReduction   float64 `json:"noise_reduction" yaml:"noisereduction"`
}

// FeatureCount is one leaderboard row.
type FeatureCount struct {
	FeatureID string `json:"feature_id" yaml:"featureid"`
	Count     int    `json:"count" yaml:"count"`
}

// PropertyRisk ranks a property for the review queue.
type PropertyRisk struct {
	PropertyID      string `json:"property_id" yaml:"propertyid"`
	HighSeverity    int    `json:"high_severity" yaml:"highseverity"`
	TotalDetections int    `json:"total_detections" yaml:"totaldetections"`
}

// Summary is the read-only benchmark result served to the review UI.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generatedat"`
	Properties  int       `json:"properties" yaml:"properties"`

	Classification  ClassificationStats  `json:"classification" yaml:"classification"`
	FeatureFeedback FeatureFeedbackStats `json:"feature_feedback" yaml:"featurefeedback"`
	Funnel          FunnelStats          `json:"funnel" yaml:"funnel"`

	RoomDistribution  map[string]int `json:"room_distribution" yaml:"roomdistribution"`
	ActionabilityRate float64        `json:"actionability_rate" yaml:"actionabilityrate"`

	SeverityCounts map[inspection.Severity]int `json:"severity_counts" yaml:"severitycounts"`
	Leaderboards   map[string][]FeatureCount   `json:"leaderboards" yaml:"leaderboards"`

	AvgPass1Confidence float64 `json:"avg_pass1_confidence" yaml:"avgpass1confidence"`
	AvgPass2Confidence float64 `json:"avg_pass2_confidence" yaml:"avgpass2confidence"`

	AtRisk []PropertyRisk `json:"at_risk" yaml:"atrisk"`
}

// Compute builds the summary from current case records and the full
// feedback log.
func Compute(cases []*inspection.CaseRecord, entries []inspection.FeedbackEntry) *Summary {
	s := &Summary{
		GeneratedAt:      time.Now().UTC(),
		Properties:       len(cases),
		RoomDistribution: map[string]int{},
		SeverityCounts:   map[inspection.Severity]int{},
		Leaderboards:     map[string][]FeatureCount{},
	}

	s.Classification, s.FeatureFeedback = resolveFeedback(entries)

	var pass1Sum float64
	var pass1Count int
	var pass2Sum float64
	var pass2Count int
	var targetTotal, targetActionable int
	leaderboardCounts := map[string]map[string]int{}
	for _, room := range inspection.TargetRoomTypes {
		leaderboardCounts[room] = map[string]int{}
	}

	for _, record := range cases {
		risk := PropertyRisk{PropertyID: record.PropertyID}

		for _, img := range record.Images {
			s.Funnel.TotalImages++
			if img.Failed() || img.Pass1 == nil {
				s.Funnel.FailedImages++
				continue
			}

			s.RoomDistribution[img.Pass1.RoomType]++
			pass1Sum += img.Pass1.Confidence
			pass1Count++

			if inspection.IsTargetRoom(img.Pass1.RoomType) {
				s.Funnel.TargetRoomImages++
				targetTotal++
				if img.Pass1.Actionable {
					targetActionable++
				}
			}

			for _, d := range img.Pass2 {
				// Severity and leaderboard counts run over raw detections,
				// not the deduplicated room records.
				s.SeverityCounts[d.Severity]++
				pass2Sum += d.Confidence
				pass2Count++

				if counts, ok := leaderboardCounts[img.Pass1.RoomType]; ok {
					counts[d.FeatureID]++
				}

				risk.TotalDetections++
				if d.Severity == inspection.SeverityHigh {
					risk.HighSeverity++
				}
			}
		}

		s.AtRisk = append(s.AtRisk, risk)
	}

	classified := s.Funnel.TotalImages - s.Funnel.FailedImages
	s.Funnel.NoiseReduction = ratio(classified-s.Funnel.TargetRoomImages, classified)
	s.ActionabilityRate = ratio(targetActionable, targetTotal)
	s.AvgPass1Confidence = mean(pass1Sum, pass1Count)
	s.AvgPass2Confidence = mean(pass2Sum, pass2Count)

	for room, counts := range leaderboardCounts {
		s.Leaderboards[room] = rankFeatures(counts)
	}

	sort.Slice(s.AtRisk, func(i, j int) bool {
		a, b := s.AtRisk[i], s.AtRisk[j]
		if a.HighSeverity != b.HighSeverity {
			return a.HighSeverity > b.HighSeverity
		}
		if a.TotalDetections != b.TotalDetections {
			return a.TotalDetections > b.TotalDetections
		}
		return a.PropertyID < b.PropertyID
	})

	return s
}

// resolveFeedback applies latest-wins per key and tallies the authoritative
// judgments. A later entry for the same key silently supersedes the earlier
// one; the earlier one contributes nothing.
func resolveFeedback(entries []inspection.FeedbackEntry) (ClassificationStats, FeatureFeedbackStats) {
	latest := map[inspection.FeedbackKey]inspection.FeedbackEntry{}
	for _, entry := range entries {
		latest[entry.Key()] = entry
	}

	var cls ClassificationStats
	var ff FeatureFeedbackStats
	for _, entry := range latest {
		if entry.FeatureLevel() {
			switch entry.Verdict {
			case inspection.VerdictAgree:
				ff.Agreements++
			case inspection.VerdictDisagree:
				ff.Disagreements++
			}
			continue
		}
		switch entry.Classification {
		case inspection.ClassificationCorrect:
			cls.Correct++
		case inspection.ClassificationFalsePositive:
			cls.FalsePositives++
		case inspection.ClassificationFalseNegative:
			cls.FalseNegatives++
		}
	}

	cls.Precision = ratio(cls.Correct, cls.Correct+cls.FalsePositives)
	cls.Recall = ratio(cls.Correct, cls.Correct+cls.FalseNegatives)
	return cls, ff
}

// rankFeatures sorts counts descending, ties broken by feature id.
func rankFeatures(counts map[string]int) []FeatureCount {
	ranked := make([]FeatureCount, 0, len(counts))
	for id, count := range counts {
		ranked = append(ranked, FeatureCount{FeatureID: id, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].FeatureID < ranked[j].FeatureID
	})
	return ranked
}

// ratio divides as a fraction, defaulting to 0 when the denominator is
// empty: "no data yet" is a normal state, not an error.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func mean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
