// Package inspection defines the core domain records produced by the
// property-inspection pipeline and the reviewer feedback attached to them.
package inspection

import "time"

// Severity grades a detected feature.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a recognized severity grade.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Classification is a reviewer's image-level judgment of the Pass 1 result.
type Classification string

const (
	ClassificationCorrect       Classification = "correct"
	ClassificationFalsePositive Classification = "fp"
	ClassificationFalseNegative Classification = "fn"
)

// Valid reports whether c is a recognized classification.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationCorrect, ClassificationFalsePositive, ClassificationFalseNegative:
		return true
	}
	return false
}

// Verdict is a reviewer's feature-level judgment of a single detection.
type Verdict string

const (
	VerdictAgree    Verdict = "agree"
	VerdictDisagree Verdict = "disagree"
)

// Valid reports whether v is a recognized verdict.
func (v Verdict) Valid() bool {
	return v == VerdictAgree || v == VerdictDisagree
}

// Pass1Result is the room-gating output for a single image.
type Pass1Result struct {
	RoomType   string  `json:"room_type"`
	Actionable bool    `json:"actionable"`
	Confidence float64 `json:"confidence"`
}

// FeatureDetection is one detected defect in one image.
type FeatureDetection struct {
	FeatureID  string   `json:"feature_id"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
	Evidence   string   `json:"evidence"`
	// SourceFile is set on consolidated room features to point back at the
	// image the kept occurrence came from.
	SourceFile string `json:"source_file,omitempty"`
}

// ImageRecord is the immutable per-image pipeline output. Pass2 is non-empty
// only when Pass1 marked the image as an actionable target room. Error holds
// the terminal failure marker for images the classifier could not process: a
// Pass 1 failure leaves both result fields empty, a Pass 2 failure keeps the
// Pass1 result alongside the error.
type ImageRecord struct {
	Filename string             `json:"filename"`
	Pass1    *Pass1Result       `json:"pass1,omitempty"`
	Pass2    []FeatureDetection `json:"pass2,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Failed reports whether the image hit a terminal classifier failure.
func (r ImageRecord) Failed() bool {
	return r.Error != ""
}

// RoomRecord is the consolidated finding set for one room type within a
// property. It exists only for rooms with enough actionable photo evidence.
type RoomRecord struct {
	RoomType          string             `json:"room_type"`
	ConfirmedFeatures []FeatureDetection `json:"confirmed_features"`
}

// CaseRecord is the full pipeline output for one property. Re-running the
// pipeline replaces the record wholesale; nothing downstream mutates it.
type CaseRecord struct {
	PropertyID   string        `json:"property_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Images       []ImageRecord `json:"images"`
	Rooms        []RoomRecord  `json:"rooms"`
	TargetImages []string      `json:"target_images"`
	ReviewImages []string      `json:"review_images"`
}

// Image returns the image record for filename, if present.
func (c *CaseRecord) Image(filename string) (ImageRecord, bool) {
	for _, img := range c.Images {
		if img.Filename == filename {
			return img, true
		}
	}
	return ImageRecord{}, false
}

// FeedbackEntry is one appended reviewer judgment. Image-level entries carry
// Classification; feature-level entries carry FeatureID and Verdict. Entries
// are never updated in place: corrections append a new entry for the same
// key and the latest entry wins.
type FeedbackEntry struct {
	ID             string         `json:"id"`
	PropertyID     string         `json:"property_id"`
	Filename       string         `json:"filename"`
	FeatureID      string         `json:"feature_id,omitempty"`
	Classification Classification `json:"classification,omitempty"`
	Verdict        Verdict        `json:"verdict,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// FeatureLevel reports whether the entry judges a single detection rather
// than the whole image.
func (e FeedbackEntry) FeatureLevel() bool {
	return e.FeatureID != ""
}

// FeedbackKey identifies the judgment target an entry belongs to. FeatureID
// is empty for image-level entries.
type FeedbackKey struct {
	PropertyID string
	Filename   string
	FeatureID  string
}

// Key returns the resolution key for the entry.
func (e FeedbackEntry) Key() FeedbackKey {
	return FeedbackKey{PropertyID: e.PropertyID, Filename: e.Filename, FeatureID: e.FeatureID}
}
