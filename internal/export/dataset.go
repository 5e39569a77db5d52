// Package export flattens case records into analysis datasets and reviewer
// workbooks.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/realview-labs/realview/internal/inspection"
)

// DetectionRow is one raw detection flattened for offline analysis. Every
// detection appears once, including duplicates that consolidation would
// merge away.
type DetectionRow struct {
	PropertyID string  `parquet:"property_id" json:"property_id"`
	Filename   string  `parquet:"filename" json:"filename"`
	RoomType   string  `parquet:"room_type" json:"room_type"`
	Actionable bool    `parquet:"actionable" json:"actionable"`
	Pass1Conf  float64 `parquet:"pass1_confidence" json:"pass1_confidence"`
	FeatureID  string  `parquet:"feature_id" json:"feature_id"`
	Severity   string  `parquet:"severity" json:"severity"`
	Confidence float64 `parquet:"confidence" json:"confidence"`
	Evidence   string  `parquet:"evidence" json:"evidence"`
	CreatedAt  int64   `parquet:"created_at,timestamp" json:"created_at"`
}

// FlattenDetections converts case records into per-detection rows.
func FlattenDetections(cases []*inspection.CaseRecord) []DetectionRow {
	var rows []DetectionRow
	for _, record := range cases {
		for _, img := range record.Images {
			if img.Failed() || img.Pass1 == nil {
				continue
			}
			for _, d := range img.Pass2 {
				rows = append(rows, DetectionRow{
					PropertyID: record.PropertyID,
					Filename:   img.Filename,
					RoomType:   img.Pass1.RoomType,
					Actionable: img.Pass1.Actionable,
					Pass1Conf:  img.Pass1.Confidence,
					FeatureID:  d.FeatureID,
					Severity:   string(d.Severity),
					Confidence: d.Confidence,
					Evidence:   d.Evidence,
					CreatedAt:  record.CreatedAt.UnixMilli(),
				})
			}
		}
	}
	return rows
}

// WriteDataset writes rows to path; the extension picks the format
// (.parquet or .jsonl).
func WriteDataset(path string, rows []DetectionRow) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return writeParquet(path, rows)
	case ".jsonl":
		return writeJSONL(path, rows)
	default:
		return fmt.Errorf("unsupported dataset format: %s (supported: .parquet, .jsonl)", filepath.Ext(path))
	}
}

func writeParquet(path string, rows []DetectionRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[DetectionRow](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func writeJSONL(path string, rows []DetectionRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create jsonl file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("failed to encode jsonl row: %w", err)
		}
	}
	return nil
}

// ReadDataset loads detection rows back from a .parquet or .jsonl file.
func ReadDataset(path string) ([]DetectionRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return readParquet(path)
	case ".jsonl":
		return readJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", filepath.Ext(path))
	}
}

func readParquet(path string) ([]DetectionRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[DetectionRow](pf)
	defer reader.Close()

	var rows []DetectionRow
	batch := make([]DetectionRow, 128)
	for {
		n, err := reader.Read(batch)
		if n > 0 {
			rows = append(rows, batch[:n]...)
		}
		if err != nil {
			break
		}
	}
	return rows, nil
}

func readJSONL(path string) ([]DetectionRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jsonl file: %w", err)
	}

	var rows []DetectionRow
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	for decoder.More() {
		var row DetectionRow
		if err := decoder.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode jsonl row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
