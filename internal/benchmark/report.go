package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/realview-labs/realview/internal/inspection"
)

// PrintSummary prints a human-readable benchmark summary.
func (s *Summary) PrintSummary() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("REALVIEW BENCHMARK SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Generated: %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Properties: %d\n", s.Properties)
	fmt.Println()

	fmt.Println("CLASSIFICATION (reviewer ground truth)")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Correct: %d\n", s.Classification.Correct)
	fmt.Printf("False Positives: %d\n", s.Classification.FalsePositives)
	fmt.Printf("False Negatives: %d\n", s.Classification.FalseNegatives)
	fmt.Printf("Precision: %.1f%%\n", s.Classification.Precision*100)
	fmt.Printf("Recall: %.1f%%\n", s.Classification.Recall*100)
	fmt.Printf("Feature Verdicts: %d agree / %d disagree\n",
		s.FeatureFeedback.Agreements, s.FeatureFeedback.Disagreements)
	fmt.Println()

	fmt.Println("FUNNEL")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Total Images: %d\n", s.Funnel.TotalImages)
	fmt.Printf("Failed Images: %d\n", s.Funnel.FailedImages)
	fmt.Printf("Kitchen/Bathroom Images: %d\n", s.Funnel.TargetRoomImages)
	fmt.Printf("Noise Reduction: %.1f%%\n", s.Funnel.NoiseReduction*100)
	fmt.Printf("Actionability Rate: %.1f%%\n", s.ActionabilityRate*100)
	fmt.Println()

	fmt.Println("ROOM DISTRIBUTION")
	fmt.Println(strings.Repeat("-", 70))
	for _, room := range sortedKeys(s.RoomDistribution) {
		fmt.Printf("  %s: %d\n", room, s.RoomDistribution[room])
	}
	fmt.Println()

	fmt.Println("SEVERITY BREAKDOWN")
	fmt.Println(strings.Repeat("-", 70))
	for _, sev := range []inspection.Severity{inspection.SeverityHigh, inspection.SeverityMedium, inspection.SeverityLow} {
		fmt.Printf("  %s: %d\n", sev, s.SeverityCounts[sev])
	}
	fmt.Println()

	fmt.Println("DAMAGE LEADERBOARDS")
	fmt.Println(strings.Repeat("-", 70))
	for _, room := range inspection.TargetRoomTypes {
		fmt.Printf("%s:\n", room)
		for _, fc := range s.Leaderboards[room] {
			fmt.Printf("  %s: %d\n", fc.FeatureID, fc.Count)
		}
	}
	fmt.Println()

	fmt.Println("CONFIDENCE")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Mean Pass1 Confidence: %.3f\n", s.AvgPass1Confidence)
	fmt.Printf("Mean Pass2 Confidence: %.3f\n", s.AvgPass2Confidence)
	fmt.Println()

	fmt.Println("AT-RISK PROPERTIES")
	fmt.Println(strings.Repeat("-", 70))
	for i, risk := range s.AtRisk {
		fmt.Printf("%d. %s (high: %d, detections: %d)\n",
			i+1, risk.PropertyID, risk.HighSeverity, risk.TotalDetections)
	}
	fmt.Println(strings.Repeat("=", 70))
}

// SaveToJSON writes the summary to a JSON file.
func (s *Summary) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary to JSON: %w", err)
	}
	return nil
}

// SaveToYAML writes the summary to a YAML file.
func (s *Summary) SaveToYAML(filepath string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode summary to YAML: %w", err)
	}
	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
