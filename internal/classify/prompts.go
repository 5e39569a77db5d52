package classify

import (
	"fmt"
	"strings"

	"github.com/realview-labs/realview/internal/inspection"
)

// Pass1SystemPrompt gates images by room type and actionability.
const Pass1SystemPrompt = "You are an expert property inspector. " +
	"Classify the room type shown in the image, whether the image is actionable, " +
	"and provide a confidence score between 0 and 1. " +
	"Only use the allowed room_type values."

const pass2SystemPrompt = "You are an expert property inspector. " +
	"Identify issues and features strictly from the provided whitelist of feature IDs. " +
	"Return only items that are visible. Use severity and confidence scores."

// Pass2SystemPrompt builds the detection prompt for roomType, listing the
// feature ids the model is allowed to return.
func Pass2SystemPrompt(roomType string) string {
	whitelist := inspection.FeatureWhitelist[roomType]
	return fmt.Sprintf("%s\nRoom type: %s\nAllowed feature IDs: %s",
		pass2SystemPrompt, roomType, strings.Join(whitelist, ", "))
}
