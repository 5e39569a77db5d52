package inspection

// Room type values Pass 1 may return.
const (
	RoomKitchen    = "kitchen"
	RoomBathroom   = "bathroom"
	RoomBedroom    = "bedroom"
	RoomLivingRoom = "living_room"
	RoomDiningRoom = "dining_room"
	RoomHallway    = "hallway"
	RoomGarage     = "garage"
	RoomExterior   = "exterior"
	RoomUnknown    = "unknown"
)

// RoomTypes is the closed set of room classifications.
var RoomTypes = []string{
	RoomKitchen,
	RoomBathroom,
	RoomBedroom,
	RoomLivingRoom,
	RoomDiningRoom,
	RoomHallway,
	RoomGarage,
	RoomExterior,
	RoomUnknown,
}

// TargetRoomTypes are the rooms that gate Pass 2 and the target/review
// partition. Fixed, closed set.
var TargetRoomTypes = []string{RoomKitchen, RoomBathroom}

// FeatureWhitelist enumerates the recognized feature ids per target room
// type. Pass 2 output is filtered against it; unknown ids are dropped.
var FeatureWhitelist = map[string][]string{
	RoomKitchen: {
		"water_damage",
		"mold",
		"broken_fixture",
		"stained_carpet",
		"cracked_tile",
	},
	RoomBathroom: {
		"water_damage",
		"mold",
		"broken_fixture",
		"stained_carpet",
		"cracked_tile",
	},
}

// consolidationMinImages is the evidence floor for asserting a room-level
// finding: a single photo is not enough.
const consolidationMinImages = 2

// IsTargetRoom reports whether roomType is one of the target room types.
func IsTargetRoom(roomType string) bool {
	for _, t := range TargetRoomTypes {
		if roomType == t {
			return true
		}
	}
	return false
}

// KnownRoomType reports whether roomType is in the closed room set.
func KnownRoomType(roomType string) bool {
	for _, t := range RoomTypes {
		if roomType == t {
			return true
		}
	}
	return false
}

// KnownFeature reports whether featureID is whitelisted for roomType.
func KnownFeature(roomType, featureID string) bool {
	for _, id := range FeatureWhitelist[roomType] {
		if featureID == id {
			return true
		}
	}
	return false
}

// EligibleForPass2 reports whether an image's Pass 1 result qualifies it for
// feature detection: actionable and in a target room.
func EligibleForPass2(p1 Pass1Result) bool {
	return p1.Actionable && IsTargetRoom(p1.RoomType)
}

// ConsolidationEligible reports whether actionableImages photos of the same
// room are enough evidence to build a consolidated room record.
func ConsolidationEligible(actionableImages int) bool {
	return actionableImages >= consolidationMinImages
}
