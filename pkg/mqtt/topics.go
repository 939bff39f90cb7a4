package mqtt

import "fmt"

// Topic constants for the occupancy data flow
const (
	// Raw occupancy readings published by the scraper (input)
	TopicRawOccupancy = "gym/raw/occupancy/+"

	// Stored reading notifications published by the collector (output)
	TopicReadingBase = "gym/reading"
)

// RawOccupancyTopic constructs a raw occupancy topic for a specific location
// Pattern: gym/raw/occupancy/{location}
func RawOccupancyTopic(location string) string {
	return fmt.Sprintf("gym/raw/occupancy/%s", location)
}

// StoredReadingTopic constructs the notification topic for a specific location
// Pattern: gym/reading/{location}
// Published after the collector persists a reading
func StoredReadingTopic(location string) string {
	return fmt.Sprintf("gym/reading/%s", location)
}
