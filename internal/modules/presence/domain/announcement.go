package domain

import "time"

const (
	ActivityReading = "reading"
	ActivityIdle    = "idle"
)

// Announcement tells the hub what the user is doing right now. It is never
// stored locally.
type Announcement struct {
	ActivityType string
	ActivityName string
	SentAt       time.Time
}
