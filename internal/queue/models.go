package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProbing    Status = "probing"
	StatusExtracting Status = "extracting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProbing,
	StatusExtracting,
	StatusCompleted,
	StatusFailed,
}

var processingStatuses = map[Status]struct{}{
	StatusProbing:    {},
	StatusExtracting: {},
}

// Item represents one title persisted in SQLite.
type Item struct {
	ID            int64
	TitleID       string
	SourcePath    string
	Status        Status
	ErrorMessage  string
	ArtifactCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SetFailed marks the item failed with the given message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = strings.TrimSpace(message)
}

// IsProcessing reports whether the item is mid-pipeline.
func (i *Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}
