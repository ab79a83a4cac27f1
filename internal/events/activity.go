// Package events defines the payloads emitted for retained activity samples.
package events

import "time"

// EventTypeRunningSampleFiltered is carried in the event_type header of each published record.
const EventTypeRunningSampleFiltered = "activity.running_sample_filtered"

// RunningSampleFiltered is emitted for every row kept by the running filter.
// Row is the 1-based data row of the sample in the source file.
type RunningSampleFiltered struct {
	RunID        string            `json:"run_id"`
	Row          int               `json:"row"`
	ActivityType string            `json:"activity_type"`
	Fields       map[string]string `json:"fields"`
	RiskLevel    int               `json:"risk_level"`
	Decision     string            `json:"decision"`
	Source       string            `json:"source"`
	FilteredAt   time.Time         `json:"filtered_at"`
}
