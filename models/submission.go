// File: models/submission.go
package models

import "time"

// Shift is one committed block of the week.
type Shift struct {
	Day       DayLabel  `bson:"day" json:"day"`
	TimeRange string    `bson:"timeRange" json:"time"`
	Kind      BlockKind `bson:"kind" json:"type"`
}

// SubmissionPayload is built once at submit time and handed to the gateway.
type SubmissionPayload struct {
	TeamName     string  `json:"teamName"`
	UserName     string  `json:"userName"`
	UserEmail    string  `json:"userEmail"`
	SelectedDate string  `json:"selectedDate"`
	Shifts       []Shift `json:"allShifts"`
	TotalHours   int     `json:"totalHours"`
}

// ShiftRecord is a shift row already present in the submission store.
type ShiftRecord struct {
	ID        string    `bson:"id" json:"id"`
	Team      string    `bson:"team" json:"team"`
	Name      string    `bson:"name" json:"name"`
	Date      string    `bson:"date" json:"date"`
	Day       DayLabel  `bson:"day" json:"day"`
	TimeRange string    `bson:"timeRange" json:"timeRange"`
	Kind      BlockKind `bson:"kind" json:"kind"`
	Archived  bool      `bson:"archived" json:"archived"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// SubmitResult is what the submission gateway reports back. It never carries a
// Go error so callers can always render it.
type SubmitResult struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Archived   int    `json:"archived"`
	Created    int    `json:"created"`
	SummaryURL string `json:"summaryUrl,omitempty"`
}

// FetchStatus distinguishes "nothing configured" from "fetch failed".
type FetchStatus string

const (
	FetchLoaded FetchStatus = "loaded"
	FetchEmpty  FetchStatus = "empty"
	FetchFailed FetchStatus = "failed"
)

// RuleResult is the outcome of a configuration fetch.
type RuleResult struct {
	Rules  []BlockRule `json:"rules"`
	Status FetchStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// StaffResult is the outcome of a staff directory fetch.
type StaffResult struct {
	Staff  []StaffRecord `json:"staff"`
	Status FetchStatus   `json:"status"`
	Error  string        `json:"error,omitempty"`
}
