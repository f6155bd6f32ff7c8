package models

import "time"

// ScheduleSession is the state of one person filling in the weekly form.
// It is persisted as JSON by the session store between requests.
type ScheduleSession struct {
	ID           string        `json:"id"`
	Team         string        `json:"team"`
	StaffName    string        `json:"staffName"`
	StaffEmail   string        `json:"staffEmail"`
	TargetHours  int           `json:"targetHours"`
	SelectedDate string        `json:"selectedDate"`
	Selected     []BlockKey    `json:"selected"`
	Rules        []BlockRule   `json:"rules"`
	RuleStatus   FetchStatus   `json:"ruleStatus"`
	RuleError    string        `json:"ruleError,omitempty"`
	Staff        []StaffRecord `json:"staff"`
	StaffStatus  FetchStatus   `json:"staffStatus"`
	StaffError   string        `json:"staffError,omitempty"`
	LastResult   *SubmitResult `json:"lastResult,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// DefaultTargetHours is the commitment shown before a staff member is picked.
const DefaultTargetHours = 30

// Totals summarises the committed hours of a week.
type Totals struct {
	MandatoryCount     int `json:"mandatoryCount"`
	GridMandatoryCount int `json:"gridMandatoryCount"`
	OptionalCount      int `json:"optionalCount"`
	TotalHours         int `json:"totalHours"`
}

// CellView is the render state of one grid cell.
type CellView struct {
	Day       DayLabel  `json:"day"`
	Slot      TimeSlot  `json:"slot"`
	Key       string    `json:"key"`
	Kind      BlockKind `json:"kind"`
	Label     string    `json:"label,omitempty"`
	Selected  bool      `json:"selected"`
	Togglable bool      `json:"togglable"`
}

// GridView holds rows of cells: one row per time slot, one cell per day.
type GridView struct {
	Days  []DayLabel   `json:"days"`
	Slots []TimeSlot   `json:"slots"`
	Rows  [][]CellView `json:"rows"`
}

// SessionView is the API representation of a session.
type SessionView struct {
	ID           string        `json:"id"`
	Team         string        `json:"team"`
	StaffName    string        `json:"staffName"`
	StaffEmail   string        `json:"staffEmail"`
	TargetHours  int           `json:"targetHours"`
	SelectedDate string        `json:"selectedDate"`
	Totals       Totals        `json:"totals"`
	CanSubmit    bool          `json:"canSubmit"`
	Grid         GridView      `json:"grid"`
	Staff        []StaffRecord `json:"staff"`
	RuleStatus   FetchStatus   `json:"ruleStatus"`
	StaffStatus  FetchStatus   `json:"staffStatus"`
	LastResult   *SubmitResult `json:"lastResult,omitempty"`
}
