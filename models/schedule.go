// File: models/schedule.go
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// DayLabel is one of the seven weekday names shown on the weekly grid.
type DayLabel string

const (
	Monday    DayLabel = "Thứ 2"
	Tuesday   DayLabel = "Thứ 3"
	Wednesday DayLabel = "Thứ 4"
	Thursday  DayLabel = "Thứ 5"
	Friday    DayLabel = "Thứ 6"
	Saturday  DayLabel = "Thứ 7"
	Sunday    DayLabel = "Chủ nhật"
)

// Days is the display and iteration order of the week.
var Days = []DayLabel{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DayIndex returns the position of d in Days, or -1.
func DayIndex(d DayLabel) int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return -1
}

// TimeSlot is an intraday range in its canonical "10h00 -> 12h00" form.
type TimeSlot string

// TimeSlots is the display and iteration order of a day.
var TimeSlots = []TimeSlot{
	"10h00 -> 12h00",
	"12h00 -> 14h00",
	"14h00 -> 16h00",
	"16h00 -> 18h00",
	"18h00 -> 20h00",
}

// StartHour parses the hour before the first "h". Returns -1 when the slot is malformed.
func (s TimeSlot) StartHour() int {
	return parseLeadingHour(string(s))
}

// Compact is the form stored on shift rows: "10h00-12h00".
func (s TimeSlot) Compact() string {
	return strings.ReplaceAll(string(s), " -> ", "-")
}

// SlotForHour finds the canonical slot starting at hour.
func SlotForHour(hour int) (TimeSlot, bool) {
	for _, s := range TimeSlots {
		if s.StartHour() == hour {
			return s, true
		}
	}
	return "", false
}

func parseLeadingHour(raw string) int {
	raw = strings.TrimSpace(raw)
	head, _, _ := strings.Cut(raw, "h")
	hour, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || hour < 0 || hour > 23 {
		return -1
	}
	return hour
}

// BlockKey addresses one cell of the weekly grid. It is the only key type used
// for rule lookup and selection membership.
type BlockKey struct {
	Day       DayLabel `bson:"day" json:"day"`
	StartHour int      `bson:"startHour" json:"startHour"`
}

// KeyFor builds the key of a grid cell.
func KeyFor(day DayLabel, slot TimeSlot) BlockKey {
	return BlockKey{Day: day, StartHour: slot.StartHour()}
}

// ParseSlotKey accepts any of the slot spellings seen at the edges
// ("10h00 -> 12h00", "10h00-12h00", "10h", "10") and returns the key.
func ParseSlotKey(day DayLabel, slot string) (BlockKey, error) {
	hour := parseLeadingHour(slot)
	if hour < 0 {
		return BlockKey{}, fmt.Errorf("invalid time slot %q", slot)
	}
	return BlockKey{Day: day, StartHour: hour}, nil
}

// String renders the key as "Thứ 3-10h".
func (k BlockKey) String() string {
	return fmt.Sprintf("%s-%dh", k.Day, k.StartHour)
}

// Valid reports whether k addresses a cell of the fixed grid.
func (k BlockKey) Valid() bool {
	if DayIndex(k.Day) < 0 {
		return false
	}
	_, ok := SlotForHour(k.StartHour)
	return ok
}

// BlockKind classifies a grid cell.
type BlockKind string

const (
	KindMandatory BlockKind = "Bắt buộc"
	KindOff       BlockKind = "Nghỉ"
	KindOptional  BlockKind = "Tự chọn"
)

// ParseBlockKind maps a remote "Type" value to a kind. Empty or unknown values
// are treated as Off, matching how rows without a type are shown as days off.
func ParseBlockKind(raw string) BlockKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(string(KindMandatory)), "mandatory", "required":
		return KindMandatory
	case strings.ToLower(string(KindOptional)), "optional":
		return KindOptional
	default:
		return KindOff
	}
}

// BlockRule is one remote configuration entry for a team.
type BlockRule struct {
	Key   BlockKey  `bson:"key" json:"key"`
	Kind  BlockKind `bson:"kind" json:"kind"`
	Label string    `bson:"label" json:"label"`
}
