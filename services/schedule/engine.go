// Package schedule reconciles a team's remote block configuration with a
// person's own picks. Everything here is pure: no I/O, no shared state.
package schedule

import (
	"officescheduler/models"
)

// BlockHours is the length of one grid cell.
const BlockHours = 2

// Grid is the set of days and slots rendered to the user.
type Grid struct {
	Days  []models.DayLabel
	Slots []models.TimeSlot
}

// DefaultGrid is the fixed 7x5 week.
func DefaultGrid() Grid {
	return Grid{Days: models.Days, Slots: models.TimeSlots}
}

// Contains reports whether key addresses a cell of g.
func (g Grid) Contains(key models.BlockKey) bool {
	for _, d := range g.Days {
		if d != key.Day {
			continue
		}
		for _, s := range g.Slots {
			if s.StartHour() == key.StartHour {
				return true
			}
		}
	}
	return false
}

// RuleSet is a team's configuration indexed by key. The first rule seen for a
// key wins; later duplicates are kept in Rules() but never consulted.
type RuleSet struct {
	rules []models.BlockRule
	index map[models.BlockKey]models.BlockRule
}

// NewRuleSet indexes rules.
func NewRuleSet(rules []models.BlockRule) RuleSet {
	index := make(map[models.BlockKey]models.BlockRule, len(rules))
	for _, r := range rules {
		if _, dup := index[r.Key]; dup {
			continue
		}
		index[r.Key] = r
	}
	return RuleSet{rules: rules, index: index}
}

// Rules returns the raw rule list in fetch order.
func (rs RuleSet) Rules() []models.BlockRule {
	return rs.rules
}

// Lookup returns the effective rule for key.
func (rs RuleSet) Lookup(key models.BlockKey) (models.BlockRule, bool) {
	r, ok := rs.index[key]
	return r, ok
}

// Classify returns the rule governing the (day, slot) cell, or the Optional
// default when the configuration says nothing about it.
func Classify(day models.DayLabel, slot models.TimeSlot, rules RuleSet) models.BlockRule {
	return ClassifyKey(models.KeyFor(day, slot), rules)
}

// ClassifyKey is Classify for an already built key.
func ClassifyKey(key models.BlockKey, rules RuleSet) models.BlockRule {
	if r, ok := rules.Lookup(key); ok {
		return r
	}
	return models.BlockRule{Key: key, Kind: models.KindOptional}
}

// Toggle flips key in sel. Keys that are not Optional, or that fall outside
// the fixed week, leave sel untouched and report false.
func Toggle(sel Selection, key models.BlockKey, rules RuleSet) (Selection, bool) {
	if !key.Valid() {
		return sel, false
	}
	if ClassifyKey(key, rules).Kind != models.KindOptional {
		return sel, false
	}
	if sel.Has(key) {
		return sel.without(key), true
	}
	return sel.with(key), true
}

// ComputeTotals counts Mandatory blocks over the indexed rule set rather than
// the rendered grid, so a Mandatory rule for a cell the grid never shows still
// counts. Each key counts once (first rule wins) and rows without a readable
// start hour never reach the rule set. GridMandatoryCount reports the rendered
// figure for comparison.
func ComputeTotals(grid Grid, rules RuleSet, sel Selection) models.Totals {
	mandatory := 0
	for key, r := range rules.index {
		if r.Kind == models.KindMandatory && key.StartHour >= 0 {
			mandatory++
		}
	}

	gridMandatory := 0
	for _, day := range grid.Days {
		for _, slot := range grid.Slots {
			if Classify(day, slot, rules).Kind == models.KindMandatory {
				gridMandatory++
			}
		}
	}

	return models.Totals{
		MandatoryCount:     mandatory,
		GridMandatoryCount: gridMandatory,
		OptionalCount:      sel.Len(),
		TotalHours:         BlockHours * (mandatory + sel.Len()),
	}
}

// CanSubmit reports whether a week of totalHours meets target.
func CanSubmit(totalHours, target int) bool {
	return target > 0 && totalHours >= target
}

// BuildSubmission lists the shifts to persist, days outer and slots inner.
func BuildSubmission(
	grid Grid,
	rules RuleSet,
	sel Selection,
	teamName, userName, userEmail, selectedDate string,
) models.SubmissionPayload {
	var shifts []models.Shift
	for _, day := range grid.Days {
		for _, slot := range grid.Slots {
			rule := Classify(day, slot, rules)
			switch {
			case rule.Kind == models.KindMandatory:
				shifts = append(shifts, models.Shift{Day: day, TimeRange: slot.Compact(), Kind: models.KindMandatory})
			case rule.Kind == models.KindOptional && sel.Has(rule.Key):
				shifts = append(shifts, models.Shift{Day: day, TimeRange: slot.Compact(), Kind: models.KindOptional})
			}
		}
	}

	return models.SubmissionPayload{
		TeamName:     teamName,
		UserName:     userName,
		UserEmail:    userEmail,
		SelectedDate: selectedDate,
		Shifts:       shifts,
		TotalHours:   ComputeTotals(grid, rules, sel).TotalHours,
	}
}

// Render produces the per-cell view, one row per slot.
func Render(grid Grid, rules RuleSet, sel Selection) models.GridView {
	rows := make([][]models.CellView, 0, len(grid.Slots))
	for _, slot := range grid.Slots {
		row := make([]models.CellView, 0, len(grid.Days))
		for _, day := range grid.Days {
			rule := Classify(day, slot, rules)
			row = append(row, models.CellView{
				Day:       day,
				Slot:      slot,
				Key:       rule.Key.String(),
				Kind:      rule.Kind,
				Label:     rule.Label,
				Selected:  rule.Kind == models.KindOptional && sel.Has(rule.Key),
				Togglable: rule.Kind == models.KindOptional,
			})
		}
		rows = append(rows, row)
	}
	return models.GridView{Days: grid.Days, Slots: grid.Slots, Rows: rows}
}
