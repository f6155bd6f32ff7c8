package session

import (
	"officescheduler/models"
	"officescheduler/services/schedule"
)

func (s *DefaultScheduleSessionService) view(sess *models.ScheduleSession) *models.SessionView {
	grid := s.grid()
	rules := schedule.NewRuleSet(sess.Rules)
	sel := schedule.NewSelection(sess.Selected...)
	totals := schedule.ComputeTotals(grid, rules, sel)

	staff := sess.Staff
	if staff == nil {
		staff = []models.StaffRecord{}
	}

	return &models.SessionView{
		ID:           sess.ID,
		Team:         sess.Team,
		StaffName:    sess.StaffName,
		StaffEmail:   sess.StaffEmail,
		TargetHours:  sess.TargetHours,
		SelectedDate: sess.SelectedDate,
		Totals:       totals,
		CanSubmit:    schedule.CanSubmit(totals.TotalHours, sess.TargetHours),
		Grid:         schedule.Render(grid, rules, sel),
		Staff:        staff,
		RuleStatus:   sess.RuleStatus,
		StaffStatus:  sess.StaffStatus,
		LastResult:   sess.LastResult,
	}
}
