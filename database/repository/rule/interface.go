// File: database/repository/rule/interface.go
package ruleRepo

import (
	"context"
	"strings"

	"officescheduler/models"
)

// RuleRepository reads a team's block configuration from its source.
type RuleRepository interface {
	GetBySource(ctx context.Context, sourceID string) ([]models.BlockRule, error)
}

// toRule converts one configuration row. Rows whose time slot has no
// readable start hour are dropped.
func toRule(day, timeSlot, kind, label string) (models.BlockRule, bool) {
	key, err := models.ParseSlotKey(models.DayLabel(strings.TrimSpace(day)), timeSlot)
	if err != nil {
		return models.BlockRule{}, false
	}
	return models.BlockRule{
		Key:   key,
		Kind:  models.ParseBlockKind(kind),
		Label: label,
	}, true
}
