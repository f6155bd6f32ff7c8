package ruleRepo

import (
	"context"

	"officescheduler/models"
	"officescheduler/services/notion"
)

// Property names of a team configuration data source.
const (
	propDay      = "Select"
	propTimeSlot = "Time Slot"
	propType     = "Type"
	propLabel    = "Label"
)

type notionRuleRepo struct {
	client *notion.Client
}

// NewNotionRuleRepo reads rules from a Notion database per team.
func NewNotionRuleRepo(client *notion.Client) RuleRepository {
	return &notionRuleRepo{client: client}
}

func (r *notionRuleRepo) GetBySource(ctx context.Context, sourceID string) ([]models.BlockRule, error) {
	dsID, err := r.client.DataSourceID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	pages, err := r.client.QueryAll(ctx, dsID, nil)
	if err != nil {
		return nil, err
	}

	rules := make([]models.BlockRule, 0, len(pages))
	for _, p := range pages {
		rule, ok := toRule(
			p.Prop(propDay).SelectName(),
			p.Prop(propTimeSlot).SelectName(),
			p.Prop(propType).SelectName(),
			p.Prop(propLabel).PlainText(),
		)
		if ok {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}
