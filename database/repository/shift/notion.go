package shiftRepo

import (
	"context"

	"officescheduler/models"
	"officescheduler/services/notion"
)

type notionShiftRepo struct {
	client *notion.Client
}

// NewNotionShiftRepo writes shift rows to Notion submission databases.
func NewNotionShiftRepo(client *notion.Client) ShiftRepository {
	return &notionShiftRepo{client: client}
}

func (r *notionShiftRepo) FindByDate(ctx context.Context, targetID, date string) ([]models.ShiftRecord, error) {
	dsID, err := r.client.DataSourceID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	filter := map[string]any{
		"property": "Date",
		"date":     map[string]any{"equals": date},
	}
	pages, err := r.client.QueryAll(ctx, dsID, filter)
	if err != nil {
		return nil, err
	}

	records := make([]models.ShiftRecord, 0, len(pages))
	for _, p := range pages {
		if p.Archived {
			continue
		}
		var team string
		if teams := p.Prop("Team").MultiSelectNames(); len(teams) > 0 {
			team = teams[0]
		}
		records = append(records, models.ShiftRecord{
			ID:        p.ID,
			Team:      team,
			Name:      p.Prop("Name").PlainText(),
			Date:      p.Prop("Date").DateStart(),
			Day:       models.DayLabel(p.Prop("Day").SelectName()),
			TimeRange: p.Prop("Time Slot").SelectName(),
			Kind:      models.ParseBlockKind(p.Prop("Type").SelectName()),
		})
	}
	return records, nil
}

func (r *notionShiftRepo) Archive(ctx context.Context, _ string, recordID string) error {
	return r.client.ArchivePage(ctx, recordID)
}

func (r *notionShiftRepo) Create(ctx context.Context, targetID string, record models.ShiftRecord) (string, error) {
	dsID, err := r.client.DataSourceID(ctx, targetID)
	if err != nil {
		return "", err
	}
	page, err := r.client.CreatePage(ctx, dsID, map[string]any{
		"Name":      notion.TitleValue(record.Name),
		"Day":       notion.SelectValue(string(record.Day)),
		"Time Slot": notion.SelectValue(record.TimeRange),
		"Type":      notion.SelectValue(string(record.Kind)),
		"Team":      notion.MultiSelectValue(record.Team),
		"Date":      notion.DateStartValue(record.Date),
	})
	if err != nil {
		return "", err
	}
	return page.ID, nil
}
