package staffRepo

import (
	"context"
	"errors"
	"math"

	"officescheduler/models"
	"officescheduler/services/notion"
)

type notionStaffRepo struct {
	client     *notion.Client
	databaseID string
}

// NewNotionStaffRepo reads the staff database identified by databaseID.
func NewNotionStaffRepo(client *notion.Client, databaseID string) StaffRepository {
	return &notionStaffRepo{client: client, databaseID: databaseID}
}

func (r *notionStaffRepo) List(ctx context.Context) ([]models.StaffRecord, error) {
	if r.databaseID == "" {
		return nil, errors.New("staff database id is not configured")
	}
	dsID, err := r.client.DataSourceID(ctx, r.databaseID)
	if err != nil {
		return nil, err
	}
	pages, err := r.client.QueryAll(ctx, dsID, nil)
	if err != nil {
		return nil, err
	}

	staff := make([]models.StaffRecord, 0, len(pages))
	for _, p := range pages {
		name := p.Prop("Name").PlainText()
		if name == "" {
			name = models.UnknownStaffName
		}
		staff = append(staff, models.StaffRecord{
			Name:        name,
			Email:       p.Prop("Email").EmailValue(),
			CommitHours: int(math.Round(p.Prop("Commit Hours").NumberValue())),
			Teams:       p.Prop("Team").MultiSelectNames(),
		})
	}
	return staff, nil
}
