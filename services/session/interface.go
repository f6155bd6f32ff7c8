package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"officescheduler/config"
	"officescheduler/models"
	"officescheduler/services/directory"
	"officescheduler/services/schedule"
	"officescheduler/services/storage"
	"officescheduler/services/submission"
)

// ScheduleSessionService drives one person's weekly form from team choice to
// submission. Every method that changes state returns the resulting view.
type ScheduleSessionService interface {
	Teams() []string
	Start(ctx context.Context, team string) (*models.SessionView, error)
	Get(ctx context.Context, id string) (*models.SessionView, error)
	ChangeTeam(ctx context.Context, id, team string) (*models.SessionView, error)
	SelectStaff(ctx context.Context, id, name string) (*models.SessionView, error)
	SetEmail(ctx context.Context, id, email string) (*models.SessionView, error)
	SetTarget(ctx context.Context, id string, hours int) (*models.SessionView, error)
	SetDate(ctx context.Context, id, date string) (*models.SessionView, error)
	Toggle(ctx context.Context, id, day, slot string) (*models.SessionView, bool, error)
	Submit(ctx context.Context, id, image string) (*models.SubmitResult, error)
	Export(ctx context.Context, id string) ([]byte, string, error)
	End(ctx context.Context, id string) error
}

// DefaultScheduleSessionService implements ScheduleSessionService.
// Storage may be nil, in which case summary images are ignored.
type DefaultScheduleSessionService struct {
	Store     Store
	Directory *config.TeamDirectory
	Rules     directory.ConfigFetcher
	Staff     directory.StaffDirectory
	Gateway   submission.Gateway
	Storage   storage.SummaryStorage
	Grid      schedule.Grid
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func() string

	locks lockTable
}
