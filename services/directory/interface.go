package directory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"officescheduler/config"
	ruleRepo "officescheduler/database/repository/rule"
	staffRepo "officescheduler/database/repository/staff"
	"officescheduler/models"
)

// ConfigFetcher loads a team's block rules. It never returns an error: a
// failed fetch degrades to an empty rule set with Status FetchFailed.
type ConfigFetcher interface {
	Fetch(ctx context.Context, team string) models.RuleResult
}

// StaffDirectory lists the staff of a team, with the same degradation rules.
type StaffDirectory interface {
	Fetch(ctx context.Context, team string) models.StaffResult
}

// DefaultConfigFetcher implements ConfigFetcher.
type DefaultConfigFetcher struct {
	Teams   *config.TeamDirectory
	Repo    ruleRepo.RuleRepository
	Timeout time.Duration
	Logger  *zap.Logger
}

// DefaultStaffDirectory implements StaffDirectory.
type DefaultStaffDirectory struct {
	Repo    staffRepo.StaffRepository
	Timeout time.Duration
	Logger  *zap.Logger
}
