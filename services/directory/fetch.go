package directory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"officescheduler/models"
)

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (f *DefaultConfigFetcher) Fetch(ctx context.Context, team string) models.RuleResult {
	entry, ok := f.Teams.Lookup(team)
	if !ok || entry.ConfigID == "" {
		f.Logger.Info("no configuration source for team; all blocks optional", zap.String("team", team))
		return models.RuleResult{Status: models.FetchEmpty}
	}

	ctx, cancel := withTimeout(ctx, f.Timeout)
	defer cancel()

	rules, err := f.Repo.GetBySource(ctx, entry.ConfigID)
	if err != nil {
		f.Logger.Error("config fetch failed", zap.String("team", team), zap.Error(err))
		return models.RuleResult{Status: models.FetchFailed, Error: err.Error()}
	}

	f.Logger.Debug("config loaded", zap.String("team", team), zap.Int("rules", len(rules)))
	return models.RuleResult{Rules: rules, Status: models.FetchLoaded}
}

func (d *DefaultStaffDirectory) Fetch(ctx context.Context, team string) models.StaffResult {
	ctx, cancel := withTimeout(ctx, d.Timeout)
	defer cancel()

	all, err := d.Repo.List(ctx)
	if err != nil {
		d.Logger.Error("staff list fetch failed", zap.String("team", team), zap.Error(err))
		return models.StaffResult{Status: models.FetchFailed, Error: err.Error()}
	}

	staff := make([]models.StaffRecord, 0, len(all))
	for _, s := range all {
		if s.InTeam(team) {
			staff = append(staff, s)
		}
	}
	return models.StaffResult{Staff: staff, Status: models.FetchLoaded}
}
