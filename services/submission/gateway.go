package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"officescheduler/config"
	"officescheduler/models"
)

const (
	defaultConcurrency     = 4
	defaultRollbackTimeout = 30 * time.Second
)

// IsDuplicate reports whether an existing row belongs to userName on date.
// Names are compared after NFC normalisation since Vietnamese names typed on
// different platforms arrive in either composed or decomposed form.
func IsDuplicate(rec models.ShiftRecord, userName, date string) bool {
	if rec.Date != date {
		return false
	}
	return strings.Contains(normalize(rec.Name), normalize(userName))
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func (g *DefaultGateway) Submit(ctx context.Context, team string, payload models.SubmissionPayload) models.SubmitResult {
	logger := g.Logger.With(
		zap.String("team", team),
		zap.String("user", payload.UserName),
		zap.String("date", payload.SelectedDate),
	)

	entry, ok := g.Teams.Lookup(team)
	if !ok || entry.SubmitID == "" {
		logger.Warn("submission target missing")
		return models.SubmitResult{Error: ErrMissingDatabaseID}
	}
	if strings.TrimSpace(payload.UserName) == "" {
		return models.SubmitResult{Error: "missing user name"}
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	existing, err := g.Repo.FindByDate(ctx, entry.SubmitID, payload.SelectedDate)
	if err != nil {
		logger.Error("submission lookup failed", zap.Error(err))
		return models.SubmitResult{Error: (&StoreError{Op: "search", Err: err}).Error()}
	}

	var previous []string
	for _, rec := range existing {
		if IsDuplicate(rec, payload.UserName, payload.SelectedDate) {
			previous = append(previous, rec.ID)
		}
	}

	records := make([]models.ShiftRecord, len(payload.Shifts))
	for i, s := range payload.Shifts {
		records[i] = models.ShiftRecord{
			Team:      team,
			Name:      payload.UserName,
			Date:      payload.SelectedDate,
			Day:       s.Day,
			TimeRange: s.TimeRange,
			Kind:      s.Kind,
		}
	}

	var result models.SubmitResult
	if g.Mode == config.SubmitModeStaged {
		result, err = g.staged(ctx, entry.SubmitID, previous, records, logger)
	} else {
		result, err = g.overwrite(ctx, entry.SubmitID, previous, records)
	}
	if err != nil {
		logger.Error("submission failed",
			zap.Error(err),
			zap.Int("archived", result.Archived),
			zap.Int("created", result.Created),
		)
		result.Success = false
		result.Error = err.Error()
		return result
	}

	logger.Info("submission recorded", zap.Int("archived", result.Archived), zap.Int("created", result.Created))
	result.Success = true
	return result
}

func (g *DefaultGateway) overwrite(ctx context.Context, target string, previous []string, records []models.ShiftRecord) (models.SubmitResult, error) {
	var res models.SubmitResult

	archived, err := g.archiveAll(ctx, target, previous)
	res.Archived = archived
	if err != nil {
		return res, &StoreError{Op: "archive", Err: err}
	}

	ids, err := g.createAll(ctx, target, records)
	res.Created = countIDs(ids)
	if err != nil {
		return res, &StoreError{Op: "create", Err: err}
	}
	return res, nil
}

func (g *DefaultGateway) staged(ctx context.Context, target string, previous []string, records []models.ShiftRecord, logger *zap.Logger) (models.SubmitResult, error) {
	var res models.SubmitResult

	ids, err := g.createAll(ctx, target, records)
	if err != nil {
		var written []string
		for _, id := range ids {
			if id != "" {
				written = append(written, id)
			}
		}
		// The request context may already be dead; give the rollback its own.
		rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.rollbackTimeout())
		defer cancel()
		if _, rbErr := g.archiveAll(rollbackCtx, target, written); rbErr != nil {
			logger.Error("rollback of partial submission failed", zap.Error(rbErr), zap.Strings("ids", written))
			return res, errors.Join(&StoreError{Op: "create", Err: err}, &StoreError{Op: "rollback", Err: rbErr})
		}
		return res, &StoreError{Op: "create", Err: err}
	}
	res.Created = countIDs(ids)

	archived, err := g.archiveAll(ctx, target, previous)
	res.Archived = archived
	if err != nil {
		return res, &StoreError{Op: "archive", Err: err}
	}
	return res, nil
}

func (g *DefaultGateway) rollbackTimeout() time.Duration {
	if g.Timeout > 0 {
		return g.Timeout
	}
	return defaultRollbackTimeout
}

func (g *DefaultGateway) limit() int {
	if g.Concurrency > 0 {
		return g.Concurrency
	}
	return defaultConcurrency
}

// archiveAll archives ids concurrently and returns how many succeeded.
func (g *DefaultGateway) archiveAll(ctx context.Context, target string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	done := make([]bool, len(ids))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit())
	for i, id := range ids {
		eg.Go(func() error {
			if err := g.Repo.Archive(egCtx, target, id); err != nil {
				return err
			}
			done[i] = true
			return nil
		})
	}
	err := eg.Wait()

	n := 0
	for _, ok := range done {
		if ok {
			n++
		}
	}
	return n, err
}

// createAll creates records concurrently. The returned slice is aligned with
// records; entries that were not written are empty.
func (g *DefaultGateway) createAll(ctx context.Context, target string, records []models.ShiftRecord) ([]string, error) {
	ids := make([]string, len(records))
	if len(records) == 0 {
		return ids, nil
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit())
	for i, rec := range records {
		eg.Go(func() error {
			id, err := g.Repo.Create(egCtx, target, rec)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	return ids, eg.Wait()
}

func countIDs(ids []string) int {
	n := 0
	for _, id := range ids {
		if id != "" {
			n++
		}
	}
	return n
}
