package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"officescheduler/models"
	"officescheduler/services/export"
	"officescheduler/services/schedule"
	"officescheduler/utils"
)

func (s *DefaultScheduleSessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultScheduleSessionService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func (s *DefaultScheduleSessionService) grid() schedule.Grid {
	if len(s.Grid.Days) == 0 || len(s.Grid.Slots) == 0 {
		return schedule.DefaultGrid()
	}
	return s.Grid
}

// lock serialises transitions of one session within this process.
func (s *DefaultScheduleSessionService) lock(id string) func() {
	return s.locks.acquire(id)
}

// update loads a session, applies fn and saves it, all under the session lock.
func (s *DefaultScheduleSessionService) update(ctx context.Context, id string, fn func(*models.ScheduleSession) error) (*models.ScheduleSession, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// load fetches a team's rules and staff concurrently. Neither fetch fails;
// problems come back as a FetchFailed status.
func (s *DefaultScheduleSessionService) load(ctx context.Context, team string) (models.RuleResult, models.StaffResult) {
	var rules models.RuleResult
	var staff models.StaffResult

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		rules = s.Rules.Fetch(egCtx, team)
		return nil
	})
	eg.Go(func() error {
		staff = s.Staff.Fetch(egCtx, team)
		return nil
	})
	_ = eg.Wait()
	return rules, staff
}

// applyTeam switches sess to team and resets everything that depended on the
// previous one.
func (s *DefaultScheduleSessionService) applyTeam(ctx context.Context, sess *models.ScheduleSession, team string) error {
	if _, ok := s.Directory.Lookup(team); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, team)
	}
	rules, staff := s.load(ctx, team)

	sess.Team = team
	sess.Rules = rules.Rules
	sess.RuleStatus = rules.Status
	sess.RuleError = rules.Error
	sess.Staff = staff.Staff
	sess.StaffStatus = staff.Status
	sess.StaffError = staff.Error
	sess.Selected = nil
	sess.StaffName = ""
	sess.StaffEmail = ""
	sess.LastResult = nil
	return nil
}

func (s *DefaultScheduleSessionService) Teams() []string {
	return s.Directory.Names()
}

func (s *DefaultScheduleSessionService) Start(ctx context.Context, team string) (*models.SessionView, error) {
	now := s.now()
	sess := &models.ScheduleSession{
		ID:           s.newID(),
		TargetHours:  models.DefaultTargetHours,
		SelectedDate: now.Format(utils.DateLayout),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.applyTeam(ctx, sess, team); err != nil {
		return nil, err
	}
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.Logger.Info("schedule session started",
		zap.String("session", sess.ID),
		zap.String("team", team),
		zap.String("rules", string(sess.RuleStatus)),
		zap.String("staff", string(sess.StaffStatus)),
	)
	return s.view(sess), nil
}

func (s *DefaultScheduleSessionService) Get(ctx context.Context, id string) (*models.SessionView, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *DefaultScheduleSessionService) ChangeTeam(ctx context.Context, id, team string) (*models.SessionView, error) {
	sess, err := s.update(ctx, id, func(sess *models.ScheduleSession) error {
		return s.applyTeam(ctx, sess, team)
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// SelectStaff picks a staff member of the current team and takes their email
// and commitment as the target. A name not in the list clears the pick but
// keeps the target.
func (s *DefaultScheduleSessionService) SelectStaff(ctx context.Context, id, name string) (*models.SessionView, error) {
	sess, err := s.update(ctx, id, func(sess *models.ScheduleSession) error {
		name = strings.TrimSpace(name)
		for _, st := range sess.Staff {
			if name != "" && st.Name == name {
				sess.StaffName = st.Name
				sess.StaffEmail = st.Email
				sess.TargetHours = st.CommitHours
				return nil
			}
		}
		sess.StaffName = ""
		sess.StaffEmail = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *DefaultScheduleSessionService) SetEmail(ctx context.Context, id, email string) (*models.SessionView, error) {
	sess, err := s.update(ctx, id, func(sess *models.ScheduleSession) error {
		sess.StaffEmail = strings.TrimSpace(email)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *DefaultScheduleSessionService) SetTarget(ctx context.Context, id string, hours int) (*models.SessionView, error) {
	if hours < 0 {
		return nil, ErrInvalidTarget
	}
	sess, err := s.update(ctx, id, func(sess *models.ScheduleSession) error {
		sess.TargetHours = hours
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *DefaultScheduleSessionService) SetDate(ctx context.Context, id, date string) (*models.SessionView, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(utils.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	sess, err := s.update(ctx, id, func(sess *models.ScheduleSession) error {
		sess.SelectedDate = date
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Toggle flips one Optional block. Mandatory and Off blocks report
// changed=false without error.
func (s *DefaultScheduleSessionService) Toggle(ctx context.Context, id, day, slot string) (*models.SessionView, bool, error) {
	key, err := models.ParseSlotKey(models.DayLabel(strings.TrimSpace(day)), slot)
	if err != nil || !key.Valid() || !s.grid().Contains(key) {
		return nil, false, ErrInvalidBlock
	}

	changed := false
	sess, err := s.update(ctx, id, func(sess *models.ScheduleSession) error {
		var next schedule.Selection
		next, changed = schedule.Toggle(schedule.NewSelection(sess.Selected...), key, schedule.NewRuleSet(sess.Rules))
		sess.Selected = next.Keys()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return s.view(sess), changed, nil
}

// Submit sends the week to the submission gateway. Only one submission per
// session runs at a time; the flag is released on every path.
func (s *DefaultScheduleSessionService) Submit(ctx context.Context, id, image string) (*models.SubmitResult, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.StaffName == "" || sess.StaffEmail == "" {
		return nil, ErrStaffNotSelected
	}

	grid := s.grid()
	rules := schedule.NewRuleSet(sess.Rules)
	sel := schedule.NewSelection(sess.Selected...)
	totals := schedule.ComputeTotals(grid, rules, sel)
	if !schedule.CanSubmit(totals.TotalHours, sess.TargetHours) {
		return nil, fmt.Errorf("%w: %d of %d hours", ErrNotEnoughHours, totals.TotalHours, sess.TargetHours)
	}

	acquired, err := s.Store.AcquireSubmit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSubmitInFlight
	}
	defer func() {
		if err := s.Store.ReleaseSubmit(context.WithoutCancel(ctx), id); err != nil {
			s.Logger.Error("failed to release submit flag", zap.String("session", id), zap.Error(err))
		}
	}()

	payload := schedule.BuildSubmission(grid, rules, sel, sess.Team, sess.StaffName, sess.StaffEmail, sess.SelectedDate)

	// A client disconnect must not abandon a half-written week.
	workCtx := context.WithoutCancel(ctx)
	result := s.Gateway.Submit(workCtx, sess.Team, payload)

	if result.Success && s.Storage != nil && strings.TrimSpace(image) != "" {
		publicID := fmt.Sprintf("%s-%s", payload.SelectedDate, strings.ReplaceAll(strings.ToLower(payload.UserEmail), "@", "_at_"))
		url, err := s.Storage.UploadSummary(workCtx, sess.Team, publicID, image)
		if err != nil {
			s.Logger.Warn("summary upload failed", zap.String("session", id), zap.Error(err))
		} else {
			result.SummaryURL = url
		}
	}

	if _, err := s.update(workCtx, id, func(sess *models.ScheduleSession) error {
		r := result
		sess.LastResult = &r
		return nil
	}); err != nil {
		s.Logger.Warn("could not record submission result", zap.String("session", id), zap.Error(err))
	}

	s.Logger.Info("submission finished",
		zap.String("session", id),
		zap.String("team", sess.Team),
		zap.Bool("success", result.Success),
		zap.Int("shifts", len(payload.Shifts)),
		zap.Int("hours", payload.TotalHours),
	)
	return &result, nil
}

// Export renders the current week as an iCalendar file.
func (s *DefaultScheduleSessionService) Export(ctx context.Context, id string) ([]byte, string, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payload := schedule.BuildSubmission(s.grid(), schedule.NewRuleSet(sess.Rules), schedule.NewSelection(sess.Selected...),
		sess.Team, sess.StaffName, sess.StaffEmail, sess.SelectedDate)
	data, err := export.ICS(payload, s.now())
	if err != nil {
		return nil, "", err
	}
	return data, export.Filename(payload), nil
}

func (s *DefaultScheduleSessionService) End(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.Store.Get(ctx, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	return s.Store.Delete(ctx, id)
}
