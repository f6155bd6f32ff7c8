package submission

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"officescheduler/config"
	shiftRepo "officescheduler/database/repository/shift"
	"officescheduler/models"
)

// Gateway records a week of shifts for one person, replacing whatever that
// person submitted earlier for the same date.
type Gateway interface {
	Submit(ctx context.Context, team string, payload models.SubmissionPayload) models.SubmitResult
}

// DefaultGateway implements Gateway.
//
// In config.SubmitModeOverwrite the previous rows are archived first and the
// new ones created after; the two phases are not atomic, so a failure while
// creating leaves the person with fewer rows than they submitted.
// config.SubmitModeStaged creates first, archives the previous rows only once
// every create succeeded, and archives its own partial writes on failure.
type DefaultGateway struct {
	Teams       *config.TeamDirectory
	Repo        shiftRepo.ShiftRepository
	Mode        string
	Timeout     time.Duration
	Concurrency int
	Logger      *zap.Logger
}

// ErrMissingDatabaseID is reported when a team has no submission target.
const ErrMissingDatabaseID = "Missing Database ID"

// StoreError tags a failed phase of a submission.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
