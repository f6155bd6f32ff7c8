// File: database/repository/shift/interface.go
package shiftRepo

import (
	"context"

	"officescheduler/models"
)

// ShiftRepository stores submitted shift rows. targetID names the submission
// table a team writes to.
type ShiftRepository interface {
	// FindByDate returns the live (not archived) rows recorded for date.
	FindByDate(ctx context.Context, targetID, date string) ([]models.ShiftRecord, error)
	Archive(ctx context.Context, targetID, recordID string) error
	Create(ctx context.Context, targetID string, record models.ShiftRecord) (string, error)
}
