package staffRepo

import (
	"context"

	"officescheduler/models"
)

// StaffRepository lists every staff member with their team memberships.
// Team filtering is left to the caller.
type StaffRepository interface {
	List(ctx context.Context) ([]models.StaffRecord, error)
}
