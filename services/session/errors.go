package session

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownTeam      = errors.New("unknown team")
	ErrSubmitInFlight   = errors.New("a submission for this session is already in progress")
	ErrNotEnoughHours   = errors.New("committed hours are below the target")
	ErrStaffNotSelected = errors.New("Vui lòng chọn Nhân viên")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrInvalidBlock     = errors.New("unknown day or time slot")
	ErrInvalidTarget    = errors.New("target hours must not be negative")
)
