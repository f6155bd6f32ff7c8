package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	HealthHandler gin.HandlerFunc

	// Team endpoints
	ListTeamsHandler gin.HandlerFunc

	// Session endpoints
	StartSessionHandler gin.HandlerFunc
	GetSessionHandler   gin.HandlerFunc
	EndSessionHandler   gin.HandlerFunc
	ChangeTeamHandler   gin.HandlerFunc
	SelectStaffHandler  gin.HandlerFunc
	SetEmailHandler     gin.HandlerFunc
	SetTargetHandler    gin.HandlerFunc
	SetDateHandler      gin.HandlerFunc
	ToggleBlockHandler  gin.HandlerFunc
	SubmitHandler       gin.HandlerFunc
	ExportICSHandler    gin.HandlerFunc
}

// NewHandlerBundle wires the schedule and health handlers into a bundle.
func NewHandlerBundle(sh *ScheduleHandler, hh *HealthHandler) *HandlerBundle {
	return &HandlerBundle{
		HealthHandler: hh.GetHealth,

		ListTeamsHandler: sh.ListTeams,

		StartSessionHandler: sh.StartSession,
		GetSessionHandler:   sh.GetSession,
		EndSessionHandler:   sh.EndSession,
		ChangeTeamHandler:   sh.ChangeTeam,
		SelectStaffHandler:  sh.SelectStaff,
		SetEmailHandler:     sh.SetEmail,
		SetTargetHandler:    sh.SetTarget,
		SetDateHandler:      sh.SetDate,
		ToggleBlockHandler:  sh.ToggleBlock,
		SubmitHandler:       sh.Submit,
		ExportICSHandler:    sh.ExportICS,
	}
}
