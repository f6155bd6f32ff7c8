package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"officescheduler/services/session"
	"officescheduler/utils"
)

// ScheduleHandler exposes the weekly form session over HTTP.
type ScheduleHandler struct {
	SessionSvc session.ScheduleSessionService
	Logger     *zap.Logger
}

func NewScheduleHandler(svc session.ScheduleSessionService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{SessionSvc: svc, Logger: logger}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrUnknownTeam),
		errors.Is(err, session.ErrInvalidDate),
		errors.Is(err, session.ErrInvalidBlock),
		errors.Is(err, session.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSubmitInFlight):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotEnoughHours),
		errors.Is(err, session.ErrStaffNotSelected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *ScheduleHandler) logger(c *gin.Context) *zap.Logger {
	if _, ok := c.Get("logger"); !ok && h.Logger != nil {
		return h.Logger
	}
	return utils.LoggerFrom(c)
}

func (h *ScheduleHandler) fail(c *gin.Context, op string, err error) {
	status := statusFor(err)
	logger := h.logger(c)
	if status >= http.StatusInternalServerError {
		logger.Error(op+": failed", zap.String("sessionID", c.Param("id")), zap.Error(err))
	} else {
		logger.Debug(op+": rejected", zap.String("sessionID", c.Param("id")), zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   op + " failed",
		"message": err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
}

// ListTeams handles GET /api/teams.
func (h *ScheduleHandler) ListTeams(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"teams": h.SessionSvc.Teams()})
}

// StartSession handles POST /api/sessions.
func (h *ScheduleHandler) StartSession(c *gin.Context) {
	var body struct {
		Team string `json:"team" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.SessionSvc.Start(c.Request.Context(), body.Team)
	if err != nil {
		h.fail(c, "start session", err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/:id.
func (h *ScheduleHandler) GetSession(c *gin.Context) {
	view, err := h.SessionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get session", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// EndSession handles DELETE /api/sessions/:id.
func (h *ScheduleHandler) EndSession(c *gin.Context) {
	if err := h.SessionSvc.End(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "end session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeTeam handles PUT /api/sessions/:id/team.
func (h *ScheduleHandler) ChangeTeam(c *gin.Context) {
	var body struct {
		Team string `json:"team" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.SessionSvc.ChangeTeam(c.Request.Context(), c.Param("id"), body.Team)
	if err != nil {
		h.fail(c, "change team", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SelectStaff handles PUT /api/sessions/:id/staff. An empty name clears the pick.
func (h *ScheduleHandler) SelectStaff(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.SessionSvc.SelectStaff(c.Request.Context(), c.Param("id"), body.Name)
	if err != nil {
		h.fail(c, "select staff", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetEmail handles PUT /api/sessions/:id/email.
func (h *ScheduleHandler) SetEmail(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.SessionSvc.SetEmail(c.Request.Context(), c.Param("id"), body.Email)
	if err != nil {
		h.fail(c, "set email", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetTarget handles PUT /api/sessions/:id/target.
func (h *ScheduleHandler) SetTarget(c *gin.Context) {
	var body struct {
		Hours *int `json:"hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.SessionSvc.SetTarget(c.Request.Context(), c.Param("id"), *body.Hours)
	if err != nil {
		h.fail(c, "set target", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetDate handles PUT /api/sessions/:id/date.
func (h *ScheduleHandler) SetDate(c *gin.Context) {
	var body struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.SessionSvc.SetDate(c.Request.Context(), c.Param("id"), body.Date)
	if err != nil {
		h.fail(c, "set date", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ToggleBlock handles POST /api/sessions/:id/toggle. The slot may be a full
// range ("10h00 -> 12h00") or a start hour ("10h").
func (h *ScheduleHandler) ToggleBlock(c *gin.Context) {
	var body struct {
		Day  string `json:"day" binding:"required"`
		Slot string `json:"slot" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	view, changed, err := h.SessionSvc.Toggle(c.Request.Context(), c.Param("id"), body.Day, body.Slot)
	if err != nil {
		h.fail(c, "toggle block", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed, "session": view})
}

// MaxSubmitBodyBytes caps the submit body, which carries the base64 summary PNG.
const MaxSubmitBodyBytes = 8 << 20

// Submit handles POST /api/sessions/:id/submit. The body is optional and may
// carry a base64 PNG of the rendered week.
func (h *ScheduleHandler) Submit(c *gin.Context) {
	var body struct {
		Image string `json:"image"`
	}
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSubmitBodyBytes)
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.JSONError(c, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
				return
			}
			badRequest(c, err)
			return
		}
	}
	result, err := h.SessionSvc.Submit(c.Request.Context(), c.Param("id"), body.Image)
	if err != nil {
		h.fail(c, "submit", err)
		return
	}
	if !result.Success {
		h.logger(c).Warn("submit: store rejected the week", zap.String("sessionID", c.Param("id")), zap.String("reason", result.Error))
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportICS handles GET /api/sessions/:id/export.ics.
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	data, filename, err := h.SessionSvc.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "export", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}
