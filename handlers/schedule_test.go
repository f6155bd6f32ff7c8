package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"officescheduler/config"
	"officescheduler/handlers"
	"officescheduler/models"
	"officescheduler/routes"
	"officescheduler/services/session"
	"officescheduler/services/storage"
	"officescheduler/utils"
)

type rules struct{}

func (rules) Fetch(_ context.Context, team string) models.RuleResult {
	if team != "VietQ Media" {
		return models.RuleResult{Status: models.FetchFailed, Error: "unauthorized"}
	}
	return models.RuleResult{Status: models.FetchLoaded, Rules: []models.BlockRule{
		{Key: models.BlockKey{Day: models.Tuesday, StartHour: 10}, Kind: models.KindMandatory, Label: "Ca sáng"},
	}}
}

type staff struct{}

func (staff) Fetch(context.Context, string) models.StaffResult {
	return models.StaffResult{Status: models.FetchLoaded, Staff: []models.StaffRecord{
		{Name: "An", Email: "an@example.com", CommitHours: 4},
	}}
}

type gateway struct {
	result models.SubmitResult
}

func (g gateway) Submit(context.Context, string, models.SubmissionPayload) models.SubmitResult {
	return g.result
}

type summaries struct {
	image string
}

func (s *summaries) UploadSummary(_ context.Context, _, _, image string) (string, error) {
	s.image = image
	return "https://res.example.com/week.png", nil
}

func newRouter(t *testing.T, gw gateway) *gin.Engine {
	t.Helper()
	return newRouterWithStorage(t, gw, nil)
}

func newRouterWithStorage(t *testing.T, gw gateway, st storage.SummaryStorage) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &session.DefaultScheduleSessionService{
		Store: session.NewMemoryStore(),
		Directory: config.NewTeamDirectory(
			config.TeamEntry{Name: "VietQ Media", ConfigID: "cfg", SubmitID: "sub"},
			config.TeamEntry{Name: "No Headliner", SubmitID: "sub"},
		),
		Rules:   rules{},
		Staff:   staff{},
		Gateway: gw,
		Storage: st,
		Logger:  zap.NewNop(),
		NewID:   func() string { return "s1" },
	}
	monitor := utils.NewHealthMonitor(0, nil)
	bundle := handlers.NewHandlerBundle(handlers.NewScheduleHandler(svc, zap.NewNop()), handlers.NewHealthHandler(monitor))

	r := gin.New()
	routes.RegisterRoutes(r, bundle)
	return r
}

func call(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) models.SessionView {
	t.Helper()
	var v models.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestSessionFlow(t *testing.T) {
	r := newRouter(t, gateway{result: models.SubmitResult{Success: true, Created: 2}})

	w := call(t, r, http.MethodGet, "/api/teams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"teams":["VietQ Media","No Headliner"]}`, w.Body.String())

	w = call(t, r, http.MethodPost, "/api/sessions", gin.H{"team": "VietQ Media"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	v := decodeView(t, w)
	assert.Equal(t, "s1", v.ID)
	assert.Equal(t, 2, v.Totals.TotalHours)
	assert.Equal(t, models.KindMandatory, v.Grid.Rows[0][1].Kind)
	assert.Equal(t, "Ca sáng", v.Grid.Rows[0][1].Label)

	w = call(t, r, http.MethodPost, "/api/sessions/s1/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "staff not picked")
	assert.Contains(t, w.Body.String(), "Vui lòng chọn Nhân viên")

	w = call(t, r, http.MethodPut, "/api/sessions/s1/staff", gin.H{"name": "An"})
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, 4, v.TargetHours)
	assert.False(t, v.CanSubmit)

	w = call(t, r, http.MethodPost, "/api/sessions/s1/submit", gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "not enough hours")

	w = call(t, r, http.MethodPost, "/api/sessions/s1/toggle", gin.H{"day": "Thứ 3", "slot": "10h"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changed":false`)

	w = call(t, r, http.MethodPost, "/api/sessions/s1/toggle", gin.H{"day": "Thứ 5", "slot": "16h00 -> 18h00"})
	require.Equal(t, http.StatusOK, w.Code)
	var toggled struct {
		Changed bool               `json:"changed"`
		Session models.SessionView `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	assert.True(t, toggled.Changed)
	assert.True(t, toggled.Session.CanSubmit)

	w = call(t, r, http.MethodPut, "/api/sessions/s1/date", gin.H{"date": "2024-06-03"})
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, r, http.MethodPost, "/api/sessions/s1/submit", gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"success":true`)

	w = call(t, r, http.MethodGet, "/api/sessions/s1/export.ics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "lich_lam_viec_An_2024-06-03.ics")
	assert.Equal(t, 2, strings.Count(w.Body.String(), "BEGIN:VEVENT"))

	w = call(t, r, http.MethodDelete, "/api/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = call(t, r, http.MethodGet, "/api/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationErrors(t *testing.T) {
	r := newRouter(t, gateway{})

	w := call(t, r, http.MethodPost, "/api/sessions", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodPost, "/api/sessions", gin.H{"team": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodPost, "/api/sessions", gin.H{"team": "No Headliner"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.FetchFailed, decodeView(t, w).RuleStatus)

	w = call(t, r, http.MethodPut, "/api/sessions/s1/date", gin.H{"date": "June 3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodPut, "/api/sessions/s1/target", gin.H{"hours": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodPut, "/api/sessions/s1/target", gin.H{"hours": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeView(t, w).CanSubmit, "zero target never allows submitting")

	w = call(t, r, http.MethodPost, "/api/sessions/s1/toggle", gin.H{"day": "Thứ 2", "slot": "07h"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodPut, "/api/sessions/missing/team", gin.H{"team": "VietQ Media"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitStoreFailure(t *testing.T) {
	r := newRouter(t, gateway{result: models.SubmitResult{Error: "Missing Database ID"}})

	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/api/sessions", gin.H{"team": "VietQ Media"}).Code)
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPut, "/api/sessions/s1/staff", gin.H{"name": "An"}).Code)
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, "/api/sessions/s1/toggle", gin.H{"day": "Thứ 2", "slot": "10h"}).Code)

	w := call(t, r, http.MethodPost, "/api/sessions/s1/submit", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Missing Database ID")

	w = call(t, r, http.MethodGet, "/api/sessions/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	require.NotNil(t, v.LastResult)
	assert.False(t, v.LastResult.Success)
}

func TestHealth(t *testing.T) {
	r := newRouter(t, gateway{})
	w := call(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func readySession(t *testing.T, r http.Handler) {
	t.Helper()
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/api/sessions", gin.H{"team": "VietQ Media"}).Code)
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPut, "/api/sessions/s1/staff", gin.H{"name": "An"}).Code)
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPost, "/api/sessions/s1/toggle", gin.H{"day": "Thứ 2", "slot": "10h"}).Code)
}

func TestSubmitReadsChunkedBody(t *testing.T) {
	st := &summaries{}
	r := newRouterWithStorage(t, gateway{result: models.SubmitResult{Success: true, Created: 2}}, st)
	readySession(t, r)

	// A reader of unknown length makes the request chunked (ContentLength -1).
	body := io.MultiReader(strings.NewReader(`{"image":"iVBORw0KGgo="}`))
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/s1/submit", body)
	require.Equal(t, int64(-1), req.ContentLength)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "iVBORw0KGgo=", st.image)
	assert.Contains(t, w.Body.String(), `"summaryUrl":"https://res.example.com/week.png"`)
}

func TestSubmitBodyLimits(t *testing.T) {
	r := newRouter(t, gateway{result: models.SubmitResult{Success: true}})
	readySession(t, r)

	huge := `{"image":"` + strings.Repeat("A", handlers.MaxSubmitBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/s1/submit", io.MultiReader(strings.NewReader(huge)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/s1/submit", strings.NewReader(`{"image":`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed JSON is still rejected")

	w = call(t, r, http.MethodPost, "/api/sessions/s1/submit", nil)
	assert.Equal(t, http.StatusOK, w.Code, "an empty body means no image")
}
