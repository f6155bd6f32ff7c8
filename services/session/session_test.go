package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"officescheduler/config"
	"officescheduler/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubRules struct {
	byTeam map[string]models.RuleResult
}

func (f *stubRules) Fetch(_ context.Context, team string) models.RuleResult {
	if r, ok := f.byTeam[team]; ok {
		return r
	}
	return models.RuleResult{Status: models.FetchEmpty}
}

type stubStaff struct {
	res models.StaffResult
}

func (f *stubStaff) Fetch(context.Context, string) models.StaffResult {
	return f.res
}

type stubGateway struct {
	mu       sync.Mutex
	calls    []models.SubmissionPayload
	result   models.SubmitResult
	entered  chan struct{}
	release  chan struct{}
	ctxAlive bool
}

func (g *stubGateway) Submit(ctx context.Context, _ string, p models.SubmissionPayload) models.SubmitResult {
	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, p)
	g.ctxAlive = ctx.Err() == nil
	return g.result
}

func (g *stubGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type stubStorage struct {
	url string
	err error
	got string
}

func (s *stubStorage) UploadSummary(_ context.Context, _, publicID, _ string) (string, error) {
	s.got = publicID
	return s.url, s.err
}

var (
	tuesday10 = models.BlockKey{Day: models.Tuesday, StartHour: 10}
	fixedNow  = time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
)

func newService(gw *stubGateway) (*DefaultScheduleSessionService, *MemoryStore) {
	store := NewMemoryStore()
	svc := &DefaultScheduleSessionService{
		Store: store,
		Directory: config.NewTeamDirectory(
			config.TeamEntry{Name: "VietQ Media", ConfigID: "cfg", SubmitID: "sub"},
			config.TeamEntry{Name: "No Headliner", ConfigID: "cfg-nh", SubmitID: "sub"},
		),
		Rules: &stubRules{byTeam: map[string]models.RuleResult{
			"VietQ Media": {Status: models.FetchLoaded, Rules: []models.BlockRule{
				{Key: tuesday10, Kind: models.KindMandatory, Label: "Ca sáng"},
				{Key: models.BlockKey{Day: models.Sunday, StartHour: 18}, Kind: models.KindOff},
			}},
			"No Headliner": {Status: models.FetchFailed, Error: "unauthorized"},
		}},
		Staff: &stubStaff{res: models.StaffResult{Status: models.FetchLoaded, Staff: []models.StaffRecord{
			{Name: "An", Email: "an@example.com", CommitHours: 30},
			{Name: "Bình", Email: "binh@example.com", CommitHours: 6},
		}}},
		Gateway: gw,
		Logger:  zap.NewNop(),
		Now:     func() time.Time { return fixedNow },
		NewID:   func() string { return "sess-1" },
	}
	return svc, store
}

func TestStart(t *testing.T) {
	svc, _ := newService(&stubGateway{})
	ctx := context.Background()

	v, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", v.ID)
	assert.Equal(t, models.DefaultTargetHours, v.TargetHours)
	assert.Equal(t, "2024-06-05", v.SelectedDate)
	assert.Equal(t, models.FetchLoaded, v.RuleStatus)
	assert.Equal(t, 1, v.Totals.MandatoryCount)
	assert.Equal(t, 2, v.Totals.TotalHours)
	assert.Len(t, v.Staff, 2)
	assert.False(t, v.CanSubmit)

	_, err = svc.Start(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrUnknownTeam)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConfigFailureYieldsFullOptionalGrid(t *testing.T) {
	svc, _ := newService(&stubGateway{})

	v, err := svc.Start(context.Background(), "No Headliner")
	require.NoError(t, err)
	assert.Equal(t, models.FetchFailed, v.RuleStatus)
	assert.Zero(t, v.Totals.TotalHours)
	require.Len(t, v.Grid.Rows, len(models.TimeSlots))
	for _, row := range v.Grid.Rows {
		require.Len(t, row, len(models.Days))
		for _, cell := range row {
			assert.Equal(t, models.KindOptional, cell.Kind)
			assert.True(t, cell.Togglable)
		}
	}
}

func TestStaffSelectionOverwritesTarget(t *testing.T) {
	svc, _ := newService(&stubGateway{})
	ctx := context.Background()
	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)

	v, err := svc.SetTarget(ctx, "sess-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, v.TargetHours)

	v, err = svc.SelectStaff(ctx, "sess-1", "An")
	require.NoError(t, err)
	assert.Equal(t, 30, v.TargetHours)
	assert.Equal(t, "an@example.com", v.StaffEmail)

	v, err = svc.SetTarget(ctx, "sess-1", 12)
	require.NoError(t, err)
	assert.Equal(t, 12, v.TargetHours, "manual edit after the pick sticks")

	v, err = svc.SelectStaff(ctx, "sess-1", "Nobody")
	require.NoError(t, err)
	assert.Empty(t, v.StaffName)
	assert.Empty(t, v.StaffEmail)
	assert.Equal(t, 12, v.TargetHours)

	_, err = svc.SetTarget(ctx, "sess-1", -1)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestSetDateAndEmail(t *testing.T) {
	svc, _ := newService(&stubGateway{})
	ctx := context.Background()
	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)

	v, err := svc.SetDate(ctx, "sess-1", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", v.SelectedDate)

	_, err = svc.SetDate(ctx, "sess-1", "10/06/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	v, err = svc.SetEmail(ctx, "sess-1", "  other@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", v.StaffEmail)
}

func TestToggle(t *testing.T) {
	svc, _ := newService(&stubGateway{})
	ctx := context.Background()
	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)

	v, changed, err := svc.Toggle(ctx, "sess-1", "Thứ 2", "10h00 -> 12h00")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 4, v.Totals.TotalHours)

	v, changed, err = svc.Toggle(ctx, "sess-1", "Thứ 3", "10h")
	require.NoError(t, err)
	assert.False(t, changed, "mandatory block")
	assert.Equal(t, 4, v.Totals.TotalHours)

	_, changed, err = svc.Toggle(ctx, "sess-1", "Chủ nhật", "18h00-20h00")
	require.NoError(t, err)
	assert.False(t, changed, "off block")

	v, changed, err = svc.Toggle(ctx, "sess-1", "Thứ 2", "10")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, v.Totals.TotalHours)

	_, _, err = svc.Toggle(ctx, "sess-1", "Thứ 9", "10h")
	assert.ErrorIs(t, err, ErrInvalidBlock)
	_, _, err = svc.Toggle(ctx, "sess-1", "Thứ 2", "08h")
	assert.ErrorIs(t, err, ErrInvalidBlock)
}

func TestChangeTeamResetsSelection(t *testing.T) {
	svc, _ := newService(&stubGateway{})
	ctx := context.Background()
	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, "sess-1", "Thứ 2", "10h")
	require.NoError(t, err)
	_, err = svc.SelectStaff(ctx, "sess-1", "An")
	require.NoError(t, err)

	v, err := svc.ChangeTeam(ctx, "sess-1", "No Headliner")
	require.NoError(t, err)
	assert.Equal(t, "No Headliner", v.Team)
	assert.Zero(t, v.Totals.OptionalCount)
	assert.Empty(t, v.StaffName)

	_, err = svc.ChangeTeam(ctx, "sess-1", "Nobody")
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

// readyToSubmit leaves sess-1 with staff Bình (6h target) and 6h committed.
func readyToSubmit(t *testing.T, svc *DefaultScheduleSessionService) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)
	_, err = svc.SelectStaff(ctx, "sess-1", "Bình")
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, "sess-1", "Thứ 2", "10h")
	require.NoError(t, err)
	v, _, err := svc.Toggle(ctx, "sess-1", "Thứ 4", "14h")
	require.NoError(t, err)
	require.True(t, v.CanSubmit)
}

func TestSubmitValidation(t *testing.T) {
	gw := &stubGateway{result: models.SubmitResult{Success: true}}
	svc, _ := newService(gw)
	ctx := context.Background()
	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "sess-1", "")
	assert.ErrorIs(t, err, ErrStaffNotSelected)

	_, err = svc.SelectStaff(ctx, "sess-1", "Bình")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "sess-1", "")
	assert.ErrorIs(t, err, ErrNotEnoughHours)

	assert.Zero(t, gw.count())
}

func TestSubmit(t *testing.T) {
	gw := &stubGateway{result: models.SubmitResult{Success: true, Created: 3}}
	svc, _ := newService(gw)
	st := &stubStorage{url: "https://cdn.example/summary.png"}
	svc.Storage = st
	readyToSubmit(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Submit(ctx, "sess-1", "aGVsbG8=")
	cancel()
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "https://cdn.example/summary.png", res.SummaryURL)
	assert.Equal(t, "2024-06-05-binh_at_example.com", st.got)

	require.Equal(t, 1, gw.count())
	p := gw.calls[0]
	assert.Equal(t, "Bình", p.UserName)
	assert.Equal(t, 6, p.TotalHours)
	require.Len(t, p.Shifts, 3)
	assert.Equal(t, models.Monday, p.Shifts[0].Day)
	assert.Equal(t, models.KindMandatory, p.Shifts[1].Kind)
	assert.True(t, gw.ctxAlive)

	v, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, v.LastResult)
	assert.True(t, v.LastResult.Success)
}

func TestSubmitFailureSkipsUploadAndReleasesFlag(t *testing.T) {
	gw := &stubGateway{result: models.SubmitResult{Error: "create: rate limited"}}
	svc, store := newService(gw)
	st := &stubStorage{url: "x"}
	svc.Storage = st
	readyToSubmit(t, svc)

	res, err := svc.Submit(context.Background(), "sess-1", "aGVsbG8=")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, st.got)

	ok, err := store.AcquireSubmit(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, ok, "flag released after a failed submission")
	require.NoError(t, store.ReleaseSubmit(context.Background(), "sess-1"))

	res, err = svc.Submit(context.Background(), "sess-1", "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, gw.count())
}

func TestUploadFailureDoesNotFailSubmission(t *testing.T) {
	gw := &stubGateway{result: models.SubmitResult{Success: true}}
	svc, _ := newService(gw)
	svc.Storage = &stubStorage{err: errors.New("cloudinary down")}
	readyToSubmit(t, svc)

	res, err := svc.Submit(context.Background(), "sess-1", "aGVsbG8=")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.SummaryURL)
}

func TestSubmitInFlightGate(t *testing.T) {
	gw := &stubGateway{
		result:  models.SubmitResult{Success: true},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, _ := newService(gw)
	readyToSubmit(t, svc)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), "sess-1", "")
		done <- err
	}()
	<-gw.entered

	_, err := svc.Submit(context.Background(), "sess-1", "")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(gw.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gw.count())
}

func TestExport(t *testing.T) {
	svc, _ := newService(&stubGateway{})
	readyToSubmit(t, svc)

	data, name, err := svc.Export(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "lich_lam_viec_Bình_2024-06-05.ics", name)
	assert.Equal(t, 3, strings.Count(string(data), "BEGIN:VEVENT"))
}

func TestEnd(t *testing.T) {
	svc, store := newService(&stubGateway{})
	ctx := context.Background()
	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)

	require.NoError(t, svc.End(ctx, "sess-1"))
	assert.Zero(t, store.Len())
	assert.ErrorIs(t, svc.End(ctx, "sess-1"), ErrSessionNotFound)
}

func TestLockTableHoldsNothingOnceIdle(t *testing.T) {
	svc, store := newService(&stubGateway{})
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := svc.SetEmail(ctx, "missing-"+strings.Repeat("x", i%7), "a@example.com")
		require.ErrorIs(t, err, ErrSessionNotFound)
	}
	assert.Equal(t, 0, svc.locks.size(), "unknown ids must not stay in the lock table")

	_, err := svc.Start(ctx, "VietQ Media")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.SetTarget(ctx, "sess-1", 10+i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, svc.locks.size())

	assert.Equal(t, 1, store.Sweep(fixedNow.Add(time.Hour)))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, svc.locks.size(), "a swept session leaves no lock behind")
}

func TestLockTableSerialisesSameID(t *testing.T) {
	var table lockTable
	release := table.acquire("a")

	acquired := make(chan struct{})
	go func() {
		unlock := table.acquire("a")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder entered while the first still held the lock")
	case <-time.After(20 * time.Millisecond):
	}
	other := table.acquire("b")
	assert.Equal(t, 2, table.size())
	other()

	release()
	<-acquired
	assert.Eventually(t, func() bool { return table.size() == 0 }, time.Second, time.Millisecond)
}
