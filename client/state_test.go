package client

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"cleancity/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCamera struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	frame    []byte
	frameErr error
}

func (f *fakeCamera) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakeCamera) Frame() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, f.frameErr
}

func (f *fakeCamera) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeCamera) wasStarted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeCamera) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeClassifier struct {
	label      string
	confidence float64
	err        error
}

func (f *fakeClassifier) Classify(frame []byte) (string, float64, error) {
	return f.label, f.confidence, f.err
}

type fakeLocator struct {
	loc *models.LatLng
	err error
}

func (f *fakeLocator) CurrentLocation() (*models.LatLng, error) {
	return f.loc, f.err
}

func newTestState(t *testing.T) (*fakeServer, *AppState, *fakeCamera) {
	t.Helper()
	fake, c := newTestClient(t)
	camera := &fakeCamera{frame: []byte{0xFF, 0xD8, 0xFF}}
	classifier := &fakeClassifier{label: "Garbage", confidence: 0.87}
	locator := &fakeLocator{loc: &models.LatLng{Lat: 12.9, Lng: 77.6}}
	return fake, NewAppState(c, classifier, locator, camera), camera
}

func TestGenerateComplaintIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^CPT-\d{5}$`)
	for i := 0; i < 100; i++ {
		id := GenerateComplaintID()
		assert.Regexp(t, pattern, id)
	}
}

func TestEnterRoutesByRole(t *testing.T) {
	_, state, _ := newTestState(t)

	state.Enter(models.RoleUser)
	assert.Equal(t, ViewHome, state.CurrentView())

	_, admin, _ := newTestState(t)
	admin.Enter(models.RoleAdmin)
	assert.Equal(t, ViewAdmin, admin.CurrentView())
}

func TestNavigateToReportStartsCamera(t *testing.T) {
	_, state, camera := newTestState(t)

	state.NavigateTo(ViewReport)
	assert.True(t, camera.wasStarted())
	require.NotNil(t, state.Location())
	assert.Equal(t, 12.9, state.Location().Lat)

	state.NavigateTo(ViewHome)
	assert.True(t, camera.wasStopped())
}

func TestSnapshotStagesPendingCapture(t *testing.T) {
	_, state, camera := newTestState(t)

	state.NavigateTo(ViewReport)
	pending, err := state.Snapshot()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(pending.Image, "data:image/jpeg;base64,"))
	assert.Equal(t, "Garbage (87%)", pending.Label)
	assert.True(t, camera.wasStopped())
	assert.Equal(t, pending, state.Pending())
}

func TestSnapshotWithoutClassifier(t *testing.T) {
	_, c := newTestClient(t)
	camera := &fakeCamera{frame: []byte{0xFF, 0xD8}}
	state := NewAppState(c, nil, nil, camera)

	state.NavigateTo(ViewReport)
	pending, err := state.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Analyzed", pending.Label)
}

func TestStageUpload(t *testing.T) {
	_, state, _ := newTestState(t)

	pending := state.StageUpload([]byte{0x01, 0x02})
	assert.True(t, strings.HasPrefix(pending.Image, "data:image/jpeg;base64,"))
	assert.Equal(t, "Garbage (87%)", pending.Label)
}

func TestConfirmSubmissionRequiresContact(t *testing.T) {
	_, state, _ := newTestState(t)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)

	_, err = state.ConfirmSubmission("", "9999999999", "desc")
	require.Error(t, err)

	_, err = state.ConfirmSubmission("Asha", "", "desc")
	require.Error(t, err)
}

func TestConfirmSubmissionRequiresCapture(t *testing.T) {
	_, state, _ := newTestState(t)

	_, err := state.ConfirmSubmission("Asha", "9999999999", "desc")
	require.Error(t, err)
}

func TestConfirmSubmission(t *testing.T) {
	_, state, _ := newTestState(t)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)

	complaintID, err := state.ConfirmSubmission("Asha", "9999999999", "Deep pothole")
	require.NoError(t, err)
	assert.Regexp(t, `^CPT-\d{5}$`, complaintID)

	// The staged capture is consumed and the snapshot reflects the write.
	assert.Nil(t, state.Pending())
	reports := state.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, complaintID, reports[0].ComplaintID)
	assert.Equal(t, "Garbage (87%)", reports[0].Category)
	assert.Equal(t, models.StatusReceived, reports[0].Status)
}

func TestConfirmSubmissionSurfacesServerFailure(t *testing.T) {
	fake, state, _ := newTestState(t)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)

	fake.setFailCreate(true)
	_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
	require.Error(t, err)

	// The capture stays staged so the user can retry.
	assert.NotNil(t, state.Pending())
}

func TestConfirmSubmissionWithoutLocation(t *testing.T) {
	_, c := newTestClient(t)
	camera := &fakeCamera{frame: []byte{0xFF, 0xD8}}
	state := NewAppState(c, &fakeClassifier{label: "Garbage", confidence: 0.87}, &fakeLocator{err: assert.AnError}, camera)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)

	// A denied location fix degrades to the zero coordinate.
	_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
	require.NoError(t, err)

	reports := state.Reports()
	require.Len(t, reports, 1)
	require.NotNil(t, reports[0].Location)
	assert.Equal(t, 0.0, reports[0].Location.Lat)
	assert.Equal(t, 0.0, reports[0].Location.Lng)
}

func TestRefreshKeepsSnapshotOnFailure(t *testing.T) {
	fake, state, _ := newTestState(t)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)
	_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
	require.NoError(t, err)
	require.Len(t, state.Reports(), 1)

	fake.setFailList(true)
	state.Refresh()

	// Stale data beats an empty screen.
	assert.Len(t, state.Reports(), 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	_, state, _ := newTestState(t)
	state.Enter(models.RoleUser)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		state.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestVoteAndRefresh(t *testing.T) {
	_, state, _ := newTestState(t)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)
	_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
	require.NoError(t, err)

	id := state.Reports()[0].Seq
	require.NoError(t, state.VoteAndRefresh(id, "up"))
	assert.Equal(t, 1, state.Reports()[0].Upvotes)
}

func TestUpdateStatusAndDelete(t *testing.T) {
	_, state, _ := newTestState(t)

	state.NavigateTo(ViewReport)
	_, err := state.Snapshot()
	require.NoError(t, err)
	_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
	require.NoError(t, err)

	id := state.Reports()[0].Seq
	require.NoError(t, state.UpdateStatus(id, models.StatusResolved))
	assert.Equal(t, models.StatusResolved, state.Reports()[0].Status)

	require.NoError(t, state.DeleteAndRefresh(id))
	assert.Empty(t, state.Reports())
}

func TestDashboardStats(t *testing.T) {
	_, state, _ := newTestState(t)

	submit := func() {
		state.NavigateTo(ViewReport)
		_, err := state.Snapshot()
		require.NoError(t, err)
		_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
		require.NoError(t, err)
	}
	submit()
	submit()
	submit()

	id := state.Reports()[0].Seq
	require.NoError(t, state.UpdateStatus(id, models.StatusResolved))

	stats := state.DashboardStats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 150, stats.Points)
}

func TestActiveReports(t *testing.T) {
	_, state, _ := newTestState(t)

	submit := func() {
		state.NavigateTo(ViewReport)
		_, err := state.Snapshot()
		require.NoError(t, err)
		_, err = state.ConfirmSubmission("Asha", "9999999999", "desc")
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		submit()
	}

	id := state.Reports()[0].Seq
	require.NoError(t, state.UpdateStatus(id, models.StatusResolved))

	active := state.ActiveReports(2)
	require.Len(t, active, 2)
	for _, r := range active {
		assert.NotEqual(t, models.StatusResolved, r.Status)
	}
}
