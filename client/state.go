package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"cleancity/models"

	"github.com/apex/log"
)

// View names the page sections of the shell.
type View string

const (
	ViewHome        View = "home"
	ViewReport      View = "report"
	ViewMap         View = "map"
	ViewAdmin       View = "admin"
	ViewLeaderboard View = "leaderboard"
)

// DefaultPollInterval is how often the report snapshot is refreshed while
// the shell is active.
const DefaultPollInterval = 5 * time.Second

// frameInterval paces the live classification loop.
const frameInterval = 100 * time.Millisecond

// Classifier is the on-device image classifier, a pretrained model invoked
// as a black box.
type Classifier interface {
	Classify(frame []byte) (label string, confidence float64, err error)
}

// Locator acquires the device location.
type Locator interface {
	CurrentLocation() (*models.LatLng, error)
}

// Camera is a live capture stream.
type Camera interface {
	Start() error
	Frame() ([]byte, error)
	Stop()
}

// PendingCapture is a frozen frame with its derived category label,
// awaiting confirmation in the review form.
type PendingCapture struct {
	Image string
	Label string
}

// Stats summarizes the dashboard counters.
type Stats struct {
	Total    int
	Resolved int
	Pending  int
	Points   int
}

var rnd = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateComplaintID produces a human-readable complaint id: a fixed
// prefix plus five random digits. Not guaranteed globally unique.
func GenerateComplaintID() string {
	return fmt.Sprintf("CPT-%d", 10000+rnd.Intn(90000))
}

// AppState is the single owner of all shell state: the current view, the
// report snapshot refreshed by polling, the last known location and the
// pending capture. It is created at startup and torn down with the context
// passed to Run.
type AppState struct {
	api        *Client
	classifier Classifier
	locator    Locator
	camera     Camera

	// analysing gates the live classification loop; clearing it plus
	// stopping the stream is the only cancellation mechanism.
	analysing atomic.Bool

	mu        sync.Mutex
	active    bool
	view      View
	reports   []models.Report
	loc       *models.LatLng
	pending   *PendingCapture
	liveLabel string
}

// NewAppState wires the shell against an API client and the device
// collaborators. classifier, locator and camera may be nil when the
// embedder has no such capability; the flows degrade accordingly.
func NewAppState(api *Client, classifier Classifier, locator Locator, camera Camera) *AppState {
	return &AppState{
		api:        api,
		classifier: classifier,
		locator:    locator,
		camera:     camera,
		view:       ViewHome,
	}
}

// Enter activates the shell, performs an initial refresh and routes to the
// starting view based on the role.
func (s *AppState) Enter(role string) {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	if role == models.RoleAdmin {
		s.NavigateTo(ViewAdmin)
	} else {
		s.NavigateTo(ViewHome)
	}
	s.Refresh()
}

// Run polls the API on the given interval while the shell is active,
// until the context is cancelled. Use DefaultPollInterval unless testing.
func (s *AppState) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopCamera()
			return
		case <-ticker.C:
			s.mu.Lock()
			active := s.active
			s.mu.Unlock()
			if active {
				s.Refresh()
			}
		}
	}
}

// Refresh replaces the report snapshot. A failed fetch keeps the previous
// snapshot; the shell favors stale data over an empty screen.
func (s *AppState) Refresh() {
	reports, err := s.api.ListReports()
	if err != nil {
		log.WithError(err).Warn("report refresh failed, keeping previous snapshot")
		return
	}

	s.mu.Lock()
	s.reports = reports
	s.mu.Unlock()
}

// NavigateTo routes to a page section. Entering the report view refreshes
// the location and starts the camera; leaving it stops both the camera and
// the live classification loop.
func (s *AppState) NavigateTo(view View) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()

	if view == ViewReport {
		s.startCamera()
	} else {
		s.stopCamera()
	}
}

// CurrentView returns the active page section.
func (s *AppState) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Reports returns the current snapshot.
func (s *AppState) Reports() []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports
}

// Location returns the last known location, which may be nil.
func (s *AppState) Location() *models.LatLng {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

// LiveLabel returns the latest label from the live classification loop.
func (s *AppState) LiveLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLabel
}

// Pending returns the staged capture, if any.
func (s *AppState) Pending() *PendingCapture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// RefreshLocation re-acquires the device location. A denied or failed fix
// keeps the previous value.
func (s *AppState) RefreshLocation() {
	if s.locator == nil {
		return
	}
	loc, err := s.locator.CurrentLocation()
	if err != nil {
		log.WithError(err).Warn("location unavailable")
		return
	}
	s.mu.Lock()
	s.loc = loc
	s.mu.Unlock()
}

func (s *AppState) startCamera() {
	s.RefreshLocation()

	if s.camera == nil {
		return
	}
	if err := s.camera.Start(); err != nil {
		log.WithError(err).Warn("camera blocked")
		return
	}
	if s.analysing.CompareAndSwap(false, true) {
		go s.classifyLoop()
	}
}

func (s *AppState) stopCamera() {
	s.analysing.Store(false)
	if s.camera != nil {
		s.camera.Stop()
	}
}

// classifyLoop continuously classifies camera frames while the report view
// is visible. Best effort: failures skip the frame.
func (s *AppState) classifyLoop() {
	for s.analysing.Load() {
		if s.classifier == nil {
			return
		}
		frame, err := s.camera.Frame()
		if err == nil {
			if label, conf, cerr := s.classifier.Classify(frame); cerr == nil {
				s.mu.Lock()
				s.liveLabel = formatLabel(label, conf)
				s.mu.Unlock()
			}
		}
		time.Sleep(frameInterval)
	}
}

// Snapshot freezes the current frame, stops the live loop and runs one
// classification pass to stage a pending capture for the review form.
func (s *AppState) Snapshot() (*PendingCapture, error) {
	if s.camera == nil {
		return nil, fmt.Errorf("no camera available")
	}

	frame, err := s.camera.Frame()
	if err != nil {
		return nil, fmt.Errorf("failed to capture frame: %w", err)
	}
	s.stopCamera()

	label := "Analyzed"
	if s.classifier != nil {
		if l, conf, cerr := s.classifier.Classify(frame); cerr == nil {
			label = formatLabel(l, conf)
		}
	}

	pending := &PendingCapture{
		Image: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame),
		Label: label,
	}

	s.mu.Lock()
	s.pending = pending
	s.liveLabel = label
	s.mu.Unlock()

	return pending, nil
}

// StageUpload stages an already-encoded image instead of a camera capture,
// classifying it when raw bytes are available.
func (s *AppState) StageUpload(raw []byte) *PendingCapture {
	s.stopCamera()

	label := "Analyzed"
	if s.classifier != nil && len(raw) > 0 {
		if l, conf, err := s.classifier.Classify(raw); err == nil {
			label = formatLabel(l, conf)
		}
	}

	pending := &PendingCapture{
		Image: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw),
		Label: label,
	}

	s.mu.Lock()
	s.pending = pending
	s.mu.Unlock()

	return pending
}

// ConfirmSubmission submits the staged capture as a report. Contact name
// and phone are required. The complaint id is only returned once the
// server acknowledged the write; a failed submission surfaces as an error
// rather than an optimistic success.
func (s *AppState) ConfirmSubmission(name, phone, description string) (string, error) {
	if name == "" || phone == "" {
		return "", fmt.Errorf("contact info required")
	}

	s.mu.Lock()
	pending := s.pending
	loc := s.loc
	s.mu.Unlock()

	if pending == nil {
		return "", fmt.Errorf("no capture to submit")
	}
	if loc == nil {
		loc = &models.LatLng{}
	}

	complaintID := GenerateComplaintID()
	_, err := s.api.CreateReport(&models.CreateReportRequest{
		Category:     pending.Label,
		Location:     loc,
		Image:        pending.Image,
		Status:       models.StatusReceived,
		ComplaintID:  complaintID,
		ContactName:  name,
		ContactPhone: phone,
		Description:  description,
	})
	if err != nil {
		log.WithError(err).Error("report submission failed")
		return "", err
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	s.Refresh()
	return complaintID, nil
}

// VoteAndRefresh casts a vote and reloads the snapshot.
func (s *AppState) VoteAndRefresh(id int64, voteType string) error {
	if err := s.api.Vote(id, voteType); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

// UpdateStatus changes a report's status from the admin panel.
func (s *AppState) UpdateStatus(id int64, status string) error {
	if err := s.api.UpdateReport(id, &models.ReportUpdate{Status: &status}); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

// DeleteAndRefresh permanently deletes a report from the admin panel.
func (s *AppState) DeleteAndRefresh(id int64) error {
	if err := s.api.DeleteReport(id); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

// DashboardStats computes the home view counters from the snapshot.
func (s *AppState) DashboardStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Total: len(s.reports)}
	for _, r := range s.reports {
		if r.Status == models.StatusResolved {
			stats.Resolved++
		} else {
			stats.Pending++
		}
	}
	stats.Points = stats.Total * 50
	return stats
}

// ActiveReports returns up to n unresolved reports, newest first.
func (s *AppState) ActiveReports(n int) []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := []models.Report{}
	for _, r := range s.reports {
		if r.Status != models.StatusResolved {
			active = append(active, r)
			if len(active) == n {
				break
			}
		}
	}
	return active
}

func formatLabel(label string, confidence float64) string {
	return fmt.Sprintf("%s (%d%%)", label, int(confidence*100+0.5))
}
