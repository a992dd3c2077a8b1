package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bwise1/reportnow/config"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/google/uuid"
)

type fakeStore struct {
	mu          sync.Mutex
	reports     map[string]model.Report
	createCalls int
	createErr   error
	lastList    model.ListReportsParams
}

func newFakeStore() *fakeStore {
	return &fakeStore{reports: make(map[string]model.Report)}
}

func (s *fakeStore) Create(_ context.Context, report model.Report) (model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return model.Report{}, s.createErr
	}
	if _, ok := s.reports[report.ReportID]; ok {
		return model.Report{}, ErrDuplicateReport
	}
	now := time.Now().UTC()
	report.ID = uuid.New()
	report.CreatedAt = now
	report.UpdatedAt = now
	s.reports[report.ReportID] = report
	return report, nil
}

func (s *fakeStore) GetByReportID(_ context.Context, reportID string) (model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[reportID]
	if !ok {
		return model.Report{}, ErrReportNotFound
	}
	return report, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, reportID, status string) (model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[reportID]
	if !ok {
		return model.Report{}, ErrReportNotFound
	}
	report.Status = status
	report.UpdatedAt = time.Now().UTC()
	s.reports[reportID] = report
	return report, nil
}

func (s *fakeStore) List(_ context.Context, params model.ListReportsParams) ([]model.Report, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastList = params
	var out []model.Report
	for _, report := range s.reports {
		if params.Status != "" && report.Status != params.Status {
			continue
		}
		if params.ReportType != "" && report.ReportType != params.ReportType {
			continue
		}
		out = append(out, report)
	}
	total := len(out)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

type fakeImages struct {
	url   string
	err   error
	calls int
}

func (f *fakeImages) UploadImage(_ context.Context, _ string, _ string) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeAnalyzer struct {
	analysis model.ImageAnalysis
	err      error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) (model.ImageAnalysis, error) {
	return f.analysis, f.err
}

type fakeGeocoder struct {
	address string
	err     error
	gotLat  float64
	gotLng  float64
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, lat, lng float64) (string, error) {
	f.gotLat, f.gotLng = lat, lng
	return f.address, f.err
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []model.Report
}

func (f *fakeNotifier) Dispatch(report model.Report) bool {
	if !report.ShouldNotify() {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, report)
	return true
}

type fakeLive struct {
	mu     sync.Mutex
	events []model.ReportEvent
}

func (f *fakeLive) Broadcast(event model.ReportEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeLive) HandleConnections(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

type testAPI struct {
	*API
	store    *fakeStore
	images   *fakeImages
	notifier *fakeNotifier
	live     *fakeLive
	handler  http.Handler
}

func newTestAPI(cfg *config.Config) *testAPI {
	if cfg == nil {
		cfg = &config.Config{}
	}
	t := &testAPI{
		store:    newFakeStore(),
		images:   &fakeImages{url: "https://images.example.com/reports/1.png"},
		notifier: &fakeNotifier{},
		live:     &fakeLive{},
	}
	t.API = &API{
		Config:   cfg,
		Reports:  t.store,
		Images:   t.images,
		Analyzer: &fakeAnalyzer{},
		Geocoder: &fakeGeocoder{},
		Notifier: t.notifier,
		Live:     t.live,
		Health:   fakeHealth{},
	}
	t.handler = t.API.setUpServerHandler()
	return t
}
