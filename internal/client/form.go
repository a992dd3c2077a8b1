package client

import (
	"context"
	"sync"

	"github.com/bwise1/reportnow/internal/model"
	"github.com/bwise1/reportnow/util"
	"github.com/pkg/errors"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

var (
	ErrSubmitting       = errors.New("a submission is already in progress")
	ErrAlreadySubmitted = errors.New("report was already submitted")
)

// ValidationError is returned by Submit when the staged report fails the
// shared submission rules. Nothing is sent to the server.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Backend is the part of Client the form talks to.
type Backend interface {
	AnalyzeImage(ctx context.Context, imageDataURL string) (model.ImageAnalysis, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	CreateReport(ctx context.Context, req model.CreateReportRequest) (model.CreateReportResponse, error)
}

// Form stages one report. Image analysis and location lookup are optional
// and may run in any order before Submit.
type Form struct {
	backend    Backend
	onComplete func(reportID string)

	mu      sync.Mutex
	state   State
	lastErr string
	report  model.CreateReportRequest
	result  model.CreateReportResponse
}

// NewForm starts a form with a freshly generated report id.
func NewForm(backend Backend, reportType string, onComplete func(reportID string)) *Form {
	return &Form{
		backend:    backend,
		onComplete: onComplete,
		state:      StateIdle,
		report: model.CreateReportRequest{
			ReportID:   util.GenerateReportID(),
			ReportType: reportType,
		},
	}
}

func (f *Form) ReportID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.report.ReportID
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError is the message of the most recent failed submission.
func (f *Form) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Form) Result() model.CreateReportResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Edit applies fn to the staged report. The report id cannot be changed.
func (f *Form) Edit(fn func(r *model.CreateReportRequest)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.report.ReportID
	fn(&f.report)
	f.report.ReportID = id
}

func (f *Form) Report() model.CreateReportRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.report
}

// AttachImage stages the photo and fills title, type and description from
// its analysis. The image stays staged even when analysis fails.
func (f *Form) AttachImage(ctx context.Context, imageDataURL string) (model.ImageAnalysis, error) {
	f.Edit(func(r *model.CreateReportRequest) { r.Image = imageDataURL })

	analysis, err := f.backend.AnalyzeImage(ctx, imageDataURL)
	if err != nil {
		return model.ImageAnalysis{}, errors.Wrap(err, "analyze image")
	}

	f.Edit(func(r *model.CreateReportRequest) {
		r.Title = analysis.Title
		r.IncidentType = analysis.IncidentType
		r.Description = analysis.Description
	})
	return analysis, nil
}

// UseLocation records the device coordinates and fills the address.
func (f *Form) UseLocation(ctx context.Context, lat, lng float64) (string, error) {
	f.Edit(func(r *model.CreateReportRequest) {
		r.Latitude = lat
		r.Longitude = lng
	})

	address, err := f.backend.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return "", errors.Wrap(err, "reverse geocode")
	}

	f.Edit(func(r *model.CreateReportRequest) { r.Location = address })
	return address, nil
}

// Submit validates and sends the staged report. A failed submission returns
// the form to idle so it can be resubmitted.
func (f *Form) Submit(ctx context.Context) (model.CreateReportResponse, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return model.CreateReportResponse{}, ErrSubmitting
	case StateSuccess:
		f.mu.Unlock()
		return model.CreateReportResponse{}, ErrAlreadySubmitted
	}

	if err := util.ValidateStruct(f.report); err != nil {
		verr := &ValidationError{Message: util.ValidationMessage(err)}
		f.lastErr = verr.Message
		f.mu.Unlock()
		return model.CreateReportResponse{}, verr
	}

	f.state = StateSubmitting
	f.lastErr = ""
	req := f.report
	f.mu.Unlock()

	resp, err := f.backend.CreateReport(ctx, req)

	f.mu.Lock()
	if err != nil {
		f.state = StateIdle
		f.lastErr = err.Error()
		f.mu.Unlock()
		return model.CreateReportResponse{}, err
	}
	f.state = StateSuccess
	f.result = resp
	f.mu.Unlock()

	if f.onComplete != nil {
		f.onComplete(resp.ReportID)
	}
	return resp, nil
}
