package model

import (
	"time"

	"github.com/google/uuid"
)

// Report types accepted at submission.
const (
	ReportTypeEmergency    = "EMERGENCY"
	ReportTypeNonEmergency = "NON_EMERGENCY"
)

// Well-known lifecycle statuses. Status is an open string; any value may
// replace any other.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusResolved   = "RESOLVED"
	StatusDismissed  = "DISMISSED"
)

// IncidentTypes is the suggested category list shown to reporters. It is not
// enforced at the data layer.
var IncidentTypes = []string{
	"Theft",
	"Fire Outbreak",
	"Medical Emergency",
	"Natural Disaster",
	"Violence",
	"Other",
	"Lost Item",
	"Found Item",
	"Suspicious Activity",
	"Traffic Accident",
}

type Report struct {
	ID                 uuid.UUID `json:"id"`
	ReportID           string    `json:"reportId"`
	ReportType         string    `json:"reportType"`
	IncidentType       string    `json:"incidentType"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Location           string    `json:"location"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Image              string    `json:"image"`
	Status             string    `json:"status"`
	WantsNotifications bool      `json:"wantsNotifications"`
	Email              string    `json:"email"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ShouldNotify reports whether a status change on r must be emailed.
func (r Report) ShouldNotify() bool {
	return r.WantsNotifications && r.Email != ""
}

// Public returns a copy safe to show to other users.
func (r Report) Public() Report {
	r.Email = ""
	return r
}

// CreateReportRequest is the submission payload. The validate tags, together
// with the struct level notification rule registered in util, are shared by
// the server and the form client.
type CreateReportRequest struct {
	ReportID           string  `json:"reportId" validate:"required,max=64"`
	ReportType         string  `json:"reportType" validate:"required,oneof=EMERGENCY NON_EMERGENCY"`
	IncidentType       string  `json:"incidentType" validate:"max=100"`
	Location           string  `json:"location" validate:"max=500"`
	Latitude           float64 `json:"latitude" validate:"latitude"`
	Longitude          float64 `json:"longitude" validate:"longitude"`
	Title              string  `json:"title" validate:"required,max=200"`
	Description        string  `json:"description" validate:"max=5000"`
	Image              string  `json:"image,omitempty"`
	Status             string  `json:"status,omitempty" validate:"max=32"`
	WantsNotifications bool    `json:"wantsNotifications"`
	Email              string  `json:"email" validate:"omitempty,email"`
}

// ToReport builds the record to persist. imageURL replaces the staged image
// payload.
func (r CreateReportRequest) ToReport(imageURL string) Report {
	status := r.Status
	if status == "" {
		status = StatusPending
	}
	return Report{
		ReportID:           r.ReportID,
		ReportType:         r.ReportType,
		IncidentType:       r.IncidentType,
		Title:              r.Title,
		Description:        r.Description,
		Location:           r.Location,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		Image:              imageURL,
		Status:             status,
		WantsNotifications: r.WantsNotifications,
		Email:              r.Email,
	}
}

type CreateReportResponse struct {
	Success        bool   `json:"success"`
	ReportID       string `json:"reportId"`
	Message        string `json:"message"`
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degradedReason,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}

type ListReportsParams struct {
	Status     string
	ReportType string
	Page       int
	PageSize   int
}

// Offset returns the row offset for the requested page.
func (p ListReportsParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Live feed event types.
const (
	EventReportCreated = "report_created"
	EventReportUpdate  = "report_update"
)

type ReportEvent struct {
	Type   string `json:"type"`
	Report Report `json:"report"`
}
