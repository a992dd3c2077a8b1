package rest

import (
	"context"
	"math"

	"github.com/bwise1/reportnow/internal/metrics"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/bwise1/reportnow/util"
	"github.com/bwise1/reportnow/util/values"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = math.MaxInt32 / maxPageSize

	reasonImageUpload = "image upload failed"
	reasonDatabase    = "database unavailable"
	unsavedIDPrefix   = "unsaved-"
)

var errStoreNotConfigured = errors.Wrap(ErrStoreUnavailable, "no database configured")

// reportTypeLabel keeps the report_type metric label to the known types.
func reportTypeLabel(reportType string) string {
	switch reportType {
	case model.ReportTypeEmergency, model.ReportTypeNonEmergency:
		return reportType
	}
	return "unknown"
}

func (api *API) CreateReportHelper(ctx context.Context, req model.CreateReportRequest) (model.CreateReportResponse, string, string, error) {
	if err := util.ValidateStruct(req); err != nil {
		metrics.ReportsCreated.WithLabelValues(reportTypeLabel(req.ReportType), "invalid").Inc()
		return model.CreateReportResponse{}, values.BadRequestBody, util.ValidationMessage(err), err
	}

	resp := model.CreateReportResponse{
		Success:  true,
		ReportID: req.ReportID,
		Message:  "Report submitted successfully",
	}

	imageURL := ""
	if util.NotBlank(req.Image) {
		url, err := api.uploadImage(ctx, req.Image, req.ReportID)
		if err != nil {
			log.Warn().Err(err).Str("report_id", req.ReportID).Msg("image upload failed, creating report without image")
			resp.Degraded = true
			resp.DegradedReason = reasonImageUpload
		}
		imageURL = url
	}

	created, err := api.createReport(ctx, req.ToReport(imageURL))
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateReport):
			metrics.ReportsCreated.WithLabelValues(reportTypeLabel(req.ReportType), "conflict").Inc()
			return model.CreateReportResponse{}, values.Conflict, "A report with this ID already exists", err
		case errors.Is(err, ErrStoreUnavailable):
			if api.Config != nil && api.Config.DegradedCreate {
				log.Error().Err(err).Str("report_id", req.ReportID).Msg("database unavailable, report accepted without being saved")
				metrics.ReportsCreated.WithLabelValues(reportTypeLabel(req.ReportType), "unsaved").Inc()
				return model.CreateReportResponse{
					Success:        true,
					ReportID:       unsavedIDPrefix + req.ReportID,
					Message:        "Report received but could not be saved",
					Degraded:       true,
					DegradedReason: reasonDatabase,
				}, values.Accepted, "Report received but could not be saved", nil
			}
			metrics.ReportsCreated.WithLabelValues(reportTypeLabel(req.ReportType), "unavailable").Inc()
			return model.CreateReportResponse{}, values.Unavailable, "Report storage is unavailable, please try again", err
		default:
			metrics.ReportsCreated.WithLabelValues(reportTypeLabel(req.ReportType), "error").Inc()
			return model.CreateReportResponse{}, values.Error, "Failed to submit report", err
		}
	}

	outcome := "ok"
	if resp.Degraded {
		outcome = "degraded"
	}
	metrics.ReportsCreated.WithLabelValues(reportTypeLabel(req.ReportType), outcome).Inc()

	api.broadcast(model.EventReportCreated, created)
	resp.ReportID = created.ReportID
	return resp, values.Created, resp.Message, nil
}

func (api *API) uploadImage(ctx context.Context, image, reportID string) (string, error) {
	if api.Images == nil {
		metrics.ImageUploads.WithLabelValues("skipped").Inc()
		return "", errors.New("image storage is not configured")
	}
	url, err := api.Images.UploadImage(ctx, image, reportID)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.ImageUploads.WithLabelValues("ok").Inc()
	return url, nil
}

func (api *API) createReport(ctx context.Context, report model.Report) (model.Report, error) {
	if api.Reports == nil {
		return model.Report{}, errStoreNotConfigured
	}
	return api.Reports.Create(ctx, report)
}

func (api *API) UpdateReportStatusHelper(ctx context.Context, reportID string, req model.UpdateStatusRequest) (model.Report, string, string, error) {
	if !util.NotBlank(reportID) {
		return model.Report{}, values.BadRequestBody, "Report ID is required as a query parameter", errors.New("missing reportId")
	}
	if err := util.ValidateStruct(req); err != nil {
		return model.Report{}, values.BadRequestBody, "Status is required in the request body", err
	}
	if api.Reports == nil {
		return model.Report{}, values.Unavailable, "Report storage is unavailable, please try again", errStoreNotConfigured
	}

	updated, err := api.Reports.UpdateStatus(ctx, reportID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrReportNotFound):
			return model.Report{}, values.NotFound, "Report not found", err
		case errors.Is(err, ErrStoreUnavailable):
			return model.Report{}, values.Unavailable, "Report storage is unavailable, please try again", err
		default:
			return model.Report{}, values.Error, "Failed to update report", err
		}
	}
	metrics.StatusUpdates.Inc()

	if api.Notifier != nil {
		api.Notifier.Dispatch(updated)
	}
	api.broadcast(model.EventReportUpdate, updated)

	return updated, values.Success, "Report updated successfully", nil
}

func (api *API) GetReportHelper(ctx context.Context, reportID string) (model.Report, string, string, error) {
	if api.Reports == nil {
		return model.Report{}, values.Unavailable, "Report storage is unavailable, please try again", errStoreNotConfigured
	}
	report, err := api.Reports.GetByReportID(ctx, reportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrReportNotFound):
			return model.Report{}, values.NotFound, "Report not found", err
		case errors.Is(err, ErrStoreUnavailable):
			return model.Report{}, values.Unavailable, "Report storage is unavailable, please try again", err
		default:
			return model.Report{}, values.Error, "Failed to fetch report", err
		}
	}
	return report, values.Success, "Report fetched successfully", nil
}

type ReportPage struct {
	Reports  []model.Report `json:"reports"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

func (api *API) ListReportsHelper(ctx context.Context, params model.ListReportsParams) (ReportPage, string, string, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Page > maxPage {
		params.Page = maxPage
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	if api.Reports == nil {
		return ReportPage{}, values.Unavailable, "Report storage is unavailable, please try again", errStoreNotConfigured
	}

	reports, total, err := api.Reports.List(ctx, params)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return ReportPage{}, values.Unavailable, "Report storage is unavailable, please try again", err
		}
		return ReportPage{}, values.Error, "Failed to fetch reports", err
	}
	for i := range reports {
		reports[i] = reports[i].Public()
	}
	return ReportPage{Reports: reports, Total: total, Page: params.Page, PageSize: params.PageSize}, values.Success, "Reports fetched successfully", nil
}

func (api *API) broadcast(eventType string, report model.Report) {
	if api.Live == nil {
		return
	}
	api.Live.Broadcast(model.ReportEvent{Type: eventType, Report: report.Public()})
}
