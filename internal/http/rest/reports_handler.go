package rest

import (
	"net/http"
	"strconv"

	"github.com/bwise1/reportnow/internal/model"
	"github.com/bwise1/reportnow/util"
	"github.com/bwise1/reportnow/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) ReportRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/create", Handler(api.CreateReport))
	mux.Method(http.MethodGet, "/", Handler(api.ListReports))
	mux.Get("/live", api.LiveReports)
	mux.Method(http.MethodGet, "/{reportId}", Handler(api.GetReport))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireAdmin)
		r.Method(http.MethodPatch, "/update", Handler(api.UpdateReportStatus))
	})

	return mux
}

func (api *API) CreateReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	var req model.CreateReportRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "Invalid request body", values.BadRequestBody, &tc)
	}

	resp, status, message, err := api.CreateReportHelper(r.Context(), req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       resp,
	}
}

func (api *API) UpdateReportStatus(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	reportID := r.URL.Query().Get("reportId")
	if !util.NotBlank(reportID) {
		return respondWithError(errMissingParam("reportId"), "Report ID is required as a query parameter", values.BadRequestBody, &tc)
	}

	var req model.UpdateStatusRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "Invalid request body", values.BadRequestBody, &tc)
	}

	report, status, message, err := api.UpdateReportStatusHelper(r.Context(), reportID, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       report,
	}
}

func (api *API) GetReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	report, status, message, err := api.GetReportHelper(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       report.Public(),
	}
}

func (api *API) ListReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)
	q := r.URL.Query()

	params := model.ListReportsParams{
		Status:     q.Get("status"),
		ReportType: q.Get("reportType"),
	}
	var err error
	if params.Page, err = intParam(q.Get("page")); err != nil {
		return respondWithError(err, "page must be a number", values.BadRequestBody, &tc)
	}
	if params.PageSize, err = intParam(q.Get("pageSize")); err != nil {
		return respondWithError(err, "pageSize must be a number", values.BadRequestBody, &tc)
	}

	page, status, message, err := api.ListReportsHelper(r.Context(), params)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       page,
	}
}

// LiveReports upgrades to the websocket feed of created and updated reports.
func (api *API) LiveReports(w http.ResponseWriter, r *http.Request) {
	if api.Live == nil {
		writeErrorResponse(w, errFeatureDisabled("live feed"), values.Unavailable, "Live feed is not available")
		return
	}
	api.Live.HandleConnections(w, r)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
