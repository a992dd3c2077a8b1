package rest

import (
	"context"
	"net/http"

	"github.com/bwise1/reportnow/internal/http/radar"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/bwise1/reportnow/util"
	"github.com/bwise1/reportnow/util/values"
	"github.com/pkg/errors"
)

func (api *API) GetCurrentLocation(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	var req model.LocationRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "Invalid request body", values.BadRequestBody, &tc)
	}

	// Zero counts as missing, matching what the web client sends before the
	// browser has a fix.
	if req.Latitude == nil || req.Longitude == nil || *req.Latitude == 0 || *req.Longitude == 0 {
		return respondWithError(errMissingParam("latitude/longitude"), "Latitude and longitude are required", values.BadRequestBody, &tc)
	}

	address, status, message, err := api.ReverseGeocodeHelper(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       model.LocationResponse{Address: address},
	}
}

func (api *API) ReverseGeocodeHelper(ctx context.Context, lat, lng float64) (string, string, string, error) {
	if api.Geocoder == nil {
		return "", values.ConfigErr, radar.ErrMissingAPIKey.Error(), radar.ErrMissingAPIKey
	}

	address, err := api.Geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		if errors.Is(err, radar.ErrMissingAPIKey) {
			return "", values.ConfigErr, err.Error(), err
		}
		var upstream *radar.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode < http.StatusInternalServerError {
			return "", values.BadRequestBody, "Failed to fetch address", err
		}
		return "", values.Upstream, "Failed to fetch address", err
	}
	return address, values.Success, "Address fetched successfully", nil
}
