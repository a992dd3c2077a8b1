package rest

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwise1/reportnow/internal/http/gemini"
	"github.com/bwise1/reportnow/internal/http/radar"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeImage(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]string
		analyzer ImageAnalyzer
		code     int
		errMsg   string
	}{
		{
			name:     "missing image",
			body:     map[string]string{},
			analyzer: &fakeAnalyzer{},
			code:     http.StatusBadRequest,
			errMsg:   "Image data is required",
		},
		{
			name:     "missing image without analyzer",
			body:     map[string]string{},
			analyzer: nil,
			code:     http.StatusInternalServerError,
			errMsg:   gemini.ErrMissingAPIKey.Error(),
		},
		{
			name:     "malformed data url",
			body:     map[string]string{"image": "not-a-data-url"},
			analyzer: &fakeAnalyzer{err: gemini.ErrInvalidInput},
			code:     http.StatusBadRequest,
			errMsg:   "Invalid image data format",
		},
		{
			name:     "no analyzer configured",
			body:     map[string]string{"image": "data:image/png;base64,aGVsbG8="},
			analyzer: nil,
			code:     http.StatusInternalServerError,
			errMsg:   gemini.ErrMissingAPIKey.Error(),
		},
		{
			name:     "missing credential",
			body:     map[string]string{"image": "data:image/png;base64,aGVsbG8="},
			analyzer: &fakeAnalyzer{err: gemini.ErrMissingAPIKey},
			code:     http.StatusInternalServerError,
			errMsg:   gemini.ErrMissingAPIKey.Error(),
		},
		{
			name:     "service error",
			body:     map[string]string{"image": "data:image/png;base64,aGVsbG8="},
			analyzer: &fakeAnalyzer{err: fmt.Errorf("%w: boom", gemini.ErrService)},
			code:     http.StatusInternalServerError,
			errMsg:   "Failed to analyze image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(nil)
			api.Analyzer = tt.analyzer

			rec := doJSON(t, api.handler, http.MethodPost, "/api/analyze-image", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.errMsg, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestAnalyzeImage_Success(t *testing.T) {
	api := newTestAPI(nil)
	api.Analyzer = &fakeAnalyzer{analysis: gemini.FallbackAnalysis("quota exceeded")}

	rec := doJSON(t, api.handler, http.MethodPost, "/api/analyze-image", map[string]string{"image": "data:image/png;base64,aGVsbG8="})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[model.ImageAnalysis](t, rec)
	assert.Equal(t, "Emergency Incident", got.Title)
	assert.Equal(t, "Other", got.IncidentType)
	assert.Equal(t, "Emergency", got.Description)
	assert.True(t, got.Degraded)
	assert.Equal(t, "quota exceeded", got.DegradedReason)
}

func TestGetCurrentLocation_RequiresCoordinates(t *testing.T) {
	bodies := []map[string]interface{}{
		{},
		{"latitude": 6.5},
		{"longitude": 3.3},
		{"latitude": 0, "longitude": 3.3},
		{"latitude": 6.5, "longitude": 0},
	}

	for _, body := range bodies {
		t.Run(fmt.Sprint(body), func(t *testing.T) {
			api := newTestAPI(nil)
			rec := doJSON(t, api.handler, http.MethodPost, "/api/get-current-location", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Latitude and longitude are required", decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestGetCurrentLocation(t *testing.T) {
	geocoder := &fakeGeocoder{address: "12 Marina Rd, Lagos, NG"}
	api := newTestAPI(nil)
	api.Geocoder = geocoder

	rec := doJSON(t, api.handler, http.MethodPost, "/api/get-current-location", map[string]float64{"latitude": 6.5244, "longitude": 3.3792})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12 Marina Rd, Lagos, NG", decode[model.LocationResponse](t, rec).Address)
	assert.Equal(t, 6.5244, geocoder.gotLat)
	assert.Equal(t, 3.3792, geocoder.gotLng)
}

func TestGetCurrentLocation_Failures(t *testing.T) {
	tests := []struct {
		name     string
		geocoder Geocoder
		code     int
	}{
		{"no geocoder", nil, http.StatusInternalServerError},
		{"missing key", &fakeGeocoder{err: radar.ErrMissingAPIKey}, http.StatusInternalServerError},
		{"provider rejected", &fakeGeocoder{err: &radar.UpstreamError{StatusCode: http.StatusUnauthorized}}, http.StatusBadRequest},
		{"provider down", &fakeGeocoder{err: &radar.UpstreamError{StatusCode: http.StatusBadGateway}}, http.StatusInternalServerError},
		{"transport", &fakeGeocoder{err: errors.New("connection reset")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(nil)
			api.Geocoder = tt.geocoder

			rec := doJSON(t, api.handler, http.MethodPost, "/api/get-current-location", map[string]float64{"latitude": 1.5, "longitude": 2.5})
			assert.Equal(t, tt.code, rec.Code)
			assert.False(t, decode[ErrorResponse](t, rec).Success)
		})
	}
}
