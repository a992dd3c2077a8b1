package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwise1/reportnow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSubmit(t *testing.T) {
	var got model.CreateReportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analyze-image":
			_ = json.NewEncoder(w).Encode(model.ImageAnalysis{Title: "Fire", IncidentType: "Fire Outbreak", Description: "Smoke"})
		case "/api/reports/create":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(model.CreateReportResponse{Success: true, ReportID: got.ReportID, Message: "Report submitted successfully"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	image := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(image, []byte("\x89PNG\r\n\x1a\nrest"), 0o600))

	out, err := run(t, "submit", "--server", srv.URL, "--image", image, "--location", "Lagos", "--notify", "--email", "a@b.com")
	require.NoError(t, err)

	assert.Equal(t, "Fire", got.Title)
	assert.Equal(t, "Fire Outbreak", got.IncidentType)
	assert.Equal(t, "Lagos", got.Location)
	assert.Equal(t, model.ReportTypeEmergency, got.ReportType)
	assert.Contains(t, got.Image, "data:image/png;base64,")
	assert.True(t, got.WantsNotifications)
	assert.Contains(t, out, `"success": true`)
}

func TestSubmit_ValidationFailsLocally(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := run(t, "submit", "--server", srv.URL, "--title", "Fire", "--notify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required when notifications are enabled")
	assert.Zero(t, calls)
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(model.Report{ReportID: "abc", Status: model.StatusPending})
		case http.MethodPatch:
			assert.Equal(t, "abc", r.URL.Query().Get("reportId"))
			var req model.UpdateStatusRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_ = json.NewEncoder(w).Encode(model.Report{ReportID: "abc", Status: req.Status})
		}
	}))
	defer srv.Close()
	t.Setenv("REPORTNOW_TOKEN", "secret")

	out, err := run(t, "status", "--server", srv.URL, "abc")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "PENDING"`)

	out, err = run(t, "status", "--server", srv.URL, "abc", model.StatusResolved)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "RESOLVED"`)
}
