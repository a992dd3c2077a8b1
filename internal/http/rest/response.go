package rest

import (
	"encoding/json"
	"net/http"

	"github.com/bwise1/reportnow/util"
	"github.com/bwise1/reportnow/util/tracing"
	"github.com/rs/zerolog/log"
)

// ServerResponse is what every Handler returns. On success Data is written as
// the body; on failure the body is an ErrorResponse built from Message.
type ServerResponse struct {
	Err        error
	Message    string
	Status     string
	StatusCode int
	Data       interface{}
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	event := log.Warn()
	if util.StatusCode(status) >= http.StatusInternalServerError {
		event = log.Error()
	}
	if tc != nil {
		event = event.Str("request_id", tc.RequestID).Str("request_source", tc.RequestSource)
	}
	event.Err(err).Str("status", status).Msg(message)

	return &ServerResponse{
		Err:        err,
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	if message == "" && err != nil {
		message = err.Error()
	}
	body, marshalErr := json.Marshal(ErrorResponse{Success: false, Error: message})
	if marshalErr != nil {
		http.Error(w, message, util.StatusCode(status))
		return
	}
	writeJSONResponse(w, body, util.StatusCode(status))
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("unable to write response body")
	}
}
