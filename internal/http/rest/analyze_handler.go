package rest

import (
	"context"
	"net/http"

	"github.com/bwise1/reportnow/internal/http/gemini"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/bwise1/reportnow/util"
	"github.com/bwise1/reportnow/util/values"
	"github.com/pkg/errors"
)

func (api *API) AnalyzeImage(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracingFrom(r)

	var req model.AnalyzeImageRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "Invalid request body", values.BadRequestBody, &tc)
	}
	if api.Analyzer == nil {
		return respondWithError(gemini.ErrMissingAPIKey, gemini.ErrMissingAPIKey.Error(), values.ConfigErr, &tc)
	}
	if !util.NotBlank(req.Image) {
		return respondWithError(errMissingParam("image"), "Image data is required", values.BadRequestBody, &tc)
	}

	analysis, status, message, err := api.AnalyzeImageHelper(r.Context(), req.Image)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       analysis,
	}
}

func (api *API) AnalyzeImageHelper(ctx context.Context, image string) (model.ImageAnalysis, string, string, error) {
	if api.Analyzer == nil {
		return model.ImageAnalysis{}, values.ConfigErr, gemini.ErrMissingAPIKey.Error(), gemini.ErrMissingAPIKey
	}

	analysis, err := api.Analyzer.Analyze(ctx, image)
	if err != nil {
		switch {
		case errors.Is(err, gemini.ErrInvalidInput):
			return model.ImageAnalysis{}, values.BadRequestBody, "Invalid image data format", err
		case errors.Is(err, gemini.ErrMissingAPIKey):
			return model.ImageAnalysis{}, values.ConfigErr, err.Error(), err
		default:
			return model.ImageAnalysis{}, values.Error, "Failed to analyze image", err
		}
	}
	return analysis, values.Success, "Image analyzed successfully", nil
}
