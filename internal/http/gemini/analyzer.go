package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwise1/reportnow/internal/metrics"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/bwise1/reportnow/util"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

// Prompt asks the model for three labelled lines.
const Prompt = `Analyze this emergency situation image and respond in this exact format without any asterisks or bullet points:
TITLE: Write a clear, brief title
TYPE: Choose one (Theft, Fire Outbreak, Medical Emergency, Natural Disaster, Violence, or Other)
DESCRIPTION: Write a clear, concise description`

const (
	labelTitle       = "TITLE:"
	labelType        = "TYPE:"
	labelDescription = "DESCRIPTION:"

	defaultTitle        = "Report"
	defaultIncidentType = "Other"
	descriptionFallback = 100
)

var (
	ErrInvalidInput  = util.ErrInvalidDataURL
	ErrMissingAPIKey = errors.New("server configuration error: missing AI API key")
	ErrService       = errors.New("AI service error")
)

// Generator sends a prompt and one inline image to a multimodal model and
// returns the raw text answer.
type Generator interface {
	Generate(ctx context.Context, prompt string, image util.DataURL) (string, error)
}

// Analyzer turns a photo into suggested report fields.
type Analyzer struct {
	generator Generator
}

// NewAnalyzer returns an analyzer. A nil generator means no credential was
// configured; Analyze then fails with ErrMissingAPIKey.
func NewAnalyzer(generator Generator) *Analyzer {
	return &Analyzer{generator: generator}
}

// Analyze validates the data URL, queries the model and parses its answer.
// Quota and model-not-found failures yield the fallback analysis marked as
// degraded instead of an error.
func (a *Analyzer) Analyze(ctx context.Context, imageDataURL string) (model.ImageAnalysis, error) {
	if a.generator == nil {
		metrics.ImageAnalyses.WithLabelValues("error").Inc()
		return model.ImageAnalysis{}, ErrMissingAPIKey
	}

	image, err := util.ParseDataURL(imageDataURL)
	if err != nil {
		metrics.ImageAnalyses.WithLabelValues("invalid").Inc()
		return model.ImageAnalysis{}, err
	}

	text, err := a.generator.Generate(ctx, Prompt, image)
	if err != nil {
		if reason, ok := unavailableReason(err); ok {
			log.Warn().Err(err).Str("reason", reason).Msg("vision model unavailable, returning fallback analysis")
			metrics.ImageAnalyses.WithLabelValues("degraded").Inc()
			return FallbackAnalysis(reason), nil
		}
		metrics.ImageAnalyses.WithLabelValues("error").Inc()
		return model.ImageAnalysis{}, fmt.Errorf("%w: %v", ErrService, err)
	}

	metrics.ImageAnalyses.WithLabelValues("ok").Inc()
	return ParseAnalysis(text), nil
}

// FallbackAnalysis is returned when the model cannot be reached.
func FallbackAnalysis(reason string) model.ImageAnalysis {
	return model.ImageAnalysis{
		Title:          "Emergency Incident",
		IncidentType:   "Other",
		Description:    "Emergency",
		Degraded:       true,
		DegradedReason: reason,
	}
}

// ParseAnalysis extracts the TITLE, TYPE and DESCRIPTION lines. Missing
// labels fall back to "Report", "Other" and the first 100 characters of the
// raw answer.
func ParseAnalysis(text string) model.ImageAnalysis {
	var title, incidentType, description string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case title == "" && strings.HasPrefix(line, labelTitle):
			title = strings.TrimSpace(strings.TrimPrefix(line, labelTitle))
		case incidentType == "" && strings.HasPrefix(line, labelType):
			incidentType = strings.TrimSpace(strings.TrimPrefix(line, labelType))
		case description == "" && strings.HasPrefix(line, labelDescription):
			description = strings.TrimSpace(strings.TrimPrefix(line, labelDescription))
		}
	}

	if title == "" {
		title = defaultTitle
	}
	if incidentType == "" {
		incidentType = defaultIncidentType
	}
	if description == "" {
		description = util.Truncate(text, descriptionFallback)
	}

	return model.ImageAnalysis{
		Title:        title,
		IncidentType: incidentType,
		Description:  description,
	}
}

// unavailableReason recognises quota exhaustion and unknown models.
func unavailableReason(err error) (string, bool) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPCode() == http.StatusTooManyRequests, apiErr.GRPCStatus().Code() == codes.ResourceExhausted:
			return "quota exceeded", true
		case apiErr.HTTPCode() == http.StatusNotFound, apiErr.GRPCStatus().Code() == codes.NotFound:
			return "model not found", true
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusTooManyRequests:
			return "quota exceeded", true
		case http.StatusNotFound:
			return "model not found", true
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"), strings.Contains(strings.ToLower(msg), "quota"):
		return "quota exceeded", true
	case strings.Contains(msg, "404"):
		return "model not found", true
	}
	return "", false
}
