package model

type AnalyzeImageRequest struct {
	Image string `json:"image"`
}

// ImageAnalysis is what the vision model suggested for a photo. Degraded is
// set when the model was unavailable and the fields hold fallback values.
type ImageAnalysis struct {
	Title          string `json:"title"`
	IncidentType   string `json:"incidentType"`
	Description    string `json:"description"`
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degradedReason,omitempty"`
}
