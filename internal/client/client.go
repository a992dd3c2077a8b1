// Package client is a typed client for the report API, used by reportctl and
// by the submission Form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bwise1/reportnow/internal/model"
	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

const requestSource = "reportctl"

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	BaseURL    *url.URL
	AdminToken string
	HTTPClient *http.Client
}

func New(baseURL, adminToken string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	return &Client{
		BaseURL:    u,
		AdminToken: adminToken,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type updateQuery struct {
	ReportID string `url:"reportId"`
}

func (c *Client) AnalyzeImage(ctx context.Context, imageDataURL string) (model.ImageAnalysis, error) {
	var out model.ImageAnalysis
	err := c.do(ctx, http.MethodPost, "/api/analyze-image", nil, model.AnalyzeImageRequest{Image: imageDataURL}, &out)
	return out, err
}

func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	var out model.LocationResponse
	err := c.do(ctx, http.MethodPost, "/api/get-current-location", nil, model.LocationRequest{Latitude: &lat, Longitude: &lng}, &out)
	return out.Address, err
}

func (c *Client) CreateReport(ctx context.Context, req model.CreateReportRequest) (model.CreateReportResponse, error) {
	var out model.CreateReportResponse
	err := c.do(ctx, http.MethodPost, "/api/reports/create", nil, req, &out)
	return out, err
}

func (c *Client) UpdateStatus(ctx context.Context, reportID, status string) (model.Report, error) {
	var out model.Report
	err := c.do(ctx, http.MethodPatch, "/api/reports/update", updateQuery{ReportID: reportID}, model.UpdateStatusRequest{Status: status}, &out)
	return out, err
}

func (c *Client) GetReport(ctx context.Context, reportID string) (model.Report, error) {
	var out model.Report
	err := c.do(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(reportID), nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, params, body, v interface{}) error {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(err, "parse endpoint")
	}
	u := c.BaseURL.ResolveReference(rel)
	if params != nil {
		q, err := query.Values(params)
		if err != nil {
			return errors.Wrap(err, "encode query parameters")
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Source", requestSource)
	if c.AdminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AdminToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute HTTP request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = string(raw)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}
