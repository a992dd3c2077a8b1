package radar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwise1/reportnow/internal/metrics"
	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

const (
	defaultRadarBaseURL = "https://api.radar.io"

	// AddressNotFound is returned when the provider knows no address for the point.
	AddressNotFound = "Address not found"
)

var ErrMissingAPIKey = errors.New("server configuration error: missing geocoding API key")

// UpstreamError is a non-2xx answer from Radar.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("radar request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client handles communication with the Radar geocoding API.
type Client struct {
	BaseURL    *url.URL
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a Radar client. An empty baseURL uses the public API.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultRadarBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse radar base url")
	}
	return &Client{
		BaseURL: u,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}, nil
}

// ReverseQuery holds the parameters of /v1/geocode/reverse.
type ReverseQuery struct {
	Coordinates string   `url:"coordinates"`
	Layers      []string `url:"layers,omitempty,comma"`
}

type Address struct {
	FormattedAddress string  `json:"formattedAddress"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Country          string  `json:"country,omitempty"`
	City             string  `json:"city,omitempty"`
	Layer            string  `json:"layer,omitempty"`
}

type ReverseResponse struct {
	Meta struct {
		Code int `json:"code"`
	} `json:"meta"`
	Addresses []Address `json:"addresses"`
}

func (c *Client) buildURL(endpoint string, queryParams interface{}) (string, error) {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parse endpoint")
	}
	u := c.BaseURL.ResolveReference(rel)

	if queryParams != nil {
		v, err := query.Values(queryParams)
		if err != nil {
			return "", errors.Wrap(err, "encode query parameters")
		}
		u.RawQuery = v.Encode()
	}
	return u.String(), nil
}

// ReverseGeocode returns the first formatted address Radar knows for the
// coordinates, or AddressNotFound when the list is empty.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if c.APIKey == "" {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return "", ErrMissingAPIKey
	}

	params := ReverseQuery{Coordinates: fmt.Sprintf("%g,%g", lat, lng)}
	reqURL, err := c.buildURL("/v1/geocode/reverse", params)
	if err != nil {
		return "", errors.Wrap(err, "build reverse geocode URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "create reverse geocode request")
	}
	req.Header.Set("Authorization", c.APIKey)

	var result ReverseResponse
	if err := c.do(req, &result); err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return "", errors.Wrap(err, "execute reverse geocode request")
	}

	if len(result.Addresses) == 0 || strings.TrimSpace(result.Addresses[0].FormattedAddress) == "" {
		metrics.GeocodeLookups.WithLabelValues("not_found").Inc()
		return AddressNotFound, nil
	}

	metrics.GeocodeLookups.WithLabelValues("ok").Inc()
	return result.Addresses[0].FormattedAddress, nil
}

func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute HTTP request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}
