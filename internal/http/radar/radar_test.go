package radar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", srv.URL)
	require.NoError(t, err)
	return c
}

func TestReverseGeocode_FirstAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/geocode/reverse", r.URL.Path)
		assert.Equal(t, "6.5244,3.3792", r.URL.Query().Get("coordinates"))
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meta":{"code":200},"addresses":[
			{"formattedAddress":"12 Marina Rd, Lagos, NG"},
			{"formattedAddress":"Somewhere else"}]}`))
	})

	address, err := c.ReverseGeocode(context.Background(), 6.5244, 3.3792)
	require.NoError(t, err)
	assert.Equal(t, "12 Marina Rd, Lagos, NG", address)
}

func TestReverseGeocode_NoAddresses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"code":200},"addresses":[]}`))
	})

	address, err := c.ReverseGeocode(context.Background(), 1.5, 2.5)
	require.NoError(t, err)
	assert.Equal(t, AddressNotFound, address)
}

func TestReverseGeocode_UpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"meta":{"code":401,"message":"Unauthorized"}}`, http.StatusUnauthorized)
	})

	_, err := c.ReverseGeocode(context.Background(), 1.5, 2.5)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "Unauthorized")
}

func TestReverseGeocode_MissingKey(t *testing.T) {
	c, err := NewClient("", "")
	require.NoError(t, err)

	_, err = c.ReverseGeocode(context.Background(), 1.5, 2.5)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
