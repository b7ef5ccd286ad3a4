package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-guardian-backend/config"
	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/pkg/logger"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*HTTPAdapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.ProviderConfig{
		BaseURL:       server.URL,
		APIKey:        "test-key",
		Timeout:       2 * time.Second,
		QuoteCacheTTL: time.Minute,
	}
	return NewHTTPAdapter(cfg, logger.NewNop()), server
}

func TestFetchLiveStatus(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/flights/status", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "TK", r.URL.Query().Get("carrier"))

		json.NewEncoder(w).Encode(LiveStatus{Status: StateDelayed, DelayMinutes: 190})
	})

	status, err := adapter.FetchLiveStatus(context.Background(), SegmentRef{
		CarrierCode:  "TK",
		FlightNumber: "16",
		Departure:    time.Date(2026, 4, 24, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, StateDelayed, status.Status)
	assert.Equal(t, 190, status.DelayMinutes)
}

func TestFetchSeatMap(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/flights/seatmap", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"seats": map[string]string{"24A": "OCCUPIED", "24B": "EMPTY"},
		})
	})

	seats, err := adapter.FetchSeatMap(context.Background(), SegmentRef{CarrierCode: "TK", FlightNumber: "16"})
	require.NoError(t, err)
	assert.Equal(t, model.SeatOccupied, seats["24A"])
	assert.Equal(t, model.SeatEmpty, seats["24B"])
}

func TestFetchFareQuote_CachesByMarket(t *testing.T) {
	var calls int32
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(FareQuote{Price: 450, Currency: "EUR", Source: "GDS"})
	})

	query := FareQuery{
		Origin:      "BNE",
		Destination: "IST",
		Date:        time.Date(2026, 4, 24, 0, 0, 0, 0, time.UTC),
		Cabin:       "ECONOMY",
		Currency:    "EUR",
	}

	first, err := adapter.FetchFareQuote(context.Background(), query)
	require.NoError(t, err)
	second, err := adapter.FetchFareQuote(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second quote should come from cache")

	// A different cabin misses the cache.
	query.Cabin = "BUSINESS"
	_, err = adapter.FetchFareQuote(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestUpstreamErrors(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := adapter.FetchLiveStatus(context.Background(), SegmentRef{CarrierCode: "TK", FlightNumber: "16"})
	require.Error(t, err)
	assert.True(t, IsRetryable(err), "5xx should be retryable")

	adapter2, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err = adapter2.FetchLiveStatus(context.Background(), SegmentRef{CarrierCode: "TK", FlightNumber: "16"})
	require.Error(t, err)
	assert.False(t, IsRetryable(err), "4xx should be terminal")
}
