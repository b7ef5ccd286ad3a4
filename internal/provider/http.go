package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"travel-guardian-backend/config"
	"travel-guardian-backend/pkg/logger"
)

// HTTPAdapter implements Adapter against the configured upstream API.
// Fare quotes are cached in-process so that several routes or segments on
// the same market/date within the TTL share one upstream call.
type HTTPAdapter struct {
	cfg        *config.ProviderConfig
	client     *http.Client
	quoteCache *cache.Cache
	log        logger.Logger
}

// NewHTTPAdapter creates the production adapter.
func NewHTTPAdapter(cfg *config.ProviderConfig, log logger.Logger) *HTTPAdapter {
	return &HTTPAdapter{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		quoteCache: cache.New(cfg.QuoteCacheTTL, 2*cfg.QuoteCacheTTL),
		log:        log,
	}
}

// FetchLiveStatus asks the upstream for the live status of one segment.
func (a *HTTPAdapter) FetchLiveStatus(ctx context.Context, seg SegmentRef) (*LiveStatus, error) {
	params := url.Values{}
	params.Set("carrier", seg.CarrierCode)
	params.Set("flight", seg.FlightNumber)
	params.Set("date", seg.Departure.UTC().Format("2006-01-02"))

	var status LiveStatus
	if err := a.get(ctx, "/v1/flights/status", params, &status); err != nil {
		return nil, fmt.Errorf("fetch live status for %s%s: %w", seg.CarrierCode, seg.FlightNumber, err)
	}
	return &status, nil
}

// FetchSeatMap asks the upstream for the seat occupancy of one segment.
func (a *HTTPAdapter) FetchSeatMap(ctx context.Context, seg SegmentRef) (SeatMap, error) {
	params := url.Values{}
	params.Set("carrier", seg.CarrierCode)
	params.Set("flight", seg.FlightNumber)
	params.Set("origin", seg.Origin)
	params.Set("destination", seg.Destination)
	params.Set("date", seg.Departure.UTC().Format("2006-01-02"))

	var payload struct {
		Seats SeatMap `json:"seats"`
	}
	if err := a.get(ctx, "/v1/flights/seatmap", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch seat map for %s%s: %w", seg.CarrierCode, seg.FlightNumber, err)
	}
	return payload.Seats, nil
}

// FetchFareQuote asks the upstream for the cheapest fare on a market.
func (a *HTTPAdapter) FetchFareQuote(ctx context.Context, q FareQuery) (*FareQuote, error) {
	key := fmt.Sprintf("%s:%s:%s:%s:%s",
		q.Origin, q.Destination, q.Date.UTC().Format("2006-01-02"), q.Cabin, q.Currency)

	if cached, found := a.quoteCache.Get(key); found {
		quote := cached.(FareQuote)
		return &quote, nil
	}

	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("date", q.Date.UTC().Format("2006-01-02"))
	params.Set("cabin", q.Cabin)
	if q.Currency != "" {
		params.Set("currency", q.Currency)
	}

	var quote FareQuote
	if err := a.get(ctx, "/v1/fares/quote", params, &quote); err != nil {
		return nil, fmt.Errorf("fetch fare quote %s-%s: %w", q.Origin, q.Destination, err)
	}

	a.quoteCache.Set(key, quote, cache.DefaultExpiration)
	return &quote, nil
}

// get performs a single upstream GET and decodes the JSON body into out.
func (a *HTTPAdapter) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := a.cfg.BaseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if a.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", a.cfg.APIKey)
	}
	for key, value := range a.cfg.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.log.Warn("upstream returned non-200",
			"endpoint", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))
		return &UpstreamError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", endpoint, err)
	}
	return nil
}
