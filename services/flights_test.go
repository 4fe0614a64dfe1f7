package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"
	"tripplanner/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sampleSearchResponse = `{
  "status": true,
  "message": "Success",
  "data": {
    "aggregation": {
      "airlines": [
        {"name": "IndiGo", "logoUrl": "https://img/6E.png", "iataCode": "6E", "count": 7,
         "minPrice": {"currencyCode": "INR", "units": 3899, "nanos": 500000000}},
        {"name": "Air India", "logoUrl": "https://img/AI.png", "iataCode": "AI", "count": 2,
         "minPrice": {"currencyCode": "INR", "units": 5120, "nanos": 0}}
      ]
    }
  }
}`

// fakeFlightAPI records query strings and serves a fixed body.
type fakeFlightAPI struct {
	mu      sync.Mutex
	queries []url.Values
	headers []http.Header
	status  int
	body    string
}

func (f *fakeFlightAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query())
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	if r.URL.Path != "/api/v1/flights/searchFlights" {
		http.NotFound(w, r)
		return
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(f.body))
}

func (f *fakeFlightAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newTestFlightClient(t *testing.T, api http.Handler) *FlightClient {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	return NewFlightClient(config.FlightConfig{
		RapidAPIKey:   "rapid-key",
		Host:          "booking-com15.p.rapidapi.com",
		BaseURL:       srv.URL,
		Currency:      "INR",
		Timeout:       2 * time.Second,
		RatePerSecond: 1000,
		RateBurst:     10,
	}, srv.Client(), zaptest.NewLogger(t))
}

func day(s string) time.Time {
	d, err := ParseTravelDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSearchLegSuccess(t *testing.T) {
	api := &fakeFlightAPI{body: sampleSearchResponse}
	client := newTestFlightClient(t, api)

	leg := client.SearchLeg(context.Background(), "Mumbai", "goa", day("2025-06-03"))

	assert.Empty(t, leg.Error)
	assert.Equal(t, "Mumbai", leg.From)
	assert.Equal(t, "goa", leg.To)
	assert.Equal(t, "2025-06-03", leg.DepartDate)
	require.Len(t, leg.Airlines, 2)
	assert.Equal(t, AirlineOption{
		Name:        "IndiGo",
		LogoURL:     "https://img/6E.png",
		IATACode:    "6E",
		FlightCount: 7,
		MinPrice:    MinPrice{CurrencyCode: "INR", Units: 3899, Nanos: 500000000},
	}, leg.Airlines[0])
	assert.Equal(t, "AI", leg.Airlines[1].IATACode)

	require.Equal(t, 1, api.calls())
	q := api.queries[0]
	assert.Equal(t, "BOM.AIRPORT", q.Get("fromId"))
	assert.Equal(t, "GOI.AIRPORT", q.Get("toId"))
	assert.Equal(t, "2025-06-03", q.Get("departDate"))
	assert.Equal(t, "none", q.Get("stops"))
	assert.Equal(t, "1", q.Get("pageNo"))
	assert.Equal(t, "1", q.Get("adults"))
	assert.Equal(t, "BEST", q.Get("sort"))
	assert.Equal(t, "ECONOMY", q.Get("cabinClass"))
	assert.Equal(t, "INR", q.Get("currency_code"))

	h := api.headers[0]
	assert.Equal(t, "rapid-key", h.Get("x-rapidapi-key"))
	assert.Equal(t, "booking-com15.p.rapidapi.com", h.Get("x-rapidapi-host"))
}

func TestSearchLegUnknownCitySkipsAPI(t *testing.T) {
	api := &fakeFlightAPI{body: sampleSearchResponse}
	client := newTestFlightClient(t, api)

	for _, pair := range [][2]string{{"Paris", "Goa"}, {"Goa", "Paris"}, {"Paris", "Rome"}} {
		leg := client.SearchLeg(context.Background(), pair[0], pair[1], day("2025-06-03"))
		assert.Equal(t, missingAirportError, leg.Error)
		assert.NotNil(t, leg.Airlines)
		assert.Empty(t, leg.Airlines)
	}
	assert.Equal(t, 0, api.calls())
}

func TestSearchLegUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, "status 500"},
		{"rate limited", http.StatusTooManyRequests, `slow down`, "status 429"},
		{"bad json", http.StatusOK, `{"data":`, "failed to parse"},
		{"no aggregation", http.StatusOK, `{"status":false,"message":"Invalid date","data":{}}`, "Invalid date"},
		{"no airlines", http.StatusOK, `{"status":true,"data":{"aggregation":{}}}`, ErrMissingAggregation.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestFlightClient(t, &fakeFlightAPI{status: tt.status, body: tt.body})

			leg := client.SearchLeg(context.Background(), "Delhi", "Pune", day("2025-07-01"))
			assert.Contains(t, leg.Error, tt.wantErr)
			assert.NotNil(t, leg.Airlines)
			assert.Empty(t, leg.Airlines)
		})
	}
}

// truncatedBody promises more bytes than it sends, so the client sees an
// unexpected EOF while reading a 200 response.
func truncatedBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)+100))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func TestSearchLegTruncatedBody(t *testing.T) {
	client := newTestFlightClient(t, truncatedBody(`{"data":{"aggregation":`))

	leg := client.SearchLeg(context.Background(), "Delhi", "Pune", day("2025-07-01"))
	assert.Contains(t, leg.Error, "read response")
	assert.NotContains(t, leg.Error, "failed to parse")
	assert.Empty(t, leg.Airlines)
}

func TestSearchLegEmptyAggregationIsSuccess(t *testing.T) {
	client := newTestFlightClient(t, &fakeFlightAPI{body: `{"data":{"aggregation":{"airlines":[]}}}`})

	leg := client.SearchLeg(context.Background(), "Delhi", "Pune", day("2025-07-01"))
	assert.Empty(t, leg.Error)
	assert.Empty(t, leg.Airlines)
}

func TestSearchLegTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	client := newTestFlightClient(t, slow)
	client.timeout = 50 * time.Millisecond

	leg := client.SearchLeg(context.Background(), "Delhi", "Pune", day("2025-07-01"))
	assert.NotEmpty(t, leg.Error)
	assert.Empty(t, leg.Airlines)
}

type memoryLegCache struct {
	data    map[string][]AirlineOption
	getErr  error
	setKeys []string
}

func (m *memoryLegCache) GetAirlines(_ context.Context, key string) ([]AirlineOption, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	a, ok := m.data[key]
	return a, ok, nil
}

func (m *memoryLegCache) SetAirlines(_ context.Context, key string, airlines []AirlineOption) error {
	if m.data == nil {
		m.data = map[string][]AirlineOption{}
	}
	m.data[key] = airlines
	m.setKeys = append(m.setKeys, key)
	return nil
}

func TestSearchLegUsesCache(t *testing.T) {
	api := &fakeFlightAPI{body: sampleSearchResponse}
	cache := &memoryLegCache{}
	client := newTestFlightClient(t, api).WithCache(cache)

	first := client.SearchLeg(context.Background(), "Mumbai", "Goa", day("2025-06-03"))
	second := client.SearchLeg(context.Background(), "mumbai", "GOA", day("2025-06-03"))

	assert.Equal(t, 1, api.calls())
	assert.Equal(t, []string{"flights:BOM:GOI:2025-06-03:INR"}, cache.setKeys)
	assert.Equal(t, first.Airlines, second.Airlines)
	assert.Equal(t, "mumbai", second.From)
}

func TestSearchLegDoesNotCacheFailures(t *testing.T) {
	cache := &memoryLegCache{}
	client := newTestFlightClient(t, &fakeFlightAPI{status: http.StatusBadGateway}).WithCache(cache)

	leg := client.SearchLeg(context.Background(), "Mumbai", "Goa", day("2025-06-03"))
	assert.NotEmpty(t, leg.Error)
	assert.Empty(t, cache.setKeys)
}

func TestSearchLegCacheErrorFallsThrough(t *testing.T) {
	api := &fakeFlightAPI{body: sampleSearchResponse}
	cache := &memoryLegCache{getErr: errors.New("redis down")}
	client := newTestFlightClient(t, api).WithCache(cache)

	leg := client.SearchLeg(context.Background(), "Mumbai", "Goa", day("2025-06-03"))
	assert.Empty(t, leg.Error)
	assert.Len(t, leg.Airlines, 2)
	assert.Equal(t, 1, api.calls())
}
