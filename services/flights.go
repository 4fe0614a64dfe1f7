package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"tripplanner/config"
	"tripplanner/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const missingAirportError = "Missing IATA code for origin or destination"

// ErrMissingAggregation means the flight API answered without an airline summary.
var ErrMissingAggregation = errors.New("missing aggregation.airlines in flight search response")

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Code, e.Body)
}

// LegCache stores airline summaries of successful lookups.
type LegCache interface {
	GetAirlines(ctx context.Context, key string) ([]AirlineOption, bool, error)
	SetAirlines(ctx context.Context, key string, airlines []AirlineOption) error
}

// FlightClient looks up non-stop economy flights on the Booking.com API
// published through RapidAPI.
type FlightClient struct {
	apiKey     string
	host       string
	baseURL    string
	currency   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      LegCache
	log        *zap.Logger
}

func NewFlightClient(cfg config.FlightConfig, httpClient *http.Client, log *zap.Logger) *FlightClient {
	return &FlightClient{
		apiKey:     cfg.RapidAPIKey,
		host:       cfg.Host,
		baseURL:    cfg.BaseURL,
		currency:   cfg.Currency,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		log:        log,
	}
}

// WithCache enables caching of successful lookups.
func (c *FlightClient) WithCache(cache LegCache) *FlightClient {
	c.cache = cache
	return c
}

// SearchLeg returns the airline options for one leg. Failures are reported
// in the leg's Error field and never returned.
func (c *FlightClient) SearchLeg(ctx context.Context, from, to string, date time.Time) FlightLeg {
	leg := FlightLeg{
		From:       from,
		To:         to,
		DepartDate: date.Format(dateLayout),
		Airlines:   []AirlineOption{},
	}

	fromCode, okFrom := AirportCode(from)
	toCode, okTo := AirportCode(to)
	if !okFrom || !okTo {
		leg.Error = missingAirportError
		return leg
	}

	log := c.log.With(
		zap.String("from", fromCode),
		zap.String("to", toCode),
		zap.String("date", leg.DepartDate),
	)

	key := c.cacheKey(fromCode, toCode, leg.DepartDate)
	if c.cache != nil {
		airlines, ok, err := c.cache.GetAirlines(ctx, key)
		if err != nil {
			log.Warn("flight cache read failed", zap.Error(err))
		} else if ok {
			metrics.UpstreamRequests.WithLabelValues(metrics.BackendFlights, metrics.OutcomeCache).Inc()
			leg.Airlines = airlines
			return leg
		}
	}

	airlines, err := c.searchAirlines(ctx, fromCode, toCode, leg.DepartDate)
	if err != nil {
		log.Warn("flight search failed", zap.Error(err))
		leg.Error = err.Error()
		return leg
	}
	leg.Airlines = airlines

	if c.cache != nil {
		if err := c.cache.SetAirlines(ctx, key, airlines); err != nil {
			log.Warn("flight cache write failed", zap.Error(err))
		}
	}
	return leg
}

func (c *FlightClient) cacheKey(fromCode, toCode, date string) string {
	return fmt.Sprintf("flights:%s:%s:%s:%s", fromCode, toCode, date, c.currency)
}

func (c *FlightClient) searchAirlines(ctx context.Context, fromCode, toCode, date string) (airlines []AirlineOption, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("flight rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.ObserveUpstream(metrics.BackendFlights, start, err) }()

	params := url.Values{}
	params.Set("fromId", fromCode+".AIRPORT")
	params.Set("toId", toCode+".AIRPORT")
	params.Set("departDate", date)
	params.Set("stops", "none")
	params.Set("pageNo", "1")
	params.Set("adults", "1")
	params.Set("children", "0,17")
	params.Set("sort", "BEST")
	params.Set("cabinClass", "ECONOMY")
	params.Set("currency_code", c.currency)

	body, err := c.doRequest(ctx, "/api/v1/flights/searchFlights?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	return parseAirlineAggregation(body)
}

func (c *FlightClient) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return respBody, nil
}

type bookingSearchResponse struct {
	Message any `json:"message"`
	Data    *struct {
		Aggregation *struct {
			Airlines []bookingAirline `json:"airlines"`
		} `json:"aggregation"`
	} `json:"data"`
}

type bookingAirline struct {
	Name     string `json:"name"`
	LogoURL  string `json:"logoUrl"`
	IATACode string `json:"iataCode"`
	Count    int    `json:"count"`
	MinPrice *struct {
		CurrencyCode string `json:"currencyCode"`
		Units        int64  `json:"units"`
		Nanos        int32  `json:"nanos"`
	} `json:"minPrice"`
}

func parseAirlineAggregation(data []byte) ([]AirlineOption, error) {
	var resp bookingSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight search response: %w", err)
	}

	if resp.Data == nil || resp.Data.Aggregation == nil || resp.Data.Aggregation.Airlines == nil {
		if msg, ok := resp.Message.(string); ok && msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAggregation, msg)
		}
		return nil, ErrMissingAggregation
	}

	airlines := make([]AirlineOption, 0, len(resp.Data.Aggregation.Airlines))
	for _, a := range resp.Data.Aggregation.Airlines {
		opt := AirlineOption{
			Name:        a.Name,
			LogoURL:     a.LogoURL,
			IATACode:    a.IATACode,
			FlightCount: a.Count,
		}
		if a.MinPrice != nil {
			opt.MinPrice = MinPrice{
				CurrencyCode: a.MinPrice.CurrencyCode,
				Units:        a.MinPrice.Units,
				Nanos:        a.MinPrice.Nanos,
			}
		}
		airlines = append(airlines, opt)
	}
	return airlines, nil
}
