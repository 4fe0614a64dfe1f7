package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest marks client-correctable problems with an itinerary request.
var ErrInvalidRequest = errors.New("invalid request")

// Entry is one planned stop, in visiting order.
type Entry struct {
	Location string `json:"location"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type ItineraryRequest struct {
	Entries []Entry `json:"entries"`
}

// MinPrice is a money amount split the way the flight API reports it.
// Nanos carries the fractional part and has the same sign as Units.
type MinPrice struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

type AirlineOption struct {
	Name        string   `json:"name"`
	LogoURL     string   `json:"logoUrl"`
	IATACode    string   `json:"iataCode"`
	FlightCount int      `json:"flightCount"`
	MinPrice    MinPrice `json:"minPrice"`
}

// FlightLeg is the flight search result for one consecutive pair of entries.
// On failure Airlines is empty and Error is set.
type FlightLeg struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	DepartDate string          `json:"departDate,omitempty"`
	Airlines   []AirlineOption `json:"airlines"`
	Error      string          `json:"error,omitempty"`
}

type ItineraryResponse struct {
	Success    bool        `json:"success"`
	Itinerary  []string    `json:"itinerary"`
	FlightData []FlightLeg `json:"flightData"`
	PlanID     string      `json:"planId,omitempty"`
}

const dateLayout = "2006-01-02"

// ParseTravelDate accepts a calendar date (2025-06-01) or an RFC 3339
// timestamp and returns the UTC calendar day at midnight.
func ParseTravelDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Validate checks the request before any outbound call is made.
func (r ItineraryRequest) Validate() error {
	if len(r.Entries) == 0 {
		return fmt.Errorf("%w: entries must be a non-empty array", ErrInvalidRequest)
	}
	for i, e := range r.Entries {
		if strings.TrimSpace(e.Location) == "" {
			return fmt.Errorf("%w: entry %d has no location", ErrInvalidRequest, i+1)
		}
		if _, err := ParseTravelDate(e.From); err != nil {
			return fmt.Errorf("%w: entry %d from: %v", ErrInvalidRequest, i+1, err)
		}
		if _, err := ParseTravelDate(e.To); err != nil {
			return fmt.Errorf("%w: entry %d to: %v", ErrInvalidRequest, i+1, err)
		}
	}
	return nil
}
