package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ItineraryWriter produces itinerary text for a list of stops. It does not
// fail; a placeholder text stands in for a failed generation.
type ItineraryWriter interface {
	Generate(ctx context.Context, entries []Entry) string
}

// LegFinder looks up flights for one leg. Failures are reported on the leg.
type LegFinder interface {
	SearchLeg(ctx context.Context, from, to string, date time.Time) FlightLeg
}

// PlanArchive keeps a copy of finished plans.
type PlanArchive interface {
	SavePlan(ctx context.Context, req ItineraryRequest, resp *ItineraryResponse) (string, error)
}

// Planner combines one itinerary generation with a flight search per leg.
type Planner struct {
	writer  ItineraryWriter
	flights LegFinder
	archive PlanArchive
	log     *zap.Logger
}

func NewPlanner(writer ItineraryWriter, flights LegFinder, log *zap.Logger) *Planner {
	return &Planner{writer: writer, flights: flights, log: log}
}

// WithArchive stores every finished plan in a.
func (p *Planner) WithArchive(a PlanArchive) *Planner {
	p.archive = a
	return p
}

// Plan runs the whole request. The request must already be validated.
// Legs are searched one at a time in entry order, departing on the date
// the traveller leaves the origin stop.
func (p *Planner) Plan(ctx context.Context, req ItineraryRequest) (*ItineraryResponse, error) {
	text := p.writer.Generate(ctx, req.Entries)
	itinerary := SegmentItinerary(text)

	legs := make([]FlightLeg, 0, max(len(req.Entries)-1, 0))
	for i := 0; i+1 < len(req.Entries); i++ {
		origin, dest := req.Entries[i], req.Entries[i+1]
		date, err := ParseTravelDate(origin.To)
		if err != nil {
			return nil, fmt.Errorf("leg %d departure date: %w", i+1, err)
		}
		legs = append(legs, p.flights.SearchLeg(ctx, origin.Location, dest.Location, date))
	}

	resp := &ItineraryResponse{
		Success:    true,
		Itinerary:  itinerary,
		FlightData: legs,
	}

	failed := 0
	for _, leg := range legs {
		if leg.Error != "" {
			failed++
		}
	}
	p.log.Info("plan ready",
		zap.Int("entries", len(req.Entries)),
		zap.Int("days", len(itinerary)),
		zap.Int("legs", len(legs)),
		zap.Int("failed_legs", failed),
	)

	if p.archive != nil {
		id, err := p.archive.SavePlan(ctx, req, resp)
		if err != nil {
			p.log.Warn("plan archive failed", zap.Error(err))
		} else {
			resp.PlanID = id
		}
	}

	return resp, nil
}
