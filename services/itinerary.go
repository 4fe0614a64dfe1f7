package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"tripplanner/metrics"

	"go.uber.org/zap"
)

// noItineraryText stands in for the itinerary when generation fails.
const noItineraryText = "No response generated."

// ErrEmptyGeneration is returned by a TextGenerator that produced no text.
var ErrEmptyGeneration = errors.New("empty response from text generation")

// TextGenerator completes a single free-text prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ItineraryClient turns a list of stops into free-form itinerary text.
type ItineraryClient struct {
	gen     TextGenerator
	timeout time.Duration
	log     *zap.Logger
}

func NewItineraryClient(gen TextGenerator, timeout time.Duration, log *zap.Logger) *ItineraryClient {
	return &ItineraryClient{gen: gen, timeout: timeout, log: log}
}

// Generate makes one generation call. It never fails: on any error it
// logs and returns a placeholder so the caller can carry on.
func (c *ItineraryClient) Generate(ctx context.Context, entries []Entry) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.gen.GenerateText(ctx, BuildItineraryPrompt(entries))
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyGeneration
	}
	metrics.ObserveUpstream(metrics.BackendGeneration, start, err)

	if err != nil {
		c.log.Warn("itinerary generation failed, using placeholder",
			zap.Error(err),
			zap.Int("entries", len(entries)),
			zap.Duration("took", time.Since(start)),
		)
		return noItineraryText
	}

	c.log.Debug("itinerary generated",
		zap.Int("chars", len(text)),
		zap.Duration("took", time.Since(start)),
	)
	return text
}

// BuildItineraryPrompt embeds every stop and the expected day heading format.
func BuildItineraryPrompt(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("Location %d: %s (%s to %s)", i+1, e.Location, e.From, e.To))
	}

	return fmt.Sprintf(`
Generate a family-friendly travel itinerary based on the following locations and dates:

%s

Include:
- Suggested transportation between locations if there are multiple destinations (e.g., train, flight, rental car)
- Activities
- Sightseeing
- Local cuisine
- Recommended accommodations

Format the itinerary like this:
**Day 1 (June 1, 2025):** Activity 1, Activity 2, etc.
**Transportation:** If applicable, describe the travel method and time between locations.
**Day 2 (June 2, 2025):** Activity 1, Activity 2, etc.

Make sure the itinerary includes travel time between cities if there are multiple stops.

Keep the tone friendly and informative.
`, strings.Join(lines, "\n"))
}
