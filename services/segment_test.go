package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentItinerary(t *testing.T) {
	text := `Here is your family trip!

**Day 1 (June 1, 2025):** Arrive in Mumbai, Gateway of India, dinner at Colaba.
**Transportation:** Taxi from the airport, about 45 minutes.

**Day 2 (June 2, 2025):** Elephanta Caves, Marine Drive at sunset.
**Day 3 (June 3, 2025):** Fly to Goa, evening at Baga beach.
Enjoy!
`
	got := SegmentItinerary(text)
	require.Len(t, got, 3)

	assert.Equal(t, "**Day 1 (June 1, 2025):** Arrive in Mumbai, Gateway of India, dinner at Colaba.\n"+
		"**Transportation:** Taxi from the airport, about 45 minutes.", got[0])
	assert.Equal(t, "**Day 2 (June 2, 2025):** Elephanta Caves, Marine Drive at sunset.", got[1])
	assert.Equal(t, "**Day 3 (June 3, 2025):** Fly to Goa, evening at Baga beach.\nEnjoy!", got[2])
}

func TestSegmentItineraryCountsHeadings(t *testing.T) {
	for n := 1; n <= 7; n++ {
		var b strings.Builder
		for d := 1; d <= n; d++ {
			b.WriteString("  **Day ")
			b.WriteString(strings.Repeat("1", d))
			b.WriteString(" (some day):** walk\n  more walking  \n")
		}

		got := SegmentItinerary(b.String())
		require.Len(t, got, n)
		for _, seg := range got {
			assert.True(t, strings.HasPrefix(seg, "**Day "), seg)
			assert.Equal(t, strings.TrimSpace(seg), seg)
		}
	}
}

func TestSegmentItineraryWithoutHeadings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"placeholder", noItineraryText, noItineraryText},
		{"prose", "\n  Day one: beach. Day two: fort.  \n", "Day one: beach. Day two: fort."},
		{"heading missing date", "**Day 1:** beach", "**Day 1:** beach"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, SegmentItinerary(tt.input))
		})
	}
}

func TestSegmentItineraryIgnoresMidLineHeadings(t *testing.T) {
	text := "**Day 1 (Mon):** see notes **Day 2 (Tue):** inline\n**Day 2 (Tue):** beach"
	got := SegmentItinerary(text)
	require.Len(t, got, 2)
	assert.Equal(t, "**Day 2 (Tue):** beach", got[1])
}

func TestSegmentItineraryIsDeterministic(t *testing.T) {
	text := "**Day 1 (A):** x\n**Day 2 (B):** y"
	assert.Equal(t, SegmentItinerary(text), SegmentItinerary(text))
}
