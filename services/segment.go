package services

import (
	"regexp"
	"strings"
)

// dayHeading matches lines such as "**Day 3 (June 3, 2025):** ...".
var dayHeading = regexp.MustCompile(`(?m)^[ \t]*\*\*Day \d+ \([^)\n]+\):`)

// SegmentItinerary splits generated itinerary text into one block per day.
// Each block runs from its heading line up to the next heading. Text without
// any heading comes back as a single block.
func SegmentItinerary(text string) []string {
	locs := dayHeading.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	segments := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, strings.TrimSpace(text[loc[0]:end]))
	}
	return segments
}
