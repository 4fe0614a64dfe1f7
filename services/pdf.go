package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PlanDocument is everything printed on a plan PDF.
type PlanDocument struct {
	PlanID      string
	Entries     []Entry
	Itinerary   []string
	FlightData  []FlightLeg
	GeneratedAt time.Time
}

var markdownMarkers = strings.NewReplacer("*", "", "_", "", "`", "")

// RenderPlanPDF lays out a plan on A4 pages and returns the PDF bytes.
func RenderPlanPDF(doc PlanDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)

	// ── Footer ────────────────────────────────────────────────
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Not a booking confirmation - prices subject to change - page %d", pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "Trip Planner", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Day-by-day itinerary and flight options", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}

	paragraph := func(text string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(170, 5, tr(text), "", "L", false)
	}

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	if doc.PlanID != "" {
		row("Plan", doc.PlanID)
	}
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	row("Generated", generated.Format("02 Jan 2006, 15:04 UTC"))
	for i, e := range doc.Entries {
		row(fmt.Sprintf("Stop %d", i+1), fmt.Sprintf("%s, %s to %s", e.Location, fmtDateReadable(e.From), fmtDateReadable(e.To)))
	}
	pdf.Ln(4)

	// ── Itinerary ─────────────────────────────────────────────
	sectionHeader("Itinerary")
	for _, day := range doc.Itinerary {
		paragraph(markdownMarkers.Replace(day))
		pdf.Ln(3)
	}
	pdf.Ln(2)

	// ── Flights ───────────────────────────────────────────────
	if len(doc.FlightData) > 0 {
		sectionHeader("Non-stop Flights")
		for _, leg := range doc.FlightData {
			title := fmt.Sprintf("%s -> %s", leg.From, leg.To)
			if leg.DepartDate != "" {
				title += " on " + fmtDateReadable(leg.DepartDate)
			}
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(13, 24, 37)
			pdf.CellFormat(170, 7, tr(title), "", 1, "L", false, 0, "")

			switch {
			case leg.Error != "":
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetTextColor(160, 40, 40)
				pdf.MultiCell(170, 5, tr("Unavailable: "+leg.Error), "", "L", false)
			case len(leg.Airlines) == 0:
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetTextColor(100, 100, 100)
				pdf.CellFormat(170, 6, "No non-stop flights found", "", 1, "L", false, 0, "")
			default:
				for _, a := range leg.Airlines {
					row(fmt.Sprintf("%s (%s)", a.Name, a.IATACode),
						fmt.Sprintf("from %s, %d flight(s)", FormatMinPrice(a.MinPrice), a.FlightCount))
				}
			}
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatMinPrice renders a price such as "INR 3899.50".
func FormatMinPrice(p MinPrice) string {
	units, nanos := p.Units, int64(p.Nanos)
	sign := ""
	if units < 0 || nanos < 0 {
		sign = "-"
		if units < 0 {
			units = -units
		}
		if nanos < 0 {
			nanos = -nanos
		}
	}
	amount := fmt.Sprintf("%s%d.%02d", sign, units, nanos/10_000_000)
	if p.CurrencyCode == "" {
		return amount
	}
	return p.CurrencyCode + " " + amount
}

func fmtDateReadable(s string) string {
	t, err := ParseTravelDate(s)
	if err != nil {
		return s
	}
	return t.Format("02 Jan 2006 (Mon)")
}
