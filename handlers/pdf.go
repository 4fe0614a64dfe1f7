package handlers

import (
	"net/http"
	"time"
	"tripplanner/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PDFRequest is a plan as returned by POST /api/itinerary, plus the stops
// it was made for.
type PDFRequest struct {
	PlanID     string               `json:"planId"`
	Entries    []services.Entry     `json:"entries"`
	Itinerary  []string             `json:"itinerary"`
	FlightData []services.FlightLeg `json:"flightData"`
}

type PDFHandler struct {
	log *zap.Logger
}

func NewPDFHandler(log *zap.Logger) *PDFHandler {
	return &PDFHandler{log: log}
}

// Render handles POST /api/itinerary/pdf.
func (h *PDFHandler) Render(c *gin.Context) {
	var req PDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Itinerary) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing itinerary"})
		return
	}

	writePDF(c, logFor(c, h.log), services.PlanDocument{
		PlanID:      req.PlanID,
		Entries:     req.Entries,
		Itinerary:   req.Itinerary,
		FlightData:  req.FlightData,
		GeneratedAt: time.Now().UTC(),
	})
}

func writePDF(c *gin.Context, log *zap.Logger, doc services.PlanDocument) {
	pdfBytes, err := services.RenderPlanPDF(doc)
	if err != nil {
		log.Error("PDF generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	log.Info("PDF generated", zap.String("plan_id", doc.PlanID), zap.Int("bytes", len(pdfBytes)))

	c.Header("Content-Disposition", "attachment; filename=trip-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
