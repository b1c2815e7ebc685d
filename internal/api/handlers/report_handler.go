// backend-go/internal/api/handlers/report_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetSeasons returns the seasons with stored report data
func (h *ReportHandler) GetSeasons(c *gin.Context) {
	seasons, err := h.reportService.GetSeasons(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch seasons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch seasons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"seasons": seasons})
}

// GetLotSummaries returns the per-lot financial summaries for a season,
// optionally filtered by exporter
func (h *ReportHandler) GetLotSummaries(c *gin.Context) {
	season := c.Param("season")
	exporter := c.Query("exporter")

	summaries, err := h.reportService.GetLotSummaries(c.Request.Context(), season, exporter)
	if err != nil {
		log.Error().Err(err).Str("season", season).Msg("failed to fetch lot summaries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch lot summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"season":    season,
		"count":     len(summaries),
		"summaries": summaries,
	})
}

// GetLedger returns the virtual inventory ledger for a season, optionally
// filtered by exporter and lot
func (h *ReportHandler) GetLedger(c *gin.Context) {
	season := c.Param("season")
	exporter := c.Query("exporter")
	lotID := c.Query("lot")

	entries, err := h.reportService.GetLedger(c.Request.Context(), season, exporter, lotID)
	if err != nil {
		log.Error().Err(err).Str("season", season).Msg("failed to fetch ledger")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ledger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"season":  season,
		"count":   len(entries),
		"entries": entries,
	})
}

// GetCurrentInventory returns the last ledger state per lot for a season
func (h *ReportHandler) GetCurrentInventory(c *gin.Context) {
	season := c.Param("season")

	states, err := h.reportService.GetCurrentInventory(c.Request.Context(), season)
	if err != nil {
		log.Error().Err(err).Str("season", season).Msg("failed to fetch current inventory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch current inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"season":    season,
		"count":     len(states),
		"inventory": states,
	})
}

// GetDiscrepancies returns the reconciliation report for a season
func (h *ReportHandler) GetDiscrepancies(c *gin.Context) {
	season := c.Param("season")

	discrepancies, err := h.reportService.GetDiscrepancies(c.Request.Context(), season)
	if err != nil {
		log.Error().Err(err).Str("season", season).Msg("failed to fetch discrepancies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch discrepancies"})
		return
	}

	consistent := true
	for _, d := range discrepancies {
		if !d.Consistent {
			consistent = false
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"season":        season,
		"consistent":    consistent,
		"discrepancies": discrepancies,
	})
}
