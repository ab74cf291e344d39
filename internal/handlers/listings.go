package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"listing-reel-backend/internal/extractor"
	"listing-reel-backend/internal/metrics"
	"listing-reel-backend/internal/models"
)

type ListingExtractor interface {
	Extract(ctx context.Context, rawURL string) (*models.ListingData, error)
}

type ListingsHandler struct {
	extractor ListingExtractor
	log       zerolog.Logger
}

func NewListingsHandler(ex ListingExtractor, log zerolog.Logger) *ListingsHandler {
	return &ListingsHandler{extractor: ex, log: log}
}

// Analyze godoc
// @Summary     Analyze a listing page
// @Description Fetches a public listing URL and extracts title, description, images, price and address. Missing fields fall back to fixed defaults.
// @Tags        listings
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.AnalyzeListingRequest true "Listing URL"
// @Success     200 {object} models.ListingData
// @Failure     400 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /listings/analyze [post]
func (h *ListingsHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeListingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		metrics.Extractions.WithLabelValues("invalid_url").Inc()
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "URL is required",
			Details: "request body must be {\"url\": \"https://...\"}",
		})
		return
	}

	listing, err := h.extractor.Extract(c.Request.Context(), req.URL)
	if err != nil {
		var fetchErr *extractor.FetchError
		switch {
		case errors.Is(err, extractor.ErrInvalidURL):
			metrics.Extractions.WithLabelValues("invalid_url").Inc()
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid URL",
				Details: err.Error(),
			})
		case errors.As(err, &fetchErr):
			metrics.Extractions.WithLabelValues("fetch_failed").Inc()
			h.log.Warn().Err(err).Int("status", fetchErr.Status).Str("url", req.URL).Msg("listing fetch failed")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to analyze listing",
				Details: err.Error(),
			})
		default:
			metrics.Extractions.WithLabelValues("error").Inc()
			h.log.Error().Err(err).Str("url", req.URL).Msg("listing extraction failed")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to analyze listing",
				Details: err.Error(),
			})
		}
		return
	}

	metrics.Extractions.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, listing)
}
