package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/pipeline"
	"listing-reel-backend/internal/queue"
	"listing-reel-backend/internal/store"
)

type VideosHandler struct {
	store store.Store
	queue queue.Enqueuer
	log   zerolog.Logger
}

func NewVideosHandler(s store.Store, q queue.Enqueuer, log zerolog.Logger) *VideosHandler {
	return &VideosHandler{
		store: s,
		queue: q,
		log:   log,
	}
}

// Generate godoc
// @Summary     Start video generation
// @Description Schedules the render pipeline for a queued project and returns once it is scheduled. Progress is observable through the project status and event stream.
// @Tags        videos
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GenerateVideoRequest true "Project, listing and render configuration"
// @Success     200 {object} models.GenerateVideoResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /videos/generate [post]
func (h *VideosHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}
	if req.ProjectID == "" || req.ListingData == nil || req.ProjectConfig == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Missing required parameters",
			Details: "projectId, listingData and projectConfig are required",
		})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}
	if req.ProjectConfig.Aspect != "" && !req.ProjectConfig.Aspect.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid aspect",
			Details: "aspect must be one of 9x16, 1x1, 16x9",
		})
		return
	}

	project, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	if project.Status != models.StatusQueued {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "project is not queued",
			Details: "current status: " + string(project.Status),
		})
		return
	}

	run := pipeline.RunRequest{
		ProjectID: projectID,
		Listing:   req.ListingData,
		Config:    req.ProjectConfig,
	}
	if err := h.queue.EnqueueRun(c.Request.Context(), run); err != nil {
		if errors.Is(err, pipeline.ErrMissingParameters) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Missing required parameters",
				Details: err.Error(),
			})
			return
		}
		h.log.Error().Err(err).Str("project_id", projectID.String()).Msg("failed to schedule video generation")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to start video generation",
			Details: err.Error(),
		})
		return
	}

	h.log.Info().
		Str("project_id", projectID.String()).
		Str("user_id", userID.String()).
		Int("images", len(req.ListingData.Images)).
		Msg("video generation scheduled")

	c.JSON(http.StatusOK, models.GenerateVideoResponse{
		Success: true,
		Message: "Video generation started",
	})
}
