package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/store"
)

type StatusHandler struct {
	store store.Store
}

func NewStatusHandler(s store.Store) *StatusHandler {
	return &StatusHandler{store: s}
}

// GetStatus godoc
// @Summary     Get project status
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.StatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	project, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		ProjectID: projectID.String(),
		Status:    project.Status,
		UpdatedAt: project.UpdatedAt,
	})
}

// GetAssets godoc
// @Summary     List project assets
// @Description Assets in sort order, as extracted from the listing.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.AssetsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{project_id}/assets [get]
func (h *StatusHandler) GetAssets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	if _, err := h.store.GetProject(c.Request.Context(), projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	assets, err := h.store.ListAssets(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list assets",
			Details: err.Error(),
		})
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}

	c.JSON(http.StatusOK, models.AssetsResponse{Assets: assets})
}
