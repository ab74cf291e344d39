package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/render"
	"listing-reel-backend/internal/store"
	"listing-reel-backend/internal/supabase"
)

type ObjectReader interface {
	DownloadFile(storagePath string) ([]byte, error)
	GetPublicURL(storagePath string) string
}

type FilesHandler struct {
	store   store.Store
	objects ObjectReader
}

// NewFilesHandler builds the handler. objects may be nil when no storage is
// configured, in which case no render output is ever available.
func NewFilesHandler(s store.Store, objects ObjectReader) *FilesHandler {
	return &FilesHandler{
		store:   s,
		objects: objects,
	}
}

// GetRender godoc
// @Summary     Get render output
// @Description Returns the render manifest of a finished project together with its public storage URL
// @Tags        files
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.RenderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{project_id}/render [get]
func (h *FilesHandler) GetRender(c *gin.Context) {
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
	if project.Status != models.StatusDone {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "render not finished",
			Details: "current status: " + string(project.Status),
		})
		return
	}
	if h.objects == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "render output not stored"})
		return
	}

	path := supabase.ObjectPath(userID, projectID, render.ManifestFilename)
	data, err := h.objects.DownloadFile(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get render output",
			Details: err.Error(),
		})
		return
	}
	if !json.Valid(data) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "stored render manifest is not valid JSON"})
		return
	}

	c.JSON(http.StatusOK, models.RenderResponse{
		ProjectID:   projectID.String(),
		ManifestURL: h.objects.GetPublicURL(path),
		Manifest:    json.RawMessage(data),
	})
}
