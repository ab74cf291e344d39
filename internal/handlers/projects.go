package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/store"
)

// ProjectFiles removes a project's objects from storage.
type ProjectFiles interface {
	DeleteProjectFiles(userID, projectID uuid.UUID) error
}

type ProjectsHandler struct {
	store store.Store
	files ProjectFiles
	log   zerolog.Logger
}

// NewProjectsHandler builds the handler. files may be nil when no storage is
// configured.
func NewProjectsHandler(s store.Store, files ProjectFiles, log zerolog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		store: s,
		files: files,
		log:   log,
	}
}

// CreateProject godoc
// @Summary     Create a project
// @Description Creates a queued project owned by the caller. Aspect defaults to 9x16.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateProjectRequest true "Project"
// @Success     200 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}
	if req.Aspect == "" {
		req.Aspect = models.AspectPortrait
	}
	if !req.Aspect.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid aspect",
			Details: "aspect must be one of 9x16, 1x1, 16x9",
		})
		return
	}

	project, err := h.store.CreateProject(c.Request.Context(), &models.Project{
		UserID:     userID,
		Title:      req.Title,
		Aspect:     req.Aspect,
		Theme:      req.Theme,
		ListingURL: req.ListingURL,
		Status:     models.StatusQueued,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create project",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NewProjectResponse(project))
}

// ListProjects godoc
// @Summary     List projects
// @Description Lists the caller's projects, newest first.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.store.ListProjects(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list projects",
			Details: err.Error(),
		})
		return
	}

	out := make([]models.ProjectResponse, len(projects))
	for i := range projects {
		out[i] = models.NewProjectResponse(&projects[i])
	}
	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: out})
}

// GetProject godoc
// @Summary     Get a project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
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

	c.JSON(http.StatusOK, models.NewProjectResponse(project))
}

// DeleteProject godoc
// @Summary     Delete a project
// @Description Deletes the project, its assets and its stored files.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{project_id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	// Verify project exists and belongs to user
	if _, err := h.store.GetProject(c.Request.Context(), projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	// Storage cleanup is best effort; the row is the source of truth.
	if h.files != nil {
		if err := h.files.DeleteProjectFiles(userID, projectID); err != nil {
			h.log.Warn().Err(err).Str("project_id", projectID.String()).Msg("failed to delete project files")
		}
	}

	if err := h.store.DeleteProject(c.Request.Context(), projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func respondProjectError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "failed to load project",
		Details: err.Error(),
	})
}
