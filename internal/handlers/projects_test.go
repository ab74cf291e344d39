package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reel-backend/internal/handlers"
	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/store"
)

type recordingFiles struct {
	deleted []uuid.UUID
	err     error
}

func (r *recordingFiles) DeleteProjectFiles(_, projectID uuid.UUID) error {
	r.deleted = append(r.deleted, projectID)
	return r.err
}

func projectsRouter(s store.Store, files handlers.ProjectFiles, userID uuid.UUID) *gin.Engine {
	h := handlers.NewProjectsHandler(s, files, zerolog.Nop())
	status := handlers.NewStatusHandler(s)

	router := gin.New()
	api := router.Group("/", asUser(userID))
	api.POST("/projects", h.CreateProject)
	api.GET("/projects", h.ListProjects)
	api.GET("/projects/:project_id", h.GetProject)
	api.DELETE("/projects/:project_id", h.DeleteProject)
	api.GET("/projects/:project_id/status", status.GetStatus)
	api.GET("/projects/:project_id/assets", status.GetAssets)
	return router
}

func TestCreateProject(t *testing.T) {
	s := store.NewMemoryStore(nil)
	userID := uuid.New()
	router := projectsRouter(s, nil, userID)

	w := doJSON(t, router, http.MethodPost, "/projects", models.CreateProjectRequest{Title: "Loft", Theme: "warm"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.ProjectResponse](t, w)
	assert.Equal(t, "Loft", resp.Title)
	assert.Equal(t, models.AspectPortrait, resp.Aspect)
	assert.Equal(t, models.StatusQueued, resp.Status)

	projectID := uuid.MustParse(resp.ID)
	stored, err := s.GetProject(context.Background(), projectID, userID)
	require.NoError(t, err)
	assert.Equal(t, "warm", stored.Theme)
}

func TestCreateProject_Validation(t *testing.T) {
	router := projectsRouter(store.NewMemoryStore(nil), nil, uuid.New())

	w := doJSON(t, router, http.MethodPost, "/projects", `{"aspect":"9x16"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/projects", models.CreateProjectRequest{Title: "x", Aspect: "4x3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid aspect", decode[models.ErrorResponse](t, w).Error)
}

func TestCreateProject_RejectsOversizedFields(t *testing.T) {
	s := store.NewMemoryStore(nil)
	userID := uuid.New()
	router := projectsRouter(s, nil, userID)

	cases := map[string]models.CreateProjectRequest{
		"title":       {Title: strings.Repeat("t", 201)},
		"theme":       {Title: "Loft", Theme: strings.Repeat("m", 101)},
		"listing_url": {Title: "Loft", ListingURL: "https://example.com/" + strings.Repeat("p", 2048)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/projects", req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid request body", decode[models.ErrorResponse](t, w).Error)
		})
	}

	projects, err := s.ListProjects(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, projects)

	w := doJSON(t, router, http.MethodPost, "/projects", models.CreateProjectRequest{Title: strings.Repeat("é", 200)})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestListProjects_OnlyCallersProjects(t *testing.T) {
	s := store.NewMemoryStore(nil)
	userID := uuid.New()
	mine := seedProject(t, s, userID)
	seedProject(t, s, uuid.New())

	w := doJSON(t, projectsRouter(s, nil, userID), http.MethodGet, "/projects", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ProjectListResponse](t, w)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, mine.ID.String(), resp.Projects[0].ID)
}

func TestGetProject_Ownership(t *testing.T) {
	s := store.NewMemoryStore(nil)
	owner := uuid.New()
	p := seedProject(t, s, owner)

	w := doJSON(t, projectsRouter(s, nil, owner), http.MethodGet, "/projects/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, projectsRouter(s, nil, uuid.New()), http.MethodGet, "/projects/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, projectsRouter(s, nil, owner), http.MethodGet, "/projects/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProject(t *testing.T) {
	s := store.NewMemoryStore(nil)
	userID := uuid.New()
	p := seedProject(t, s, userID)
	require.NoError(t, s.InsertAssets(context.Background(), p.ID, models.ImageAssets(p.ID, []string{"https://x/a.jpg"})))
	files := &recordingFiles{err: errors.New("storage offline")}

	w := doJSON(t, projectsRouter(s, files, userID), http.MethodDelete, "/projects/"+p.ID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{p.ID}, files.deleted)
	_, err := s.GetProject(context.Background(), p.ID, userID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assets, err := s.ListAssets(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestDeleteProject_NotOwner(t *testing.T) {
	s := store.NewMemoryStore(nil)
	p := seedProject(t, s, uuid.New())
	files := &recordingFiles{}

	w := doJSON(t, projectsRouter(s, files, uuid.New()), http.MethodDelete, "/projects/"+p.ID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, files.deleted)
}

func TestStatusAndAssets(t *testing.T) {
	s := store.NewMemoryStore(nil)
	userID := uuid.New()
	p := seedProject(t, s, userID)
	router := projectsRouter(s, nil, userID)

	w := doJSON(t, router, http.MethodGet, "/projects/"+p.ID.String()+"/assets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"assets":[]}`, w.Body.String())

	urls := []string{"https://x/1.jpg", "https://x/2.jpg"}
	require.NoError(t, s.InsertAssets(context.Background(), p.ID, models.ImageAssets(p.ID, urls)))
	finishProject(t, s, p.ID)

	w = doJSON(t, router, http.MethodGet, "/projects/"+p.ID.String()+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusDone, decode[models.StatusResponse](t, w).Status)

	w = doJSON(t, router, http.MethodGet, "/projects/"+p.ID.String()+"/assets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assets := decode[models.AssetsResponse](t, w).Assets
	require.Len(t, assets, 2)
	assert.Equal(t, urls[0], assets[0].URL)
	assert.Equal(t, 1, assets[1].SortOrder)
}
