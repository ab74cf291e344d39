package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-reel-backend/internal/handlers"
	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/store"
	"listing-reel-backend/internal/supabase"
)

type fakeObjects struct {
	data map[string][]byte
}

func (f *fakeObjects) DownloadFile(path string) ([]byte, error) {
	b, ok := f.data[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return b, nil
}

func (f *fakeObjects) GetPublicURL(path string) string {
	return "https://storage.test/" + path
}

func filesRouter(s store.Store, objects handlers.ObjectReader, userID uuid.UUID) *gin.Engine {
	router := gin.New()
	router.GET("/projects/:project_id/render", asUser(userID), handlers.NewFilesHandler(s, objects).GetRender)
	return router
}

func TestGetRender(t *testing.T) {
	s := store.NewMemoryStore(nil)
	userID := uuid.New()
	p := seedProject(t, s, userID)
	path := supabase.ObjectPath(userID, p.ID, "render.json")
	objects := &fakeObjects{data: map[string][]byte{path: []byte(`{"aspect":"9x16"}`)}}
	router := filesRouter(s, objects, userID)

	w := doJSON(t, router, http.MethodGet, "/projects/"+p.ID.String()+"/render", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	finishProject(t, s, p.ID)

	w = doJSON(t, router, http.MethodGet, "/projects/"+p.ID.String()+"/render", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.RenderResponse](t, w)
	assert.Equal(t, "https://storage.test/"+path, resp.ManifestURL)
	assert.JSONEq(t, `{"aspect":"9x16"}`, string(resp.Manifest))
}

func TestGetRender_NoStorage(t *testing.T) {
	s := store.NewMemoryStore(nil)
	userID := uuid.New()
	p := seedProject(t, s, userID)
	finishProject(t, s, p.ID)

	w := doJSON(t, filesRouter(s, nil, userID), http.MethodGet, "/projects/"+p.ID.String()+"/render", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, filesRouter(s, &fakeObjects{}, userID), http.MethodGet, "/projects/"+p.ID.String()+"/render", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
