package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"listing-reel-backend/internal/middleware"
	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for AuthMiddleware.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.String())
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func seedProject(t *testing.T, s *store.MemoryStore, userID uuid.UUID) *models.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), &models.Project{
		UserID: userID,
		Title:  "Downtown Condo",
		Aspect: models.AspectPortrait,
		Status: models.StatusQueued,
	})
	require.NoError(t, err)
	return p
}

func finishProject(t *testing.T, s *store.MemoryStore, projectID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	_, err := s.TransitionProjectStatus(ctx, projectID, models.StatusQueued, models.StatusRendering)
	require.NoError(t, err)
	_, err = s.FinishRender(ctx, projectID)
	require.NoError(t, err)
}
