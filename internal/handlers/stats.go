package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/store"
)

const statsWindow = 7 * 24 * time.Hour

type StatsHandler struct {
	store store.Store
	now   func() time.Time
}

func NewStatsHandler(s store.Store) *StatsHandler {
	return &StatsHandler{store: s, now: time.Now}
}

// GetStats godoc
// @Summary     Dashboard stats
// @Description Project totals, finished videos, remaining free clips and projects created in the last 7 days.
// @Tags        stats
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.UserStats
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		projects []models.Project
		trial    *models.Trial
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		projects, err = h.store.ListProjects(ctx, userID)
		return err
	})
	g.Go(func() error {
		t, err := h.store.GetTrial(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		trial = t
		return err
	})
	if err := g.Wait(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load stats",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, computeStats(projects, trial, h.now()))
}

func computeStats(projects []models.Project, trial *models.Trial, now time.Time) models.UserStats {
	stats := models.UserStats{TotalProjects: len(projects)}
	weekAgo := now.Add(-statsWindow)
	for _, p := range projects {
		if p.Status == models.StatusDone {
			stats.VideosGenerated++
		}
		if p.CreatedAt.After(weekAgo) {
			stats.ProjectsThisWeek++
		}
	}
	if trial != nil {
		stats.FreeClipsRemaining = trial.FreeClipsRemaining
	}
	return stats
}
