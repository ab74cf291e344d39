// Package pipeline drives a project from queued to a terminal status.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listing-reel-backend/internal/metrics"
	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/render"
)

var ErrMissingParameters = errors.New("missing required parameters")

// Store is the persistence the orchestrator needs.
type Store interface {
	TransitionProjectStatus(ctx context.Context, projectID uuid.UUID, from, to models.ProjectStatus) (*models.Project, error)
	InsertAssets(ctx context.Context, projectID uuid.UUID, assets []models.Asset) error
	FinishRender(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
}

type RunRequest struct {
	ProjectID uuid.UUID             `json:"projectId"`
	Listing   *models.ListingData   `json:"listingData"`
	Config    *models.ProjectConfig `json:"projectConfig"`
}

func (r RunRequest) Validate() error {
	switch {
	case r.ProjectID == uuid.Nil:
		return fmt.Errorf("%w: projectId", ErrMissingParameters)
	case r.Listing == nil:
		return fmt.Errorf("%w: listingData", ErrMissingParameters)
	case r.Config == nil:
		return fmt.Errorf("%w: projectConfig", ErrMissingParameters)
	}
	return nil
}

// Failure is a run that ended with the project in error.
type Failure struct {
	ProjectID uuid.UUID
	Stage     string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("pipeline failed for project %s at %s: %v", f.ProjectID, f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

type Orchestrator struct {
	store    Store
	renderer render.Renderer
	log      zerolog.Logger
}

func NewOrchestrator(store Store, renderer render.Renderer, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		renderer: renderer,
		log:      log,
	}
}

// Run executes one pipeline run. It returns ErrMissingParameters without
// touching storage, a status conflict if the project is not queued, and a
// *Failure once the project has been moved to error. Runs are never retried.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	started := time.Now()
	log := o.log.With().Str("project_id", req.ProjectID.String()).Logger()

	project, err := o.store.TransitionProjectStatus(ctx, req.ProjectID, models.StatusQueued, models.StatusRendering)
	if err != nil {
		log.Warn().Err(err).Msg("project could not start rendering")
		metrics.PipelineRuns.WithLabelValues("rejected").Inc()
		return fmt.Errorf("failed to start rendering: %w", err)
	}
	log = log.With().Str("user_id", project.UserID.String()).Logger()
	log.Info().Int("images", len(req.Listing.Images)).Msg("rendering started")

	if len(req.Listing.Images) > 0 {
		assets := models.ImageAssets(req.ProjectID, req.Listing.Images)
		if err := o.store.InsertAssets(ctx, req.ProjectID, assets); err != nil {
			return o.fail(ctx, log, req.ProjectID, "assets", err, started)
		}
		log.Debug().Int("assets", len(assets)).Msg("assets stored")
	}

	err = o.renderer.Render(ctx, render.Request{
		ProjectID: req.ProjectID,
		UserID:    project.UserID,
		Listing:   *req.Listing,
		Config:    *req.Config,
	})
	if err != nil {
		return o.fail(ctx, log, req.ProjectID, "render", err, started)
	}

	if _, err := o.store.FinishRender(ctx, req.ProjectID); err != nil {
		return o.fail(ctx, log, req.ProjectID, "complete", err, started)
	}

	metrics.PipelineRuns.WithLabelValues(string(models.StatusDone)).Inc()
	metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	log.Info().Dur("elapsed", time.Since(started)).Msg("rendering completed")
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, log zerolog.Logger, projectID uuid.UUID, stage string, cause error, started time.Time) error {
	log.Error().Err(cause).Str("stage", stage).Msg("pipeline failed")

	// The failure must be recorded even when the run was cancelled.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if _, err := o.store.TransitionProjectStatus(writeCtx, projectID, models.StatusRendering, models.StatusError); err != nil {
		log.Error().Err(err).Msg("failed to record pipeline failure")
	}

	metrics.PipelineRuns.WithLabelValues(string(models.StatusError)).Inc()
	metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	return &Failure{ProjectID: projectID, Stage: stage, Err: cause}
}
