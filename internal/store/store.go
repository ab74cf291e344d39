// Package store defines persistence for projects, assets and accounting.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"listing-reel-backend/internal/models"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict means the row was not in the expected status when a
	// conditional transition ran.
	ErrStatusConflict    = errors.New("project status conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateAsset    = errors.New("duplicate asset sort order")
)

type Store interface {
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	// GetProject returns the project only if userID owns it.
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error

	// TransitionProjectStatus moves the project from one status to another
	// only if it is currently in from.
	TransitionProjectStatus(ctx context.Context, projectID uuid.UUID, from, to models.ProjectStatus) (*models.Project, error)

	// InsertAssets writes the whole batch or nothing.
	InsertAssets(ctx context.Context, projectID uuid.UUID, assets []models.Asset) error
	ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error)

	// FinishRender atomically marks a rendering project done, records one
	// render usage event and takes one clip from the owner's trial if any
	// remain.
	FinishRender(ctx context.Context, projectID uuid.UUID) (*models.Project, error)

	GetTrial(ctx context.Context, userID uuid.UUID) (*models.Trial, error)
	ListUsageEvents(ctx context.Context, userID uuid.UUID) ([]models.UsageEvent, error)
	InsertWebhookLog(ctx context.Context, log *models.WebhookLog) error

	Ping(ctx context.Context) error
}

// CheckTransition validates a pipeline transition before it reaches storage.
func CheckTransition(from, to models.ProjectStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
