// Package render turns a listing and its presentation choices into a video.
package render

import (
	"context"
	"time"

	"github.com/google/uuid"

	"listing-reel-backend/internal/models"
)

type Request struct {
	ProjectID uuid.UUID            `json:"projectId"`
	UserID    uuid.UUID            `json:"userId"`
	Listing   models.ListingData   `json:"listingData"`
	Config    models.ProjectConfig `json:"projectConfig"`
}

// Renderer produces the video for one project. A nil error means the render
// finished; anything else is a failed render.
type Renderer interface {
	Render(ctx context.Context, req Request) error
}

// Manifest is the render plan written next to a project's outputs.
type Manifest struct {
	ProjectID  uuid.UUID     `json:"project_id"`
	Title      string        `json:"title"`
	Aspect     models.Aspect `json:"aspect"`
	Theme      string        `json:"theme"`
	Price      string        `json:"price"`
	Address    string        `json:"address"`
	Images     []string      `json:"images"`
	RenderedAt time.Time     `json:"rendered_at"`
}

func NewManifest(req Request, at time.Time) Manifest {
	title := req.Config.Title
	if title == "" {
		title = req.Listing.Title
	}
	return Manifest{
		ProjectID:  req.ProjectID,
		Title:      title,
		Aspect:     req.Config.Aspect,
		Theme:      req.Config.Theme,
		Price:      req.Listing.Price,
		Address:    req.Listing.Address,
		Images:     append([]string(nil), req.Listing.Images...),
		RenderedAt: at,
	}
}
