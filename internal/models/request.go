package models

import "github.com/google/uuid"

type AnalyzeListingRequest struct {
	URL string `json:"url" example:"https://example.com/demo-listing"`
}

type CreateProjectRequest struct {
	Title      string `json:"title" binding:"required,max=200" example:"Downtown Condo Reel"`
	Aspect     Aspect `json:"aspect" example:"9x16"`
	Theme      string `json:"theme" binding:"max=100" example:"clean"`
	ListingURL string `json:"listing_url,omitempty" binding:"omitempty,max=2048" example:"https://example.com/demo-listing"`
}

// GenerateVideoRequest uses the camelCase keys the web client already sends.
type GenerateVideoRequest struct {
	ProjectID     string         `json:"projectId"`
	ListingData   *ListingData   `json:"listingData"`
	ProjectConfig *ProjectConfig `json:"projectConfig"`
}

// RenderCallback is the body a render backend posts when a job finishes.
type RenderCallback struct {
	ProjectID uuid.UUID `json:"project_id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
