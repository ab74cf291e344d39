package models

import (
	"encoding/json"
	"time"
)

type ProjectResponse struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Aspect     Aspect        `json:"aspect"`
	Theme      string        `json:"theme"`
	ListingURL string        `json:"listing_url,omitempty"`
	Status     ProjectStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func NewProjectResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:         p.ID.String(),
		Title:      p.Title,
		Aspect:     p.Aspect,
		Theme:      p.Theme,
		ListingURL: p.ListingURL,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type StatusResponse struct {
	ProjectID string        `json:"project_id"`
	Status    ProjectStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type AssetsResponse struct {
	Assets []Asset `json:"assets"`
}

type GenerateVideoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

type RenderResponse struct {
	ProjectID   string          `json:"project_id"`
	ManifestURL string          `json:"manifest_url"`
	Manifest    json.RawMessage `json:"manifest"`
}
