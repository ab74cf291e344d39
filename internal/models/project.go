package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	StatusIdle      ProjectStatus = "idle"
	StatusQueued    ProjectStatus = "queued"
	StatusRendering ProjectStatus = "rendering"
	StatusDone      ProjectStatus = "done"
	StatusError     ProjectStatus = "error"
)

// CanTransition reports whether the pipeline may move a project from s to next.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	switch s {
	case StatusQueued:
		return next == StatusRendering
	case StatusRendering:
		return next == StatusDone || next == StatusError
	default:
		return false
	}
}

type Aspect string

const (
	AspectPortrait  Aspect = "9x16"
	AspectSquare    Aspect = "1x1"
	AspectLandscape Aspect = "16x9"
)

func (a Aspect) Valid() bool {
	switch a {
	case AspectPortrait, AspectSquare, AspectLandscape:
		return true
	}
	return false
}

type Project struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"user_id"`
	Title      string        `json:"title"`
	Aspect     Aspect        `json:"aspect"`
	Theme      string        `json:"theme"`
	ListingURL string        `json:"listing_url,omitempty"`
	Status     ProjectStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ProjectConfig is the user's choice of presentation for one render.
type ProjectConfig struct {
	Title  string `json:"title"`
	Aspect Aspect `json:"aspect"`
	Theme  string `json:"theme"`
}

type UserStats struct {
	TotalProjects      int `json:"total_projects"`
	VideosGenerated    int `json:"videos_generated"`
	FreeClipsRemaining int `json:"free_clips_remaining"`
	ProjectsThisWeek   int `json:"projects_this_week"`
}
