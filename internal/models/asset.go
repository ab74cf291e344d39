package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AssetType string

const (
	AssetImage AssetType = "image"
	AssetClip  AssetType = "clip"
	AssetVideo AssetType = "video"
)

type Asset struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	URL       string          `json:"url"`
	Type      AssetType       `json:"type"`
	SortOrder int             `json:"sort_order"`
	Width     *int            `json:"width,omitempty"`
	Height    *int            `json:"height,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ImageAssets builds one image asset per URL, numbered in the order given.
func ImageAssets(projectID uuid.UUID, urls []string) []Asset {
	assets := make([]Asset, len(urls))
	for i, u := range urls {
		assets[i] = Asset{
			ProjectID: projectID,
			URL:       u,
			Type:      AssetImage,
			SortOrder: i,
		}
	}
	return assets
}
