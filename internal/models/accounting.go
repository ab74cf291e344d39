package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Trial struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	FreeClipsRemaining int       `json:"free_clips_remaining"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type UsageEventType string

const (
	UsageTrialClip UsageEventType = "trial_clip"
	UsagePaidClip  UsageEventType = "paid_clip"
	UsageRender    UsageEventType = "render"
)

type UsageEvent struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	ProjectID *uuid.UUID     `json:"project_id,omitempty"`
	Type      UsageEventType `json:"type"`
	Count     int            `json:"count"`
	CreatedAt time.Time      `json:"created_at"`
}

type WebhookProvider string

const (
	ProviderStripe    WebhookProvider = "stripe"
	ProviderRunway    WebhookProvider = "runway"
	ProviderShotstack WebhookProvider = "shotstack"
)

func (p WebhookProvider) Valid() bool {
	switch p {
	case ProviderStripe, ProviderRunway, ProviderShotstack:
		return true
	}
	return false
}

// IsRenderBackend reports whether callbacks from p can carry render outcomes.
func (p WebhookProvider) IsRenderBackend() bool {
	return p == ProviderRunway || p == ProviderShotstack
}

type WebhookLog struct {
	ID        uuid.UUID       `json:"id"`
	Provider  WebhookProvider `json:"provider"`
	Payload   json.RawMessage `json:"payload"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
