package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"listing-reel-backend/internal/config"
	"listing-reel-backend/internal/models"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

type webhookLogRow struct {
	Provider models.WebhookProvider `json:"provider"`
	Payload  json.RawMessage        `json:"payload"`
	Status   string                 `json:"status"`
}

// InsertWebhookLog lands a webhook through PostgREST, so deployments without
// a direct database connection still keep the log.
func (c *Client) InsertWebhookLog(_ context.Context, log *models.WebhookLog) error {
	row := webhookLogRow{
		Provider: log.Provider,
		Payload:  log.Payload,
		Status:   log.Status,
	}

	body, _, err := c.Supabase.From("webhook_logs").Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to insert webhook log: %w", err)
	}

	var inserted []models.WebhookLog
	if err := json.Unmarshal(body, &inserted); err == nil && len(inserted) == 1 {
		log.ID = inserted[0].ID
		log.CreatedAt = inserted[0].CreatedAt
	}
	return nil
}
