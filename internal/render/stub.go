package render

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultDelay     = 10 * time.Second
	ManifestFilename = "render.json"
)

// ObjectStore is the slice of object storage the stub renderer writes to.
type ObjectStore interface {
	UploadFile(userID, projectID uuid.UUID, filename, contentType string, data []byte) (string, string, error)
}

// StubRenderer stands in for a real engine: it waits a fixed delay and then
// optionally stores the render manifest.
type StubRenderer struct {
	delay   time.Duration
	objects ObjectStore
	log     zerolog.Logger
}

// NewStubRenderer returns a renderer that sleeps for delay. objects may be nil.
func NewStubRenderer(delay time.Duration, objects ObjectStore, log zerolog.Logger) *StubRenderer {
	if delay < 0 {
		delay = 0
	}
	return &StubRenderer{delay: delay, objects: objects, log: log}
}

func (r *StubRenderer) Render(ctx context.Context, req Request) error {
	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("render interrupted: %w", ctx.Err())
	case <-timer.C:
	}

	if r.objects == nil {
		return nil
	}

	body, err := json.MarshalIndent(NewManifest(req, time.Now().UTC()), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	path, _, err := r.objects.UploadFile(req.UserID, req.ProjectID, ManifestFilename, "application/json", body)
	if err != nil {
		return fmt.Errorf("failed to store manifest: %w", err)
	}

	r.log.Debug().Str("project_id", req.ProjectID.String()).Str("path", path).Msg("render manifest stored")
	return nil
}
