package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrRenderInFlight = errors.New("render already in flight for project")
	ErrRenderTimeout  = errors.New("render timed out waiting for callback")
)

// CallbackRenderer submits jobs to an external engine and waits for the
// engine's webhook to report the outcome through Resolve.
type CallbackRenderer struct {
	engineURL   string
	callbackURL string
	apiKey      string
	timeout     time.Duration
	httpClient  *http.Client
	log         zerolog.Logger

	mu      sync.Mutex
	waiters map[uuid.UUID]chan error
}

type submitRequest struct {
	Request
	CallbackURL string `json:"callback_url"`
}

// NewCallbackRenderer posts to engineURL. A zero timeout waits for the
// callback until the run's context ends.
func NewCallbackRenderer(engineURL, callbackURL, apiKey string, timeout time.Duration, log zerolog.Logger) *CallbackRenderer {
	return &CallbackRenderer{
		engineURL:   engineURL,
		callbackURL: callbackURL,
		apiKey:      apiKey,
		timeout:     timeout,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:     log,
		waiters: make(map[uuid.UUID]chan error),
	}
}

func (r *CallbackRenderer) Render(ctx context.Context, req Request) error {
	done, err := r.register(req.ProjectID)
	if err != nil {
		return err
	}
	defer r.unregister(req.ProjectID, done)

	if err := r.submit(ctx, req); err != nil {
		return err
	}
	r.log.Info().Str("project_id", req.ProjectID.String()).Msg("render submitted, awaiting callback")

	var expired <-chan time.Time
	if r.timeout > 0 {
		t := time.NewTimer(r.timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case err := <-done:
		return err
	case <-expired:
		return ErrRenderTimeout
	case <-ctx.Done():
		return fmt.Errorf("render interrupted: %w", ctx.Err())
	}
}

// Resolve delivers the engine's verdict for projectID. It reports false when
// no render is waiting for that project.
func (r *CallbackRenderer) Resolve(projectID uuid.UUID, renderErr error) bool {
	r.mu.Lock()
	done, ok := r.waiters[projectID]
	if ok {
		delete(r.waiters, projectID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	done <- renderErr
	return true
}

func (r *CallbackRenderer) register(projectID uuid.UUID) (chan error, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.waiters[projectID]; exists {
		return nil, ErrRenderInFlight
	}
	done := make(chan error, 1)
	r.waiters[projectID] = done
	return done, nil
}

func (r *CallbackRenderer) unregister(projectID uuid.UUID, done chan error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.waiters[projectID] == done {
		delete(r.waiters, projectID)
	}
}

func (r *CallbackRenderer) submit(ctx context.Context, req Request) error {
	jsonData, err := json.Marshal(submitRequest{Request: req, CallbackURL: r.callbackURL})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.engineURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("failed to submit render: status %d, body: %s", resp.StatusCode, string(body))
	}
	return nil
}
