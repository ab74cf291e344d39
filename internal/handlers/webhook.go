package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listing-reel-backend/internal/models"
)

const maxWebhookBody = 1 << 20

type WebhookLogger interface {
	InsertWebhookLog(ctx context.Context, log *models.WebhookLog) error
}

// RenderResolver completes a render that is waiting on a callback.
type RenderResolver interface {
	Resolve(projectID uuid.UUID, renderErr error) bool
}

type WebhookHandler struct {
	token    string
	logs     WebhookLogger
	resolver RenderResolver
	log      zerolog.Logger
}

// NewWebhookHandler builds the handler. An empty token disables the token
// check and render callbacks are then only logged. resolver may be nil when
// renders do not use callbacks.
func NewWebhookHandler(token string, logs WebhookLogger, resolver RenderResolver, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		token:    token,
		logs:     logs,
		resolver: resolver,
		log:      log,
	}
}

// HandleWebhook godoc
// @Summary     Provider webhook endpoint
// @Description Lands callbacks from stripe, runway and shotstack. Every accepted call is logged. Render providers posting {project_id, status} complete the waiting render.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       provider path string true "stripe, runway or shotstack"
// @Param       X-Webhook-Token header string false "Shared webhook token"
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /webhooks/{provider} [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	provider := models.WebhookProvider(c.Param("provider"))
	if !provider.Valid() {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "unknown webhook provider"})
		return
	}

	if h.token != "" && !h.tokenMatches(c) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid webhook token"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Details: err.Error(),
		})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "payload must be JSON"})
		return
	}

	status := "received"
	if provider.IsRenderBackend() {
		status = h.resolveRender(provider, body)
	}

	entry := &models.WebhookLog{
		Provider: provider,
		Payload:  json.RawMessage(body),
		Status:   status,
	}
	if err := h.logs.InsertWebhookLog(c.Request.Context(), entry); err != nil {
		h.log.Error().Err(err).Str("provider", string(provider)).Msg("failed to record webhook")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to record webhook",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *WebhookHandler) tokenMatches(c *gin.Context) bool {
	token := c.GetHeader("X-Webhook-Token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}
	if token == "" {
		token = c.Query("token")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}

// resolveRender returns the status recorded with the log entry.
func (h *WebhookHandler) resolveRender(provider models.WebhookProvider, body []byte) string {
	var cb models.RenderCallback
	if err := json.Unmarshal(body, &cb); err != nil || cb.ProjectID == uuid.Nil {
		return "received"
	}

	var renderErr error
	switch strings.ToLower(cb.Status) {
	case "done", "succeeded", "success", "completed":
	case "failed", "error", "cancelled":
		msg := cb.Error
		if msg == "" {
			msg = "render engine reported " + cb.Status
		}
		renderErr = errors.New(msg)
	default:
		// Progress updates are logged only.
		return "received"
	}

	log := h.log.With().Str("provider", string(provider)).Str("project_id", cb.ProjectID.String()).Logger()
	if h.token == "" {
		log.Warn().Msg("render callback ignored: no webhook token configured")
		return "unverified"
	}
	if h.resolver == nil || !h.resolver.Resolve(cb.ProjectID, renderErr) {
		log.Warn().Msg("render callback without a waiting render")
		return "unmatched"
	}
	log.Info().Bool("failed", renderErr != nil).Msg("render callback resolved")
	return "resolved"
}
