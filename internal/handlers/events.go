package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/realtime"
	"listing-reel-backend/internal/store"
)

const defaultKeepAlive = 25 * time.Second

type Subscriber interface {
	Subscribe(key string, filter realtime.Filter) (*realtime.Subscription, error)
	Unsubscribe(key string)
}

// EventsHandler streams project changes as Server-Sent Events.
type EventsHandler struct {
	store     store.Store
	bus       Subscriber
	keepAlive time.Duration
	log       zerolog.Logger
}

func NewEventsHandler(s store.Store, bus Subscriber, keepAlive time.Duration, log zerolog.Logger) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &EventsHandler{
		store:     s,
		bus:       bus,
		keepAlive: keepAlive,
		log:       log,
	}
}

// ProjectEvents godoc
// @Summary     Stream one project's changes
// @Description Server-Sent Events. The first event is a "snapshot" of the project; each later "change" event carries one committed insert, update or delete. Pass the token as access_token when the client cannot set headers.
// @Tags        events
// @Produce     text/event-stream
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       access_token query string false "JWT for EventSource clients"
// @Success     200 {object} realtime.ChangeEvent
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/events [get]
func (h *EventsHandler) ProjectEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	// Both fields are set so a row can never leak to another owner.
	h.stream(c, realtime.Filter{ProjectID: projectID, UserID: userID})
}

// UserEvents godoc
// @Summary     Stream all of the caller's project changes
// @Tags        events
// @Produce     text/event-stream
// @Security    Bearer
// @Param       access_token query string false "JWT for EventSource clients"
// @Success     200 {object} realtime.ChangeEvent
// @Failure     401 {object} models.ErrorResponse
// @Router      /events [get]
func (h *EventsHandler) UserEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	h.stream(c, realtime.Filter{UserID: userID})
}

func (h *EventsHandler) stream(c *gin.Context, filter realtime.Filter) {
	// One subscription per connection; released when the client goes away.
	key := "sse:" + uuid.NewString()
	sub, err := h.bus.Subscribe(key, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to subscribe",
			Details: err.Error(),
		})
		return
	}
	defer h.bus.Unsubscribe(key)

	log := h.log.With().Str("subscription", key).Logger()
	log.Debug().Msg("event stream opened")
	defer log.Debug().Msg("event stream closed")

	// The snapshot is read after subscribing, so no change between the two is
	// lost. A change may appear in both.
	var snapshot *models.Project
	if filter.ProjectID != uuid.Nil {
		snapshot, err = h.store.GetProject(c.Request.Context(), filter.ProjectID, filter.UserID)
		if err != nil {
			respondProjectError(c, err)
			return
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if snapshot != nil {
		c.SSEvent("snapshot", models.NewProjectResponse(snapshot))
	} else {
		c.SSEvent("ready", gin.H{"user_id": filter.UserID.String()})
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	done := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case ev, open := <-sub.Events():
			if !open {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}
