package realtime

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"listing-reel-backend/internal/models"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// ChangeEvent is one committed write to the projects table. For deletes
// Project holds the removed row; Old is set only for updates.
type ChangeEvent struct {
	Op          Op              `json:"op"`
	Project     models.Project  `json:"record"`
	Old         *models.Project `json:"old_record,omitempty"`
	CommittedAt time.Time       `json:"committed_at"`
}

// Filter selects project rows. Zero fields match anything.
type Filter struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
}

func (f Filter) Matches(p models.Project) bool {
	if f.ProjectID != uuid.Nil && p.ID != f.ProjectID {
		return false
	}
	if f.UserID != uuid.Nil && p.UserID != f.UserID {
		return false
	}
	return true
}

// ProjectChannel and UserChannel name the streams clients subscribe to.
func ProjectChannel(projectID uuid.UUID) string {
	return fmt.Sprintf("project:%s", projectID.String())
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID.String())
}
