package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/realtime"
)

// MemoryStore keeps everything in process. Each write commits under one lock
// and is published to the bus before the lock is released, so subscribers
// see rows in commit order.
type MemoryStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]models.Project
	assets   map[uuid.UUID][]models.Asset
	trials   map[uuid.UUID]models.Trial
	usage    []models.UsageEvent
	webhooks []models.WebhookLog

	pub realtime.Publisher
	now func() time.Time
}

// NewMemoryStore returns an empty store. pub may be nil.
func NewMemoryStore(pub realtime.Publisher) *MemoryStore {
	return &MemoryStore{
		projects: make(map[uuid.UUID]models.Project),
		assets:   make(map[uuid.UUID][]models.Asset),
		trials:   make(map[uuid.UUID]models.Trial),
		pub:      pub,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) publish(op realtime.Op, p models.Project, old *models.Project) {
	if m.pub == nil {
		return
	}
	m.pub.Publish(realtime.ChangeEvent{
		Op:          op,
		Project:     p,
		Old:         old,
		CommittedAt: m.now(),
	})
}

func (m *MemoryStore) CreateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *p
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	if _, exists := m.projects[created.ID]; exists {
		return nil, fmt.Errorf("failed to create project: id %s already exists", created.ID)
	}
	if created.Status == "" {
		created.Status = models.StatusQueued
	}
	now := m.now()
	created.CreatedAt = now
	created.UpdatedAt = now

	m.projects[created.ID] = created
	m.publish(realtime.OpInsert, created, nil)
	return &created, nil
}

func (m *MemoryStore) GetProject(_ context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListProjects(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteProject(_ context.Context, projectID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(m.projects, projectID)
	delete(m.assets, projectID)
	m.publish(realtime.OpDelete, p, nil)
	return nil
}

func (m *MemoryStore) TransitionProjectStatus(_ context.Context, projectID uuid.UUID, from, to models.ProjectStatus) (*models.Project, error) {
	if err := CheckTransition(from, to); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.transitionLocked(projectID, from, to)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MemoryStore) transitionLocked(projectID uuid.UUID, from, to models.ProjectStatus) (models.Project, error) {
	old, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}
	if old.Status != from {
		return models.Project{}, fmt.Errorf("%w: project %s is %s, want %s", ErrStatusConflict, projectID, old.Status, from)
	}

	updated := old
	updated.Status = to
	updated.UpdatedAt = m.now()
	m.projects[projectID] = updated
	m.publish(realtime.OpUpdate, updated, &old)
	return updated, nil
}

func (m *MemoryStore) InsertAssets(_ context.Context, projectID uuid.UUID, assets []models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[projectID]; !ok {
		return ErrNotFound
	}

	taken := make(map[int]struct{}, len(m.assets[projectID])+len(assets))
	for _, a := range m.assets[projectID] {
		taken[a.SortOrder] = struct{}{}
	}

	now := m.now()
	batch := make([]models.Asset, len(assets))
	for i, a := range assets {
		if _, dup := taken[a.SortOrder]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateAsset, a.SortOrder)
		}
		taken[a.SortOrder] = struct{}{}

		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.ProjectID = projectID
		a.CreatedAt = now
		batch[i] = a
	}

	m.assets[projectID] = append(m.assets[projectID], batch...)
	return nil
}

func (m *MemoryStore) ListAssets(_ context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]models.Asset(nil), m.assets[projectID]...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (m *MemoryStore) FinishRender(_ context.Context, projectID uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.transitionLocked(projectID, models.StatusRendering, models.StatusDone)
	if err != nil {
		return nil, err
	}

	pid := p.ID
	m.usage = append(m.usage, models.UsageEvent{
		ID:        uuid.New(),
		UserID:    p.UserID,
		ProjectID: &pid,
		Type:      models.UsageRender,
		Count:     1,
		CreatedAt: p.UpdatedAt,
	})

	if t, ok := m.trials[p.UserID]; ok && t.FreeClipsRemaining > 0 {
		t.FreeClipsRemaining--
		t.UpdatedAt = p.UpdatedAt
		m.trials[p.UserID] = t
	}
	return &p, nil
}

func (m *MemoryStore) GetTrial(_ context.Context, userID uuid.UUID) (*models.Trial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trials[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

// PutTrial creates or replaces the user's trial. Signup owns this in
// production.
func (m *MemoryStore) PutTrial(userID uuid.UUID, freeClips int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	t, ok := m.trials[userID]
	if !ok {
		t = models.Trial{ID: uuid.New(), UserID: userID, CreatedAt: now}
	}
	t.FreeClipsRemaining = freeClips
	t.UpdatedAt = now
	m.trials[userID] = t
}

func (m *MemoryStore) ListUsageEvents(_ context.Context, userID uuid.UUID) ([]models.UsageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.UsageEvent
	for _, e := range m.usage {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertWebhookLog(_ context.Context, log *models.WebhookLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := *log
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = m.now()
	m.webhooks = append(m.webhooks, entry)
	*log = entry
	return nil
}

// WebhookLogs returns every logged webhook in insertion order.
func (m *MemoryStore) WebhookLogs() []models.WebhookLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.WebhookLog(nil), m.webhooks...)
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
