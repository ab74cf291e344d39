package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"listing-reel-backend/internal/models"
	"listing-reel-backend/internal/store"
)

const projectColumns = `id, user_id, title, aspect, theme, listing_url, status, created_at, updated_at`

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var listingURL sql.NullString
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Aspect, &p.Theme,
		&listingURL, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ListingURL = listingURL.String
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (d *DatabaseClient) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	status := p.Status
	if status == "" {
		status = models.StatusQueued
	}

	created, err := scanProject(d.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, user_id, title, aspect, theme, listing_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+projectColumns,
		id, p.UserID, p.Title, p.Aspect, p.Theme, nullString(p.ListingURL), status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	p, err := scanProject(d.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (d *DatabaseClient) DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DatabaseClient) TransitionProjectStatus(ctx context.Context, projectID uuid.UUID, from, to models.ProjectStatus) (*models.Project, error) {
	if err := store.CheckTransition(from, to); err != nil {
		return nil, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := transition(ctx, tx, projectID, from, to)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}
	return p, nil
}

// transition runs the conditional update and, when it matches nothing,
// tells a missing row apart from one in another status.
func transition(ctx context.Context, tx *sql.Tx, projectID uuid.UUID, from, to models.ProjectStatus) (*models.Project, error) {
	p, err := scanProject(tx.QueryRowContext(ctx, `
		UPDATE projects
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+projectColumns,
		projectID, from, to,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}

	var current models.ProjectStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM projects WHERE id = $1`, projectID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project status: %w", err)
	}
	return nil, fmt.Errorf("%w: project %s is %s, want %s", store.ErrStatusConflict, projectID, current, from)
}

func (d *DatabaseClient) InsertAssets(ctx context.Context, projectID uuid.UUID, assets []models.Asset) error {
	if len(assets) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("assets",
		"project_id", "url", "type", "sort_order", "width", "height", "meta"))
	if err != nil {
		return fmt.Errorf("failed to prepare asset copy: %w", err)
	}

	for _, a := range assets {
		var meta any
		if len(a.Meta) > 0 {
			meta = string(a.Meta)
		}
		if _, err := stmt.ExecContext(ctx, projectID, a.URL, a.Type, a.SortOrder, a.Width, a.Height, meta); err != nil {
			stmt.Close()
			return assetError(err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return assetError(err)
	}
	if err := stmt.Close(); err != nil {
		return assetError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assets: %w", err)
	}
	return nil
}

func assetError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", store.ErrDuplicateAsset, pqErr.Detail)
		case "23503":
			return store.ErrNotFound
		}
	}
	return fmt.Errorf("failed to insert assets: %w", err)
}

func (d *DatabaseClient) ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, project_id, url, type, sort_order, width, height, meta, created_at
		FROM assets
		WHERE project_id = $1
		ORDER BY sort_order ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		var width, height sql.NullInt64
		var meta []byte
		err := rows.Scan(
			&a.ID, &a.ProjectID, &a.URL, &a.Type, &a.SortOrder,
			&width, &height, &meta, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		if width.Valid {
			w := int(width.Int64)
			a.Width = &w
		}
		if height.Valid {
			h := int(height.Int64)
			a.Height = &h
		}
		if len(meta) > 0 {
			a.Meta = json.RawMessage(meta)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return assets, nil
}

func (d *DatabaseClient) FinishRender(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := transition(ctx, tx, projectID, models.StatusRendering, models.StatusDone)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO usage_events (user_id, project_id, type, count)
		VALUES ($1, $2, $3, 1)
	`, p.UserID, p.ID, models.UsageRender); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	// Conditional in SQL so concurrent completions can never go below zero.
	if _, err := tx.ExecContext(ctx, `
		UPDATE trials
		SET free_clips_remaining = free_clips_remaining - 1, updated_at = NOW()
		WHERE user_id = $1 AND free_clips_remaining > 0
	`, p.UserID); err != nil {
		return nil, fmt.Errorf("failed to decrement trial: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit render completion: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) GetTrial(ctx context.Context, userID uuid.UUID) (*models.Trial, error) {
	var t models.Trial
	err := d.db.QueryRowContext(ctx, `
		SELECT id, user_id, free_clips_remaining, created_at, updated_at
		FROM trials
		WHERE user_id = $1
	`, userID).Scan(&t.ID, &t.UserID, &t.FreeClipsRemaining, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trial: %w", err)
	}
	return &t, nil
}

func (d *DatabaseClient) ListUsageEvents(ctx context.Context, userID uuid.UUID) ([]models.UsageEvent, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, user_id, project_id, type, count, created_at
		FROM usage_events
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}
	defer rows.Close()

	var events []models.UsageEvent
	for rows.Next() {
		var e models.UsageEvent
		var projectID uuid.NullUUID
		if err := rows.Scan(&e.ID, &e.UserID, &projectID, &e.Type, &e.Count, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}
		if projectID.Valid {
			id := projectID.UUID
			e.ProjectID = &id
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}

	return events, nil
}

func (d *DatabaseClient) InsertWebhookLog(ctx context.Context, log *models.WebhookLog) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO webhook_logs (provider, payload, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, log.Provider, string(log.Payload), log.Status).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert webhook log: %w", err)
	}
	return nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

var _ store.Store = (*DatabaseClient)(nil)
