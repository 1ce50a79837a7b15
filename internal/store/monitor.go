package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/displayworks/displayctl/internal/topology"
)

// MonitorRecord is a persisted monitor within a profile. DisplayIndex
// is the record's position in left-to-right display order.
type MonitorRecord struct {
	ID           string               `json:"id"`
	ProfileID    string               `json:"profile_id"`
	DisplayID    uint32               `json:"display_id"`
	Name         string               `json:"name"`
	Resolution   string               `json:"resolution"`
	Orientation  topology.Orientation `json:"orientation"`
	IsPrimary    bool                 `json:"is_primary"`
	ScaleFactor  float64              `json:"scale_factor"`
	X            int                  `json:"x"`
	Y            int                  `json:"y"`
	Width        int                  `json:"width"`
	Height       int                  `json:"height"`
	DisplayIndex int                  `json:"display_index"`
	CreatedAt    int64                `json:"created_at"`
	UpdatedAt    int64                `json:"updated_at"`
}

// InsertMonitor inserts a monitor record, assigning a fresh id when
// none is set.
func (s *Store) InsertMonitor(ctx context.Context, m *MonitorRecord) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	if m.CreatedAt == 0 {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO monitors
			(id, profile_id, display_id, name, resolution, orientation, is_primary,
			 scale_factor, x, y, width, height, display_index, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.ProfileID, m.DisplayID, m.Name, m.Resolution, string(m.Orientation),
		boolInt(m.IsPrimary), m.ScaleFactor, m.X, m.Y, m.Width, m.Height,
		m.DisplayIndex, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert monitor: %w", err)
	}
	return s.touchProfile(ctx, m.ProfileID)
}

// GetMonitor retrieves a monitor record by ID. Returns nil when absent.
func (s *Store) GetMonitor(ctx context.Context, id string) (*MonitorRecord, error) {
	m := &MonitorRecord{}
	var orientation string
	var isPrimary int

	err := s.DB.QueryRowContext(ctx, `
		SELECT id, profile_id, display_id, name, resolution, orientation, is_primary,
		       scale_factor, x, y, width, height, display_index, created_at, updated_at
		FROM monitors WHERE id = ?`, id).Scan(
		&m.ID, &m.ProfileID, &m.DisplayID, &m.Name, &m.Resolution, &orientation, &isPrimary,
		&m.ScaleFactor, &m.X, &m.Y, &m.Width, &m.Height, &m.DisplayIndex, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Orientation = topology.Orientation(orientation)
	m.IsPrimary = isPrimary != 0
	return m, nil
}

// ListMonitors returns a profile's monitor records in display order.
func (s *Store) ListMonitors(ctx context.Context, profileID string) ([]*MonitorRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, profile_id, display_id, name, resolution, orientation, is_primary,
		       scale_factor, x, y, width, height, display_index, created_at, updated_at
		FROM monitors WHERE profile_id = ? ORDER BY display_index ASC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*MonitorRecord
	for rows.Next() {
		m := &MonitorRecord{}
		var orientation string
		var isPrimary int
		if err := rows.Scan(
			&m.ID, &m.ProfileID, &m.DisplayID, &m.Name, &m.Resolution, &orientation, &isPrimary,
			&m.ScaleFactor, &m.X, &m.Y, &m.Width, &m.Height, &m.DisplayIndex, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.Orientation = topology.Orientation(orientation)
		m.IsPrimary = isPrimary != 0
		records = append(records, m)
	}
	return records, rows.Err()
}

// UpdateMonitor rewrites a monitor record's mutable fields.
func (s *Store) UpdateMonitor(ctx context.Context, m *MonitorRecord) error {
	m.UpdatedAt = time.Now().UnixMilli()
	res, err := s.DB.ExecContext(ctx, `
		UPDATE monitors SET
			display_id = ?, name = ?, resolution = ?, orientation = ?, is_primary = ?,
			scale_factor = ?, x = ?, y = ?, width = ?, height = ?, display_index = ?,
			updated_at = ?
		WHERE id = ?`,
		m.DisplayID, m.Name, m.Resolution, string(m.Orientation), boolInt(m.IsPrimary),
		m.ScaleFactor, m.X, m.Y, m.Width, m.Height, m.DisplayIndex, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update monitor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("monitor %s not found", m.ID)
	}
	return s.touchProfile(ctx, m.ProfileID)
}

// DeleteMonitor removes a monitor record.
func (s *Store) DeleteMonitor(ctx context.Context, id string) error {
	m, err := s.GetMonitor(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("monitor %s not found", id)
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM monitors WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete monitor: %w", err)
	}
	return s.touchProfile(ctx, m.ProfileID)
}
