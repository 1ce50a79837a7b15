package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is a named saved arrangement.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ValidateProfileName checks a profile name before it reaches the
// database: non-empty after trimming and at most 64 characters.
func ValidateProfileName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("profile name is empty")
	}
	if len(trimmed) > 64 {
		return fmt.Errorf("profile name exceeds 64 characters")
	}
	return nil
}

// CreateProfile inserts a new named profile and returns it.
func (s *Store) CreateProfile(ctx context.Context, name string) (*Profile, error) {
	if err := ValidateProfileName(name); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	p := &Profile{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, name, created_at, updated_at)
		VALUES (?,?,?,?)`,
		p.ID, p.Name, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create profile %q: %w", p.Name, err)
	}
	return p, nil
}

// GetProfile retrieves a profile by ID. Returns nil when absent.
func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	p := &Profile{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM profiles WHERE id = ?`, id).Scan(
		&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfileByName retrieves a profile by its unique name. Returns nil
// when absent.
func (s *Store) GetProfileByName(ctx context.Context, name string) (*Profile, error) {
	p := &Profile{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM profiles WHERE name = ?`,
		strings.TrimSpace(name)).Scan(
		&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProfiles returns all profiles ordered by creation time.
func (s *Store) ListProfiles(ctx context.Context) ([]*Profile, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes a profile and, via cascade, its monitors.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}

// touchProfile bumps a profile's updated_at after monitor changes.
func (s *Store) touchProfile(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE profiles SET updated_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), id)
	return err
}
