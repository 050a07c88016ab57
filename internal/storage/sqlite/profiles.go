package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Profile is the per-user record referenced by memories.
type Profile struct {
	UserID      string
	DisplayName string
	LastSeenAt  time.Time
}

type Profiles struct {
	db *sql.DB
}

func NewProfiles(db *sql.DB) *Profiles {
	return &Profiles{db: db}
}

// Touch upserts the profile, refreshing display name and last-seen time.
func (p *Profiles) Touch(ctx context.Context, userID, displayName string) error {
	query := `INSERT INTO profiles (user_id, display_name, last_seen_at)
	          VALUES (?, ?, CURRENT_TIMESTAMP)
	          ON CONFLICT (user_id) DO UPDATE SET
	              display_name = excluded.display_name,
	              last_seen_at = CURRENT_TIMESTAMP`
	if _, err := p.db.ExecContext(ctx, query, userID, displayName); err != nil {
		return fmt.Errorf("failed to touch profile: %w", err)
	}
	return nil
}

// Get returns the profile for a user, or nil when unknown.
func (p *Profiles) Get(ctx context.Context, userID string) (*Profile, error) {
	var prof Profile
	err := p.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, last_seen_at FROM profiles WHERE user_id = ?`, userID).
		Scan(&prof.UserID, &prof.DisplayName, &prof.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &prof, nil
}
