package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lunabot/luna/pkg/log"
)

// Memory is one remembered exchange with a user. Reply and Mood are empty for
// records stored before the bot answered.
type Memory struct {
	ID        int64
	UserID    string
	Username  string
	Content   string
	Reply     string
	Mood      string
	CreatedAt time.Time
}

type Memories struct {
	db *sql.DB
}

func NewMemories(db *sql.DB) *Memories {
	return &Memories{db: db}
}

// Add stores one memory record and returns its id.
func (m *Memories) Add(ctx context.Context, mem Memory) (int64, error) {
	query := `INSERT INTO memories (user_id, username, content, reply, mood) VALUES (?, ?, ?, ?, ?)`
	res, err := m.db.ExecContext(ctx, query, mem.UserID, mem.Username, mem.Content, nullable(mem.Reply), nullable(mem.Mood))
	if err != nil {
		return 0, fmt.Errorf("failed to insert memory: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetReply fills in the generated reply for an already-stored memory.
func (m *Memories) SetReply(ctx context.Context, id int64, reply string) error {
	_, err := m.db.ExecContext(ctx, `UPDATE memories SET reply = ? WHERE id = ?`, reply, id)
	if err != nil {
		return fmt.Errorf("failed to set reply: %w", err)
	}
	return nil
}

// RecentByUser returns at most limit records for a user, oldest to newest.
func (m *Memories) RecentByUser(ctx context.Context, userID string, limit int) ([]Memory, error) {
	// Fetch the LAST limit rows by ordering DESC, then reverse.
	query := `SELECT id, user_id, username, content, reply, mood, created_at
	          FROM memories WHERE user_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := m.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		var mem Memory
		var reply, mood sql.NullString
		if err := rows.Scan(&mem.ID, &mem.UserID, &mem.Username, &mem.Content, &reply, &mood, &mem.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		mem.Reply = reply.String
		mem.Mood = mood.String
		out = append(out, mem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order for prompt construction.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	log.FromCtx(ctx).Debug().Str("user", userID).Int("count", len(out)).Msg("loaded memories")
	return out, nil
}

// Forget removes every record for a user. Other users' records are untouched.
func (m *Memories) Forget(ctx context.Context, userID string) (int64, error) {
	res, err := m.db.ExecContext(ctx, `DELETE FROM memories WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to forget user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CountByUser returns the number of stored records for a user.
func (m *Memories) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return n, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
