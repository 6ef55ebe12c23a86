package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/client/models"
	"github.com/dmitrijs2005/snapnote/internal/common"
)

const noteColumns = `id, created_at, text, image, status`

// SQLiteRepository implements Repository on top of the local SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository returns a repository bound to db. The notes table must
// already exist.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Insert adds a pending note. ON CONFLICT DO NOTHING turns a duplicate id into
// zero affected rows, reported as common.ErrDuplicateKey.
func (r *SQLiteRepository) Insert(ctx context.Context, n *models.Note) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("%w: missing id", common.ErrInvalidNote)
	}
	if n.Status != models.StatusPending {
		return fmt.Errorf("%w: new note must be %s, got %q", common.ErrInvalidNote, models.StatusPending, n.Status)
	}

	image := n.Image
	if image == nil {
		image = []byte{}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, n.ID, n.CreatedAt, n.Text, image, string(n.Status))
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("note %s: %w", n.ID, common.ErrDuplicateKey)
	}
	return nil
}

// ListAll returns every note, newest first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.Note, error) {
	return r.query(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY created_at DESC, rowid DESC`)
}

// ListByStatus returns the notes in status, oldest first.
func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.Status) ([]*models.Note, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("list notes: unknown status %q", status)
	}
	return r.query(ctx, `SELECT `+noteColumns+` FROM notes WHERE status = ? ORDER BY created_at ASC, rowid ASC`, string(status))
}

// SetStatus moves note id to status with single statements, so concurrent
// writers only ever wait on busy_timeout. A missing note and a repeated
// transition are silent successes; moving a synced note back to pending
// fails with common.ErrInvalidTransition.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, status models.Status) error {
	switch status {
	case models.StatusSynced:
		_, err := r.db.ExecContext(ctx,
			`UPDATE notes SET status = ? WHERE id = ? AND status = ?`,
			string(models.StatusSynced), id, string(models.StatusPending))
		if err != nil {
			return fmt.Errorf("failed to update note status: %w", err)
		}
		return nil

	case models.StatusPending:
		var current string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM notes WHERE id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read note status: %w", err)
		}
		if models.Status(current) == models.StatusSynced {
			return fmt.Errorf("%w: note %s is already %s", common.ErrInvalidTransition, id, current)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown status %q", common.ErrInvalidTransition, status)
	}
}

// Count returns the number of notes in status.
func (r *SQLiteRepository) Count(ctx context.Context, status models.Status) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE status = ?`, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := []*models.Note{}
	for rows.Next() {
		n := &models.Note{}
		var status string
		if err := rows.Scan(&n.ID, &n.CreatedAt, &n.Text, &n.Image, &status); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		if n.Status, err = models.ParseStatus(status); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
