package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/snapnote/internal/dbx"
)

// AcquireRunLease claims the device queue for holder until now+ttl. The
// claim succeeds when the lease is free, expired or already held by holder.
// Otherwise it returns the current holder and false.
//
// The conditional UPDATE is the first statement of the transaction, so the
// write lock is taken before anything is read and a competing process waits
// on busy_timeout instead of failing.
func (r *SQLiteRepository) AcquireRunLease(ctx context.Context, holder string, ttl time.Duration) (string, bool, error) {
	now := r.now()

	var (
		current  string
		acquired bool
	)
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE sync_lease SET holder = ?, expires_at = ?
			WHERE id = 1 AND (holder = '' OR holder = ? OR expires_at <= ?)
		`, holder, now.Add(ttl).UnixMilli(), holder, now.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to claim sync lease: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if ra == 1 {
			current, acquired = holder, true
			return nil
		}

		if err := tx.QueryRowContext(ctx, `SELECT holder FROM sync_lease WHERE id = 1`).Scan(&current); err != nil {
			return fmt.Errorf("failed to read sync lease: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return current, acquired, nil
}

// RenewRunLease extends a lease still held by holder. It returns false when
// another holder has taken the lease over after it expired.
func (r *SQLiteRepository) RenewRunLease(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_lease SET expires_at = ? WHERE id = 1 AND holder = ?`,
		r.now().Add(ttl).UnixMilli(), holder)
	if err != nil {
		return false, fmt.Errorf("failed to renew sync lease: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra == 1, nil
}

// ReleaseRunLease frees the lease if holder still owns it.
func (r *SQLiteRepository) ReleaseRunLease(ctx context.Context, holder string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE sync_lease SET holder = '', expires_at = 0 WHERE id = 1 AND holder = ?`, holder); err != nil {
		return fmt.Errorf("failed to release sync lease: %w", err)
	}
	return nil
}
