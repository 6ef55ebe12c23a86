package receipts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/snapnote/internal/dbx"
	"github.com/dmitrijs2005/snapnote/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, rc *Receipt) (bool, error) {
	query :=
		`INSERT INTO receipts (note_id, created_at, text_length, image_size, received_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (note_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, rc.NoteID, rc.CreatedAt, rc.TextLength, rc.ImageSize, rc.ReceivedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n == 0, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM receipts`

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenPostgres connects to dsn through the pgx driver and migrates the
// schema.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}
