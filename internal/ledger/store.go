// Package ledger persists upload metadata through sqlx, on PostgreSQL or
// SQLite depending on the configured URL.
package ledger

import (
	"context"
	"log"

	"borelog/domain/borehole"
	"borelog/internal/config"
	"borelog/internal/errors"
	"borelog/internal/migration"
	"borelog/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DefaultLimit bounds Recent when the caller passes a non-positive limit.
const DefaultLimit = 20

// Store implements ports.UploadLedger over a SQL database.
type Store struct {
	db *sqlx.DB
}

var _ ports.UploadLedger = (*Store)(nil)

// Open connects to the configured database and migrates the schema. A
// disabled ledger yields Noop.
func Open(ctx context.Context, cfg config.DatabaseConfig) (ports.UploadLedger, func() error, error) {
	if cfg.Disabled {
		log.Printf("[Ledger] Disabled by configuration")
		return Noop{}, func() error { return nil }, nil
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverFor(cfg.URL)
	}

	db, err := sqlx.ConnectContext(ctx, driver, cfg.URL)
	if err != nil {
		return nil, nil, errors.DatabaseError("failed to connect to ledger database", err)
	}
	if driver == "sqlite" {
		// SQLite serializes writers.
		db.SetMaxOpenConns(1)
	}

	store, err := NewStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Printf("[Ledger] Connected (%s)", driver)
	return store, db.Close, nil
}

// NewStore migrates db and wraps it as a ledger.
func NewStore(ctx context.Context, db *sqlx.DB) (*Store, error) {
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return nil, errors.DatabaseError("failed to migrate ledger", err)
	}
	return &Store{db: db}, nil
}

// Record appends one upload.
func (s *Store) Record(ctx context.Context, u borehole.Upload) error {
	query := s.db.Rebind(`INSERT INTO uploads (
		id, filename, row_count, column_count, borehole_count, uploaded_at
	) VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Filename, u.Rows, u.Columns, u.Boreholes, u.UploadedAt,
	)
	if err != nil {
		return errors.DatabaseError("failed to record upload", err)
	}
	return nil
}

// Recent lists the latest uploads, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]borehole.Upload, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query := s.db.Rebind(`SELECT
		id, filename, row_count, column_count, borehole_count, uploaded_at
	FROM uploads
	ORDER BY uploaded_at DESC
	LIMIT ?`)

	var uploads []borehole.Upload
	if err := s.db.SelectContext(ctx, &uploads, query, limit); err != nil {
		return nil, errors.DatabaseError("failed to list uploads", err)
	}
	return uploads, nil
}
