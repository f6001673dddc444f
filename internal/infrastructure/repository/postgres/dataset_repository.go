package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

type DatasetRepository struct {
	db *sql.DB
}

func NewDatasetRepository(db *sql.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DatasetRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS datasets (
	id TEXT PRIMARY KEY,
	raw_text TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	invoice_id TEXT NOT NULL,
	customer TEXT NOT NULL,
	amount TEXT NOT NULL,
	paid_at TEXT NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY (dataset_id, position)
);

CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Create persists the dataset header and its rows in one transaction. Row
// position preserves the original file order; rankings depend on it.
func (r *DatasetRepository) Create(ctx context.Context, dataset *domain.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dataset tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO datasets (id, raw_text, record_count, created_at) VALUES ($1,$2,$3,$4)
`, dataset.ID, dataset.RawText, len(dataset.Records), dataset.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	for i, rec := range dataset.Records {
		_, err = tx.ExecContext(ctx, `
INSERT INTO invoices (dataset_id, position, invoice_id, customer, amount, paid_at, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, dataset.ID, i, rec.InvoiceID, rec.Customer, rec.Amount, rec.PaidAt, rec.Status)
		if err != nil {
			return fmt.Errorf("insert invoice row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset tx: %w", err)
	}
	return nil
}

// GetLatest returns the most recently imported dataset with its rows in
// original file order.
func (r *DatasetRepository) GetLatest(ctx context.Context) (*domain.Dataset, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, raw_text, created_at
FROM datasets
ORDER BY created_at DESC, id DESC
LIMIT 1
`)

	var dataset domain.Dataset
	if err := row.Scan(&dataset.ID, &dataset.RawText, &dataset.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDatasetNotFound, "get latest dataset", err)
		}
		return nil, fmt.Errorf("query latest dataset: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT invoice_id, customer, amount, paid_at, status
FROM invoices
WHERE dataset_id = $1
ORDER BY position
`, dataset.ID)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.InvoiceRecord
		if err := rows.Scan(&rec.InvoiceID, &rec.Customer, &rec.Amount, &rec.PaidAt, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		dataset.Records = append(dataset.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice rows: %w", err)
	}

	return &dataset, nil
}
