package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/lab-grader/internal/core/domain"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
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

func (r *BatchRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	submitted INTEGER NOT NULL DEFAULT 0,
	graded INTEGER NOT NULL DEFAULT 0,
	ignored INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	batch_id TEXT NOT NULL REFERENCES batches(id),
	filename TEXT NOT NULL,
	kind TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	position SERIAL,
	PRIMARY KEY (batch_id, storage_key)
);

CREATE TABLE IF NOT EXISTS results (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES batches(id),
	filename TEXT NOT NULL,
	score TEXT NOT NULL,
	feedback TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status);
CREATE INDEX IF NOT EXISTS idx_submissions_batch ON submissions(batch_id);
CREATE INDEX IF NOT EXISTS idx_results_batch ON results(batch_id, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *BatchRepository) CreateBatch(ctx context.Context, batch *domain.Batch) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO batches (id, name, status, submitted, graded, ignored, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		batch.ID, batch.Name, string(batch.Status), batch.Submitted, batch.Graded, batch.Ignored,
		batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, status, submitted, graded, ignored, created_at, updated_at
FROM batches
WHERE id = $1
`, id)

	var batch domain.Batch
	var status string

	err := row.Scan(
		&batch.ID, &batch.Name, &status, &batch.Submitted, &batch.Graded, &batch.Ignored,
		&batch.CreatedAt, &batch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	batch.Status = domain.BatchStatus(status)
	return &batch, nil
}

func (r *BatchRepository) UpdateBatchStatus(ctx context.Context, id string, status domain.BatchStatus, graded int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE batches
SET status = $2, graded = $3, updated_at = $4
WHERE id = $1
`, id, string(status), graded, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update batch status rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "update batch status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *BatchRepository) AddSubmission(ctx context.Context, sub *domain.StoredSubmission) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO submissions (batch_id, filename, kind, storage_key)
VALUES ($1,$2,$3,$4)
`, sub.BatchID, sub.Filename, string(sub.Kind), sub.StorageKey)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListSubmissions preserves upload order so the worker grades reports in
// the order the teacher submitted them.
func (r *BatchRepository) ListSubmissions(ctx context.Context, batchID string) ([]domain.StoredSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT batch_id, filename, kind, storage_key
FROM submissions
WHERE batch_id = $1
ORDER BY position
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.StoredSubmission
	for rows.Next() {
		var sub domain.StoredSubmission
		var kind string
		if err := rows.Scan(&sub.BatchID, &sub.Filename, &kind, &sub.StorageKey); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Kind = domain.MediaKind(kind)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func (r *BatchRepository) AppendResult(ctx context.Context, result *domain.Result) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO results (id, batch_id, filename, score, feedback, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, result.ID, result.BatchID, result.Filename, result.Score, result.Feedback, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (r *BatchRepository) ListResults(ctx context.Context, batchID string) ([]domain.Result, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, batch_id, filename, score, feedback, created_at
FROM results
WHERE batch_id = $1
ORDER BY created_at
`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var res domain.Result
		if err := rows.Scan(&res.ID, &res.BatchID, &res.Filename, &res.Score, &res.Feedback, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// HasResult matches on exact filename, which is how interrupted batches
// resume without re-grading finished reports.
func (r *BatchRepository) HasResult(ctx context.Context, batchID, filename string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1) FROM results WHERE batch_id = $1 AND filename = $2
`, batchID, filename).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count results: %w", err)
	}
	return count > 0, nil
}
