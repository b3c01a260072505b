package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"kerneltest/internal/model"
	"kerneltest/internal/repository"
)

// ResultPostgres is a PostgreSQL implementation of repository.ResultRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ResultPostgres struct {
	db *sql.DB
}

// NewResultPostgres creates a new ResultPostgres repository.
func NewResultPostgres(db *sql.DB) *ResultPostgres {
	return &ResultPostgres{db: db}
}

var _ repository.ResultRepository = (*ResultPostgres)(nil)

const runColumns = `id, tester, channel, test_date, test_set, kernel_version, release,
		fedora_version, arch, result, failed_tests, warned_tests, log_path, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.TestRun, error) {
	var (
		r              model.TestRun
		channel        string
		failed, warned string
	)
	if err := row.Scan(
		&r.ID,
		&r.Tester,
		&channel,
		&r.TestDate,
		&r.TestSet,
		&r.KernelVersion,
		&r.Release,
		&r.FedoraVersion,
		&r.Arch,
		&r.Result,
		&failed,
		&warned,
		&r.LogPath,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	r.Channel = model.Channel(channel)
	r.FailedTests = strings.Fields(failed)
	r.WarnedTests = strings.Fields(warned)
	return &r, nil
}

// Create inserts the run row and its test cases in one transaction and returns
// the stored record.
func (r *ResultPostgres) Create(ctx context.Context, run *model.TestRun) (*model.TestRun, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `
		INSERT INTO test_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + runColumns
	row := tx.QueryRowContext(ctx, q,
		run.ID,
		run.Tester,
		string(run.Channel),
		run.TestDate,
		run.TestSet,
		run.KernelVersion,
		run.Release,
		run.FedoraVersion,
		run.Arch,
		run.Result,
		strings.Join(run.FailedTests, " "),
		strings.Join(run.WarnedTests, " "),
		run.LogPath,
		run.CreatedAt,
	)
	out, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	const qCase = `
		INSERT INTO test_cases (run_id, position, name, result)
		VALUES ($1, $2, $3, $4)
	`
	for _, tc := range run.Tests {
		if _, err := tx.ExecContext(ctx, qCase, out.ID, tc.Position, tc.Name, tc.Result); err != nil {
			return nil, fmt.Errorf("insert test case %d: %w", tc.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	out.Tests = append([]model.TestCase(nil), run.Tests...)
	return out, nil
}

// FindByID fetches a single run and its test cases.
func (r *ResultPostgres) FindByID(ctx context.Context, id string) (*model.TestRun, error) {
	q := `
		SELECT ` + runColumns + `
		FROM test_runs
		WHERE id = $1
	`
	run, err := scanRun(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}

	const qCases = `
		SELECT position, name, result
		FROM test_cases
		WHERE run_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, qCases, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.Position, &tc.Name, &tc.Result); err != nil {
			return nil, err
		}
		run.Tests = append(run.Tests, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs using LIMIT/OFFSET pagination and a total count, newest first.
func (r *ResultPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.TestRun], error) {
	const filter = `WHERE ($1::text = '' OR release = $1)
		AND ($2::text = '' OR kernel_version = $2)
		AND ($3::int IS NULL OR fedora_version = $3)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_runs `+filter, pq.Release, pq.Kernel, pq.Fedora).Scan(&total); err != nil {
		return nil, err
	}

	q := `
		SELECT ` + runColumns + `
		FROM test_runs ` + filter + `
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Release, pq.Kernel, pq.Fedora, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TestRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.TestRun]{
		Items: items,
		Total: total,
	}, nil
}
