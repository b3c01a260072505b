// Package migration creates the result schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// SentinelTable is probed to decide whether the schema already exists.
const SentinelTable = "test_runs"

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_test_runs",
		SQL: `CREATE TABLE IF NOT EXISTS test_runs (
  id             UUID        PRIMARY KEY,
  tester         TEXT        NOT NULL,
  channel        TEXT        NOT NULL CHECK (channel IN ('session', 'anonymous', 'autotest')),
  test_date      TIMESTAMPTZ NOT NULL,
  test_set       TEXT        NOT NULL,
  kernel_version TEXT        NOT NULL,
  release        TEXT        NOT NULL,
  fedora_version INTEGER     NOT NULL DEFAULT 0,
  arch           TEXT        NOT NULL,
  result         TEXT        NOT NULL,
  failed_tests   TEXT        NOT NULL DEFAULT '',
  warned_tests   TEXT        NOT NULL DEFAULT '',
  log_path       TEXT        NOT NULL UNIQUE,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_test_cases",
		SQL: `CREATE TABLE IF NOT EXISTS test_cases (
  id       BIGSERIAL PRIMARY KEY,
  run_id   UUID      NOT NULL REFERENCES test_runs (id) ON DELETE CASCADE,
  position INTEGER   NOT NULL,
  name     TEXT      NOT NULL,
  result   TEXT      NOT NULL,
  UNIQUE (run_id, position)
);`,
	},
	{
		Name: "create_index_test_runs_release",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_test_runs_release ON test_runs (release);`,
	},
	{
		Name: "create_index_test_runs_fedora_version",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_test_runs_fedora_version ON test_runs (fedora_version);`,
	},
	{
		Name: "create_index_test_runs_kernel_version",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_test_runs_kernel_version ON test_runs (kernel_version);`,
	},
	{
		Name: "create_index_test_runs_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_test_runs_created_at ON test_runs (created_at DESC, id DESC);`,
	},
}

// EnsureMigrated runs every step when the sentinel table is missing and does
// nothing otherwise. target identifies the database in log lines.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *log.Logger, target string) error {
	start := time.Now()
	entry := logger.WithFields(log.Fields{
		"component": "database",
		"db_host":   target,
	})

	entry.WithField("event", "db_migration_check").Info("checking schema")

	var exists bool
	query := "SELECT to_regclass('public." + SentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		entry.WithFields(log.Fields{
			"event":       "db_migration_failed",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		entry.WithFields(log.Fields{
			"event":       "db_migration_skip",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	entry.WithField("event", "db_migration_start").Info("applying schema")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			entry.WithFields(log.Fields{
				"event":            "db_migration_failed",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		entry.WithFields(log.Fields{
			"event":            "db_migration_step",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Debug("step applied")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	entry.WithFields(log.Fields{
		"event":       "db_migration_success",
		"steps":       len(steps),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema migrated")

	return nil
}
