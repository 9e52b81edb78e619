// Package migration creates the activity journal schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studymate/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_activities",
		SQL: `CREATE TABLE IF NOT EXISTS activities (
  id            UUID        PRIMARY KEY,
  operation     TEXT        NOT NULL,
  principal_uid TEXT        NOT NULL DEFAULT '',
  state         TEXT        NOT NULL CHECK (state IN ('resolved', 'rejected')),
  error         TEXT        NOT NULL DEFAULT '',
  started_at    TIMESTAMPTZ NOT NULL,
  duration_ms   BIGINT      NOT NULL CHECK (duration_ms >= 0)
);`,
	},
	{
		Name: "create_index_activities_principal_started",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_activities_principal_started ON activities (principal_uid, started_at DESC);`,
	},
	{
		Name: "create_index_activities_operation",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_activities_operation ON activities (operation);`,
	},
}

// EnsureMigrated creates the schema unless the activities table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logging.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("database")
	log.Info("db_migration_check", map[string]any{"db_host": dbHost})

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.activities') IS NOT NULL").Scan(&exists); err != nil {
		log.Error("db_migration_failed", err, map[string]any{
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		log.Info("db_migration_skip", map[string]any{
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed", err, map[string]any{
				"migration_step":   step.Name,
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step", map[string]any{
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	log.Info("db_migration_success", map[string]any{
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
