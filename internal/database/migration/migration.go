package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_registrations",
		SQL: `CREATE TABLE IF NOT EXISTS registrations (
  id            SERIAL      PRIMARY KEY,
  type          TEXT        NOT NULL DEFAULT '',
  date          TIMESTAMPTZ NOT NULL,
  customer_id   TEXT        NOT NULL DEFAULT '',
  customer_name TEXT        NOT NULL DEFAULT '',
  passport      TEXT        NOT NULL DEFAULT '',
  address       TEXT        NOT NULL DEFAULT '',
  amount        INTEGER     NOT NULL DEFAULT 0,
  total         INTEGER     NOT NULL DEFAULT 0,
  culture       TEXT        NOT NULL DEFAULT '',
  phone_number  TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_registrations_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_registrations_date ON registrations (date);`,
	},
	{
		Name: "create_index_registrations_customer_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_registrations_customer_id ON registrations (customer_id);`,
	},
	{
		Name: "create_index_registrations_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_registrations_type ON registrations (type);`,
	},
}

// logOutput is swapped in tests.
var logOutput io.Writer = os.Stdout

// EnsureMigrated checks if the 'registrations' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.registrations') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	_, _ = fmt.Fprintln(logOutput, string(b))
}
