package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Supported results database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Tables lists every table the results store needs.
var Tables = []string{"merit_runs", "merit_smas", "merit_results"}

// InitSchema creates the results tables if needed and verifies they exist
func InitSchema(ctx context.Context, db *sql.DB, driver string) error {
	var schema string
	switch driver {
	case DriverPostgres:
		schema = schemaPostgres
	case DriverSQLite:
		schema = schemaSQLite
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}

	for _, table := range Tables {
		var n int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return fmt.Errorf("required table %s does not exist: %w", table, err)
		}
	}

	return nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS merit_runs (
  id INTEGER PRIMARY KEY,
  label TEXT NOT NULL DEFAULT '',
  subjects_json TEXT NOT NULL,
  candidate_count INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS merit_smas (
  subject TEXT NOT NULL,
  category TEXT NOT NULL,
  threshold REAL NOT NULL,
  PRIMARY KEY (subject, category)
);

CREATE TABLE IF NOT EXISTS merit_results (
  row_num INTEGER PRIMARY KEY,
  record_json TEXT NOT NULL,
  marks_json TEXT NOT NULL,
  category TEXT NOT NULL,
  pwd_status TEXT NOT NULL,
  jk_status TEXT NOT NULL,
  total_marks REAL NOT NULL,
  max_subject_mark REAL NOT NULL,
  percentile REAL NOT NULL,
  qualified_subjects INTEGER NOT NULL,
  gen_rank TEXT,
  cat_rank TEXT,
  ews_rank TEXT,
  pwd_rank TEXT,
  jk_rank TEXT
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS merit_runs (
  id INTEGER PRIMARY KEY,
  label TEXT NOT NULL DEFAULT '',
  subjects_json TEXT NOT NULL,
  candidate_count INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS merit_smas (
  subject TEXT NOT NULL,
  category TEXT NOT NULL,
  threshold DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (subject, category)
);

CREATE TABLE IF NOT EXISTS merit_results (
  row_num INTEGER PRIMARY KEY,
  record_json TEXT NOT NULL,
  marks_json TEXT NOT NULL,
  category TEXT NOT NULL,
  pwd_status TEXT NOT NULL,
  jk_status TEXT NOT NULL,
  total_marks DOUBLE PRECISION NOT NULL,
  max_subject_mark DOUBLE PRECISION NOT NULL,
  percentile DOUBLE PRECISION NOT NULL,
  qualified_subjects INTEGER NOT NULL,
  gen_rank TEXT,
  cat_rank TEXT,
  ews_rank TEXT,
  pwd_rank TEXT,
  jk_rank TEXT
);
`
