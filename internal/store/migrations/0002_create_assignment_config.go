package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0002, Down0002)
}

func Up0002(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx, `
CREATE TABLE assignment_config (
	assignment_id TEXT PRIMARY KEY,
	kind TEXT NOT NULL DEFAULT 'other',
	total_points DOUBLE PRECISION NOT NULL CHECK (total_points > 0),
	criteria JSONB NOT NULL DEFAULT '{}'::jsonb,
	bands JSONB NOT NULL DEFAULT '[]'::jsonb,
	keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	expected_answer TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp
);
`, `
CREATE TRIGGER assignment_config_touch_updated_at
BEFORE UPDATE ON assignment_config
FOR EACH ROW EXECUTE PROCEDURE touch_updated_at();
`)
}

func Down0002(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE assignment_config;`)
	return err
}
