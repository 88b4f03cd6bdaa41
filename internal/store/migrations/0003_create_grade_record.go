package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0003, Down0003)
}

func Up0003(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx, `
CREATE TABLE grade_record (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	submission_id TEXT NOT NULL,
	assignment_id TEXT NOT NULL,
	student_id TEXT NOT NULL,
	score DOUBLE PRECISION,
	total_points DOUBLE PRECISION NOT NULL,
	grade TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	method TEXT NOT NULL,
	requires_manual_review BOOLEAN NOT NULL DEFAULT false,
	feedback JSONB NOT NULL DEFAULT '{}'::jsonb,
	breakdown JSONB NOT NULL DEFAULT '{}'::jsonb,
	breakdown_consistent BOOLEAN NOT NULL DEFAULT true,
	ocr_processed BOOLEAN NOT NULL DEFAULT false,
	outcome JSONB,
	error TEXT NOT NULL DEFAULT '',
	error_kind TEXT NOT NULL DEFAULT '',
	graded_at TIMESTAMP WITH TIME ZONE NOT NULL,
	superseded_at TIMESTAMP WITH TIME ZONE,
	superseded_by UUID REFERENCES grade_record(id) DEFERRABLE INITIALLY DEFERRED,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
	CHECK ((method = 'error') = (score IS NULL))
);
`,
		// at most one current record per submission
		`CREATE UNIQUE INDEX grade_record_current_idx ON grade_record (submission_id) WHERE superseded_at IS NULL;`,
		`CREATE INDEX grade_record_assignment_idx ON grade_record (assignment_id) WHERE superseded_at IS NULL;`,
	)
}

func Down0003(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE grade_record;`)
	return err
}
