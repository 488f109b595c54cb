package submission

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the DDL for the submissions table. Types are chosen to work on
// both postgres and sqlite.
const Schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id                  TEXT PRIMARY KEY,
	user_id             BIGINT,
	name                TEXT NOT NULL,
	email               TEXT NOT NULL,
	business_name       TEXT NOT NULL,
	business_desc       TEXT NOT NULL DEFAULT '',
	page_count          INTEGER NOT NULL DEFAULT 0,
	project_types       TEXT NOT NULL DEFAULT '[]',
	reference_url       TEXT NOT NULL DEFAULT '',
	upload_refs         TEXT NOT NULL DEFAULT '[]',
	plan                TEXT NOT NULL,
	add_ons             TEXT NOT NULL DEFAULT '{}',
	billing_cycle       TEXT NOT NULL DEFAULT 'monthly',
	setup_fee           INTEGER NOT NULL DEFAULT 0,
	one_time_total      INTEGER NOT NULL DEFAULT 0,
	first_month         INTEGER NOT NULL DEFAULT 0,
	monthly_recurring   INTEGER NOT NULL DEFAULT 0,
	grand_total         INTEGER NOT NULL DEFAULT 0,
	checkout_session_id TEXT,
	customer_id         TEXT,
	status              TEXT,
	created_at          TIMESTAMP NOT NULL,
	updated_at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_email_status ON submissions (email, status);
CREATE INDEX IF NOT EXISTS idx_submissions_user_status ON submissions (user_id, status);
`

// EnsureSchema creates the submissions table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create submissions schema: %w", err)
	}
	return nil
}
