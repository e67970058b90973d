package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

const uniqueViolation = "23505"

// OpenDB connects through the pgx stdlib driver with search_path pinned to schema.
func OpenDB(dsn, schema string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if schema != "" {
		cfg.RuntimeParams["search_path"] = schema
	}
	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the schema and every table idempotently.
func EnsureSchema(ctx context.Context, db *sql.DB, schema string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api and ctl startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026031001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if schema != "" {
		ident := pgx.Identifier{schema}.Sanitize()
		if _, err := tx.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+ident); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "SET LOCAL search_path TO "+ident); err != nil {
			return fmt.Errorf("set search path: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS businesses (
	id TEXT PRIMARY KEY,
	owner_user_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	industry TEXT NOT NULL DEFAULT '',
	sector TEXT NOT NULL,
	size TEXT NOT NULL DEFAULT '',
	uk_nation TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	subscription_status TEXT NOT NULL,
	subscription_plan TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS compliance_items (
	id TEXT PRIMARY KEY,
	business_id TEXT NOT NULL,
	industry_id TEXT NOT NULL,
	item_key TEXT NOT NULL,
	item_type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	is_required BOOLEAN NOT NULL,
	status TEXT NOT NULL,
	is_acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
	acknowledged_at TIMESTAMPTZ,
	is_customised BOOLEAN NOT NULL DEFAULT FALSE,
	custom_content TEXT,
	file_url TEXT,
	file_name TEXT,
	version TEXT NOT NULL,
	last_reviewed TIMESTAMPTZ,
	next_review_due TIMESTAMPTZ,
	notes TEXT,
	contributes_to_score BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ,
	archived BOOLEAN NOT NULL DEFAULT FALSE,
	archived_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_items_active_key ON compliance_items(business_id, item_key) WHERE NOT archived;
CREATE INDEX IF NOT EXISTS idx_items_business ON compliance_items(business_id, archived);

CREATE TABLE IF NOT EXISTS compliance_scores (
	business_id TEXT PRIMARY KEY,
	industry_id TEXT NOT NULL,
	score_percent INTEGER NOT NULL,
	required_total INTEGER NOT NULL,
	completed_total INTEGER NOT NULL,
	missing_count INTEGER NOT NULL,
	overdue_count INTEGER NOT NULL,
	needs_review_count INTEGER NOT NULL,
	status_label TEXT NOT NULL,
	last_calculated_at TIMESTAMPTZ NOT NULL,
	next_review_due_at TIMESTAMPTZ,
	breakdown JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	business_id TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	job_title TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	start_date TIMESTAMPTZ,
	phone TEXT NOT NULL DEFAULT '',
	emergency_contact TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_employees_business ON employees(business_id, created_at);

CREATE TABLE IF NOT EXISTS employee_requirements (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	requirement_type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	issue_date TIMESTAMPTZ,
	expiry_date TIMESTAMPTZ,
	reference_number TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	is_mandatory BOOLEAN NOT NULL,
	renewal_months INTEGER,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_requirements_employee ON employee_requirements(employee_id, created_at);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	type TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS payment_transactions (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	amount NUMERIC(12,2) NOT NULL,
	currency TEXT NOT NULL,
	plan TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	storage_key TEXT NOT NULL,
	uploaded_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`

type scanner interface {
	Scan(dest ...any) error
}

// classify maps driver errors onto domain kinds.
func classify(op, what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewError(domain.ErrNotFound, op, what+" not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.WrapError(domain.ErrConflict, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectAffected turns a zero-row update into ErrNotFound.
func expectAffected(op, what string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return domain.NewError(domain.ErrNotFound, op, what+" not found")
	}
	return nil
}
