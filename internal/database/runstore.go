package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/a11yscan/internal/model"
)

// RunStore records the findings and errors of a single audit run in an
// in-memory SQLite database. Nothing is written to disk; the data is gone
// once the store is closed.
//
// Design decision: We aggregate with SQL rather than maps because:
//  1. Per-category and per-URL summaries are single GROUP BY queries
//  2. Findings arrive concurrently and the single connection serializes them
//  3. Large runs keep findings out of the Go heap
type RunStore struct {
	db *sql.DB
}

// OpenRunStore creates an empty in-memory store.
func OpenRunStore(ctx context.Context) (*RunStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database, so the pool
	// must hold exactly one connection that never expires.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	rs := &RunStore{db: db}
	if err := rs.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return rs, nil
}

// Close releases the database and discards its contents.
func (rs *RunStore) Close() error {
	return rs.db.Close()
}

func (rs *RunStore) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url TEXT NOT NULL,
		category INTEGER NOT NULL,
		is_issue INTEGER NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		link_text TEXT NOT NULL DEFAULT '',
		target_url TEXT NOT NULL DEFAULT '',
		image_filename TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_findings_url ON findings(source_url);
	CREATE INDEX IF NOT EXISTS idx_findings_category ON findings(category);

	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		kind INTEGER NOT NULL,
		message TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	`
	_, err := rs.db.ExecContext(ctx, schema)
	return err
}

// AddFindings stores a batch of findings in one transaction.
func (rs *RunStore) AddFindings(ctx context.Context, findings []model.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO findings (source_url, category, is_issue, details, link_text, target_url, image_filename)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		if _, err := stmt.ExecContext(ctx,
			f.SourceURL,
			int(f.Category),
			boolToInt(f.IsIssue()),
			f.Details,
			f.LinkText,
			f.TargetURL,
			f.ImageFilename,
		); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit findings: %w", err)
	}
	return nil
}

// AddError stores a run error.
func (rs *RunStore) AddError(ctx context.Context, e model.RunError) error {
	_, err := rs.db.ExecContext(ctx,
		`INSERT INTO run_errors (url, kind, message, timestamp) VALUES (?, ?, ?, ?)`,
		e.URL,
		int(e.Kind),
		e.Message,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run error: %w", err)
	}
	return nil
}

// Findings returns every stored finding in insertion order.
func (rs *RunStore) Findings(ctx context.Context) ([]model.Finding, error) {
	rows, err := rs.db.QueryContext(ctx, `
	SELECT source_url, category, details, link_text, target_url, image_filename
	FROM findings
	ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	findings := make([]model.Finding, 0)
	for rows.Next() {
		var f model.Finding
		var category int
		if err := rows.Scan(&f.SourceURL, &category, &f.Details, &f.LinkText, &f.TargetURL, &f.ImageFilename); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Category = model.Category(category)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// Errors returns every stored run error in insertion order.
func (rs *RunStore) Errors(ctx context.Context) ([]model.RunError, error) {
	rows, err := rs.db.QueryContext(ctx, `SELECT url, kind, message, timestamp FROM run_errors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query run errors: %w", err)
	}
	defer rows.Close()

	errs := make([]model.RunError, 0)
	for rows.Next() {
		var e model.RunError
		var kind int
		var timestamp string
		if err := rows.Scan(&e.URL, &kind, &e.Message, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		e.Kind = model.ErrorKind(kind)
		e.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", timestamp, err)
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}

// CategoryCounts returns the number of findings per category, in category
// order. Categories without findings are omitted.
func (rs *RunStore) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := rs.db.QueryContext(ctx, `
	SELECT category, COUNT(*)
	FROM findings
	GROUP BY category
	ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()

	var counts []model.CategoryCount
	for rows.Next() {
		var category, n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, model.CategoryCount{Category: model.Category(category), Count: n})
	}
	return counts, rows.Err()
}

// URLCounts returns issue and finding totals per audited URL, most issues first.
func (rs *RunStore) URLCounts(ctx context.Context) ([]model.URLCount, error) {
	rows, err := rs.db.QueryContext(ctx, `
	SELECT source_url, SUM(is_issue) AS issues, COUNT(*)
	FROM findings
	GROUP BY source_url
	ORDER BY issues DESC, source_url ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count URLs: %w", err)
	}
	defer rows.Close()

	var counts []model.URLCount
	for rows.Next() {
		var uc model.URLCount
		if err := rows.Scan(&uc.URL, &uc.Issues, &uc.Findings); err != nil {
			return nil, fmt.Errorf("failed to scan URL count: %w", err)
		}
		counts = append(counts, uc)
	}
	return counts, rows.Err()
}

// Summary assembles a report summary for state from the stored findings.
func (rs *RunStore) Summary(ctx context.Context, state model.RunState) (*model.Summary, error) {
	findings, err := rs.Findings(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := rs.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	byURL, err := rs.URLCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Summary{
		State:      state,
		Findings:   findings,
		ByCategory: byCategory,
		ByURL:      byURL,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
