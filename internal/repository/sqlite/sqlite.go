// Package sqlite persists analysis snapshots so history survives a
// restart. One row per analysis cycle plus its issues.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sentinel/internal/domain"
)

// Repository stores health summaries and issues in SQLite
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the snapshot database at the given path
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at DATETIME NOT NULL,
		devices_total INTEGER NOT NULL,
		devices_online INTEGER NOT NULL,
		devices_offline INTEGER NOT NULL,
		packet_loss_pct REAL NOT NULL,
		latency_ms REAL NOT NULL,
		critical_count INTEGER NOT NULL,
		data JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id INTEGER NOT NULL,
		severity TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		data JSON NOT NULL,
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
	CREATE INDEX IF NOT EXISTS idx_issues_snapshot ON issues(snapshot_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// InsertSnapshot stores one cycle's summary and issues atomically
func (r *Repository) InsertSnapshot(ctx context.Context, summary domain.HealthSummary, issues []domain.Issue) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (taken_at, devices_total, devices_online, devices_offline,
			packet_loss_pct, latency_ms, critical_count, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, summary.Timestamp, summary.DevicesTotal, summary.DevicesOnline, summary.DevicesOffline,
		summary.PacketLossPct, summary.LatencyMs, summary.CriticalCount, data)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	snapshotID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get snapshot id: %w", err)
	}

	for _, issue := range issues {
		issueData, err := json.Marshal(issue)
		if err != nil {
			return fmt.Errorf("failed to marshal issue: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO issues (snapshot_id, severity, type, title, data)
			VALUES (?, ?, ?, ?, ?)
		`, snapshotID, issue.Severity, issue.Type, issue.Title, issueData); err != nil {
			return fmt.Errorf("failed to insert issue: %w", err)
		}
	}

	return tx.Commit()
}

// RecentSummaries returns up to limit summaries in chronological order,
// oldest first. Used to warm the in-memory history at startup.
func (r *Repository) RecentSummaries(ctx context.Context, limit int) ([]domain.HealthSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM (
			SELECT data, taken_at FROM snapshots ORDER BY taken_at DESC LIMIT ?
		) ORDER BY taken_at ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var summaries []domain.HealthSummary
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		var s domain.HealthSummary
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// LatestIssues returns the issues attached to the most recent snapshot
func (r *Repository) LatestIssues(ctx context.Context) ([]domain.Issue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM issues
		WHERE snapshot_id = (SELECT id FROM snapshots ORDER BY taken_at DESC LIMIT 1)
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	var issues []domain.Issue
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		var i domain.Issue
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issue: %w", err)
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

// PruneBefore removes snapshots older than the cutoff
func (r *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM issues WHERE snapshot_id IN
			(SELECT id FROM snapshots WHERE taken_at < ?)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune issues: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database
func (r *Repository) Close() error {
	return r.db.Close()
}
