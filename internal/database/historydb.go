package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/techspider/techspider/internal/model"
)

// HistoryDB provides SQLite-based storage for crawl results.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all targets rather
// than separate files per target. This simplifies history queries across
// targets and backup/restore operations.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "techspider.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, so a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Page visits store individual page fetch outcomes
	CREATE TABLE IF NOT EXISTS page_visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		error TEXT,
		UNIQUE(url, target)
	);

	CREATE INDEX IF NOT EXISTS idx_visits_url ON page_visits(url);
	CREATE INDEX IF NOT EXISTS idx_visits_target ON page_visits(target);
	CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON page_visits(timestamp);

	-- Crawl results store complete crawl outcomes as JSON
	CREATE TABLE IF NOT EXISTS crawl_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		result_json TEXT NOT NULL,
		app_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_target ON crawl_results(target);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON crawl_results(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveResult saves a complete crawl result plus one page-visit row per
// attempted URL. Page rows are upserted so re-crawling a target keeps
// the latest outcome per URL.
func (hdb *HistoryDB) SaveResult(ctx context.Context, result *model.CrawlResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	// App summary lets history listings show detections without loading
	// the full result.
	appNames := make([]string, 0, len(result.Applications))
	for _, app := range result.Applications {
		appNames = append(appNames, app.Name)
	}
	appJSON, _ := json.Marshal(appNames) //nolint:errcheck,errchkjson // a string slice; Marshal won't fail

	query := `
	INSERT INTO crawl_results (target, result_json, app_summary)
	VALUES (?, ?, ?)
	`
	if _, err := hdb.db.ExecContext(ctx, query, result.Target, string(resultJSON), string(appJSON)); err != nil {
		return fmt.Errorf("failed to save crawl result: %w", err)
	}

	visitQuery := `
	INSERT INTO page_visits (url, target, status_code, error)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(url, target) DO UPDATE SET
		status_code = excluded.status_code,
		error = excluded.error,
		timestamp = CURRENT_TIMESTAMP
	`
	for href, st := range result.URLs {
		if _, err := hdb.db.ExecContext(ctx, visitQuery, href, result.Target, st.Status, st.Error); err != nil {
			return fmt.Errorf("failed to save page visit: %w", err)
		}
	}

	return nil
}

// GetLatestResult retrieves the most recent crawl result for a target.
// Returns nil without error when the target has never been crawled.
func (hdb *HistoryDB) GetLatestResult(ctx context.Context, target string) (*model.CrawlResult, error) {
	query := `
	SELECT result_json FROM crawl_results
	WHERE target = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var resultJSON string
	err := hdb.db.QueryRowContext(ctx, query, target).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl result: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return &result, nil
}

// ListTargets returns every target that has at least one stored crawl.
func (hdb *HistoryDB) ListTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT target FROM crawl_results
	ORDER BY target
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// GetHistory retrieves all crawl results for a target, newest first.
func (hdb *HistoryDB) GetHistory(ctx context.Context, target string) ([]*model.CrawlResult, error) {
	query := `
	SELECT result_json FROM crawl_results
	WHERE target = ?
	ORDER BY timestamp DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	defer rows.Close()

	var results []*model.CrawlResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		var result model.CrawlResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			continue // Skip malformed results
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// CrawlMetadata contains summary information about a stored crawl.
// This is used for displaying crawl history without loading the full result.
type CrawlMetadata struct {
	// ID is the unique identifier of the crawl in the database.
	ID int64

	// Target is the crawled seed URL.
	Target string

	// Timestamp is when the crawl was stored.
	Timestamp time.Time

	// Applications are the names of the technologies detected.
	Applications []string
}

// GetHistoryWithMetadata retrieves crawl metadata for a target.
// This is more efficient than GetHistory when only metadata is needed.
func (hdb *HistoryDB) GetHistoryWithMetadata(ctx context.Context, target string) ([]CrawlMetadata, error) {
	query := `
	SELECT id, target, timestamp, app_summary
	FROM crawl_results
	WHERE target = ?
	ORDER BY timestamp DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	defer rows.Close()

	var results []CrawlMetadata
	for rows.Next() {
		var meta CrawlMetadata
		var timestamp string
		var appJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Target, &timestamp, &appJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if appJSON.Valid && appJSON.String != "" {
			if err := json.Unmarshal([]byte(appJSON.String), &meta.Applications); err != nil {
				meta.Applications = nil
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetResultByID retrieves a crawl result by its database ID.
func (hdb *HistoryDB) GetResultByID(ctx context.Context, id int64) (*model.CrawlResult, error) {
	query := `
	SELECT result_json FROM crawl_results
	WHERE id = ?
	`

	var resultJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl result: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return &result, nil
}

// PageVisit represents a stored page fetch outcome.
type PageVisit struct {
	ID         int64
	URL        string
	Target     string
	Timestamp  time.Time
	StatusCode int
	Error      string
}

// GetPageVisits retrieves the latest per-URL outcomes for a target.
func (hdb *HistoryDB) GetPageVisits(ctx context.Context, target string) ([]PageVisit, error) {
	query := `
	SELECT id, url, target, timestamp, status_code, error
	FROM page_visits
	WHERE target = ?
	ORDER BY url
	`

	rows, err := hdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get page visits: %w", err)
	}
	defer rows.Close()

	var visits []PageVisit
	for rows.Next() {
		var visit PageVisit
		var timestamp string

		if err := rows.Scan(&visit.ID, &visit.URL, &visit.Target, &timestamp, &visit.StatusCode, &visit.Error); err != nil {
			return nil, fmt.Errorf("failed to scan page visit: %w", err)
		}

		visit.Timestamp = parseTimestamp(timestamp)
		visits = append(visits, visit)
	}

	return visits, rows.Err()
}

// HasRecentCrawl checks if a target was crawled within the specified duration.
func (hdb *HistoryDB) HasRecentCrawl(ctx context.Context, target string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM crawl_results
	WHERE target = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	if err := hdb.db.QueryRowContext(ctx, query, target, modifier).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
