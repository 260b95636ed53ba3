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

	"github.com/nao1215/linkaudit/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "linkaudit.db"

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 20

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("record not found")

// ResultDB stores extraction results and where they were saved.
type ResultDB struct {
	db     *sql.DB
	dbPath string

	// now returns the current time. Replaced in tests.
	now func() time.Time
}

// Options configures ResultDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ResultDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

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

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

func (rdb *ResultDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS extractions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url TEXT NOT NULL,
		domain TEXT NOT NULL,
		document_count INTEGER NOT NULL DEFAULT 0,
		video_count INTEGER NOT NULL DEFAULT 0,
		other_count INTEGER NOT NULL DEFAULT 0,
		total_count INTEGER NOT NULL DEFAULT 0,
		correlation_id TEXT,
		location TEXT,
		created_at TEXT NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extractions_domain ON extractions(domain);
	CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Record is a stored extraction without its links.
type Record struct {
	ID            int64     `json:"id"`
	SourceURL     string    `json:"source_url"`
	Domain        string    `json:"domain"`
	DocumentCount int       `json:"document_count"`
	VideoCount    int       `json:"video_count"`
	OtherCount    int       `json:"other_count"`
	TotalCount    int       `json:"total_count"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Location      string    `json:"location,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Save records result and the location it was written to, and returns the
// new record ID. It satisfies storage.Recorder.
func (rdb *ResultDB) Save(ctx context.Context, result *model.ExtractionResult, location string) (int64, error) {
	if result == nil {
		return 0, errors.New("result is nil")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	var correlationID string
	if result.Metadata != nil {
		correlationID = result.Metadata.CorrelationID.String()
	}

	s := result.Summary()
	query := `
	INSERT INTO extractions (source_url, domain, document_count, video_count, other_count,
		total_count, correlation_id, location, created_at, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := rdb.db.ExecContext(ctx, query,
		result.SourceURL,
		s.SourceDomain,
		s.DocumentCount,
		s.VideoCount,
		s.OtherCount,
		s.TotalLinks,
		correlationID,
		location,
		rdb.now().UTC().Format(time.RFC3339Nano),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert extraction: %w", err)
	}

	return res.LastInsertId()
}

// List returns the most recent records, newest first.
func (rdb *ResultDB) List(ctx context.Context, limit int) ([]Record, error) {
	return rdb.list(ctx, "", limit)
}

// ListByDomain returns the most recent records of one domain, newest first.
// A leading "www." in domain is ignored.
func (rdb *ResultDB) ListByDomain(ctx context.Context, domain string, limit int) ([]Record, error) {
	return rdb.list(ctx, model.SourceDomain("//"+domain), limit)
}

func (rdb *ResultDB) list(ctx context.Context, domain string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
	SELECT id, source_url, domain, document_count, video_count, other_count,
		total_count, correlation_id, location, created_at
	FROM extractions
	`
	args := make([]any, 0, 2)
	if domain != "" {
		query += " WHERE domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var correlationID, location sql.NullString
		var createdAt string

		if err := rows.Scan(
			&r.ID,
			&r.SourceURL,
			&r.Domain,
			&r.DocumentCount,
			&r.VideoCount,
			&r.OtherCount,
			&r.TotalCount,
			&correlationID,
			&location,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}

		r.CorrelationID = correlationID.String
		r.Location = location.String
		r.CreatedAt = parseTimestamp(createdAt)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Get returns the full result stored under id.
func (rdb *ResultDB) Get(ctx context.Context, id int64) (*model.ExtractionResult, error) {
	var resultJSON string
	err := rdb.db.QueryRowContext(ctx, "SELECT result_json FROM extractions WHERE id = ?", id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return &result, nil
}

// Domains returns every recorded domain in alphabetical order.
func (rdb *ResultDB) Domains(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, "SELECT DISTINCT domain FROM extractions ORDER BY domain")
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
