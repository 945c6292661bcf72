package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/riskscan/internal/model"
)

// FileName is the database file created inside the history directory.
const FileName = "riskscan.db"

// timestampLayout has a fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB provides SQLite-based storage for analysis reports.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
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

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
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
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

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

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id TEXT NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		input_type TEXT NOT NULL,
		mode TEXT NOT NULL,
		input_hash TEXT NOT NULL,
		primary_url TEXT,
		risk_score INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_hash ON analyses(input_hash);
	CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Entry is the summary of one stored analysis.
type Entry struct {
	ID         int64
	ReportID   string
	Timestamp  time.Time
	InputType  string
	Mode       string
	InputHash  string
	PrimaryURL string
	RiskScore  int
	Verdict    string
}

// Fingerprint returns the hex SHA3-256 of text.
func Fingerprint(text string) string {
	sum := sha3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Save stores report and returns its row ID.
func (h *HistoryDB) Save(ctx context.Context, report *model.Report) (int64, error) {
	if report == nil {
		return 0, errors.New("report is nil")
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	text := report.MaskedText
	if report.Input != nil {
		text = report.Input.RawText
	}

	query := `
	INSERT INTO analyses (report_id, timestamp, input_type, mode, input_hash, primary_url, risk_score, verdict, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := h.db.ExecContext(ctx, query,
		report.ID.String(),
		report.AnalyzedAt.UTC().Format(timestampLayout),
		string(report.InputType),
		report.Mode,
		Fingerprint(text),
		report.PrimaryURL,
		report.Result.RiskScore,
		report.Result.Verdict,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}
	return result.LastInsertId()
}

const entryColumns = `id, report_id, timestamp, input_type, mode, input_hash, primary_url, risk_score, verdict`

// List returns the newest entries first. A non-positive limit returns all.
func (h *HistoryDB) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM analyses ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return h.queryEntries(ctx, query, args...)
}

// FindByFingerprint returns earlier analyses of the same normalized text.
func (h *HistoryDB) FindByFingerprint(ctx context.Context, hash string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM analyses WHERE input_hash = ? ORDER BY timestamp DESC, id DESC`
	return h.queryEntries(ctx, query, hash)
}

func (h *HistoryDB) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e          Entry
			timestamp  string
			primaryURL sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ReportID, &timestamp, &e.InputType, &e.Mode,
			&e.InputHash, &primaryURL, &e.RiskScore, &e.Verdict); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		e.Timestamp = parseTimestamp(timestamp)
		e.PrimaryURL = primaryURL.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get retrieves a stored report by row ID. It returns nil, nil when absent.
func (h *HistoryDB) Get(ctx context.Context, id int64) (*model.Report, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM analyses WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
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
