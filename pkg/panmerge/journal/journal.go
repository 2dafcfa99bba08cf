// Package journal records merge runs in SQLite for after-the-fact
// inspection. It is a side channel: the pipeline never depends on it.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/randalmurphal/panmerge/pkg/panmerge/merge"
)

// Sentinel errors.
var (
	// ErrClosed indicates an operation on a closed journal.
	ErrClosed = errors.New("journal closed")

	// ErrNotFound indicates the requested run is not in the journal.
	ErrNotFound = errors.New("run not found")
)

// Statuses recorded in the journal. Runs start as running and finish
// as succeeded or failed; aborted runs keep the running status.
// Genomes are merged or failed.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusMerged    = "merged"
	StatusFailed    = "failed"
)

// Journal persists run and per-genome outcomes to SQLite.
// It is suitable for single-process production use.
type Journal struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
}

var _ merge.RunJournal = (*Journal)(nil)

// Open creates or opens a journal database.
// The path should be a file path (e.g., "./runs.db") or ":memory:" for testing.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One writer at a time; also keeps :memory: databases on a single
	// connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			total INTEGER NOT NULL,
			skipped INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			PRIMARY KEY (run_id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS genomes (
			run_id TEXT NOT NULL,
			sample TEXT NOT NULL,
			source TEXT NOT NULL,
			records INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			duration_ms REAL NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			finished_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create genomes table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_genomes_run_id
		ON genomes(run_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Journal{db: db}, nil
}

// BeginRun implements merge.RunJournal.
func (j *Journal) BeginRun(runID string, total int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	_, err := j.db.Exec(`
		INSERT INTO runs (run_id, started_at, total, status)
		VALUES (?, ?, ?, ?)
	`, runID, now(), total, StatusRunning)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordGenome implements merge.RunJournal.
func (j *Journal) RecordGenome(runID string, res merge.Result, procErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	status, errText := StatusMerged, ""
	if procErr != nil {
		status, errText = StatusFailed, procErr.Error()
	}

	_, err := j.db.Exec(`
		INSERT INTO genomes (run_id, sample, source, records, bytes, duration_ms, status, error, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, res.Sample, res.Source, res.Records, res.Bytes,
		float64(res.Duration.Milliseconds()), status, errText, now())
	if err != nil {
		return fmt.Errorf("record genome: %w", err)
	}
	return nil
}

// FinishRun implements merge.RunJournal.
// Runs that abort on a fatal error are never finished and keep the
// "running" status.
func (j *Journal) FinishRun(runID string, sum merge.Summary) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	status := StatusSucceeded
	if sum.Failed > 0 {
		status = StatusFailed
	}

	_, err := j.db.Exec(`
		UPDATE runs
		SET finished_at = ?, skipped = ?, processed = ?, failed = ?, status = ?
		WHERE run_id = ?
	`, now(), sum.Skipped, sum.Processed, sum.Failed, status, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RunInfo is one row of the runs table.
type RunInfo struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time // zero until the run finished
	Total      int
	Skipped    int
	Processed  int
	Failed     int
	Status     string
}

// GenomeInfo is one row of the genomes table.
type GenomeInfo struct {
	RunID      string
	Sample     string
	Source     string
	Records    int
	Bytes      int64
	DurationMs float64
	Status     string
	Error      string
	FinishedAt time.Time
}

// Run returns the journal row for one run.
func (j *Journal) Run(runID string) (RunInfo, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var info RunInfo
	if j.closed {
		return info, ErrClosed
	}

	var started string
	var finished sql.NullString
	err := j.db.QueryRow(`
		SELECT run_id, started_at, finished_at, total, skipped, processed, failed, status
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&info.RunID, &started, &finished,
		&info.Total, &info.Skipped, &info.Processed, &info.Failed, &info.Status)

	if err == sql.ErrNoRows {
		return info, ErrNotFound
	}
	if err != nil {
		return info, fmt.Errorf("load run: %w", err)
	}

	info.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		info.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return info, nil
}

// Genomes returns the per-genome rows for one run, in recording order.
func (j *Journal) Genomes(runID string) ([]GenomeInfo, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil, ErrClosed
	}

	rows, err := j.db.Query(`
		SELECT run_id, sample, source, records, bytes, duration_ms, status, error, finished_at
		FROM genomes
		WHERE run_id = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list genomes: %w", err)
	}
	defer rows.Close()

	var infos []GenomeInfo
	for rows.Next() {
		var info GenomeInfo
		var finished string
		if err := rows.Scan(&info.RunID, &info.Sample, &info.Source,
			&info.Records, &info.Bytes, &info.DurationMs,
			&info.Status, &info.Error, &finished); err != nil {
			return nil, fmt.Errorf("scan genome row: %w", err)
		}
		info.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genomes: %w", err)
	}

	return infos, nil
}

// Close releases the database handle. Close is idempotent.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	j.closed = true
	return j.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
