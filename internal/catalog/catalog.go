// Package catalog keeps a sqlite record of dataset preparation runs and the
// sample files each run produced.
package catalog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/wifiprep/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run describes one prepare invocation.
type Run struct {
	ID          string
	CreatedAt   time.Time
	InputPath   string
	Format      string
	OutputDir   string
	ParamsPath  string
	Samples     int
	Coerced     int
	ToolVersion string
}

// SampleRecord is one written sample file.
type SampleRecord struct {
	Index     int
	Label     string
	Path      string
	BSSID     string
	SSID      string
	Timestamp string
}

// Catalog wraps the sqlite database.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog at path and applies pending
// migrations.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure catalog: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	// m is not closed: closing it would close the shared connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Version reports the applied schema version.
func (c *Catalog) Version() (uint, error) {
	var v uint
	err := c.db.QueryRow(`SELECT version FROM schema_migrations LIMIT 1`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// RecordRun stores a run and its samples in one transaction. A missing ID
// or creation time is filled in; the stored run is returned.
func (c *Catalog) RecordRun(run Run, samples []SampleRecord) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	tx, err := c.db.Begin()
	if err != nil {
		return run, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, created_at_ns, input_path, input_format, output_dir, params_path, sample_count, coerced_count, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.InputPath, run.Format, run.OutputDir, run.ParamsPath, run.Samples, run.Coerced, run.ToolVersion,
	)
	if err != nil {
		return run, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO samples (run_id, sample_index, label, path, bssid, ssid, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return run, fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(run.ID, s.Index, s.Label, s.Path, s.BSSID, s.SSID, s.Timestamp); err != nil {
			return run, fmt.Errorf("failed to insert sample %d: %w", s.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("failed to commit run: %w", err)
	}
	monitoring.Debugf("catalog: recorded run %s with %d samples", run.ID, len(samples))
	return run, nil
}

// Runs lists recorded runs, newest first.
func (c *Catalog) Runs() ([]Run, error) {
	rows, err := c.db.Query(`
		SELECT run_id, created_at_ns, input_path, input_format, output_dir, params_path, sample_count, coerced_count, tool_version
		FROM runs
		ORDER BY created_at_ns DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r  Run
			ns int64
		)
		if err := rows.Scan(&r.ID, &ns, &r.InputPath, &r.Format, &r.OutputDir, &r.ParamsPath, &r.Samples, &r.Coerced, &r.ToolVersion); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, ns).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Samples lists the samples of one run in index order.
func (c *Catalog) Samples(runID string) ([]SampleRecord, error) {
	rows, err := c.db.Query(`
		SELECT sample_index, label, path, bssid, ssid, captured_at
		FROM samples
		WHERE run_id = ?
		ORDER BY sample_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []SampleRecord
	for rows.Next() {
		var s SampleRecord
		if err := rows.Scan(&s.Index, &s.Label, &s.Path, &s.BSSID, &s.SSID, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LabelCounts returns how many samples each label holds across all runs.
func (c *Catalog) LabelCounts() (map[string]int, error) {
	rows, err := c.db.Query(`SELECT label, COUNT(*) FROM samples GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Debugf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool {
	return monitoring.Verbose()
}
