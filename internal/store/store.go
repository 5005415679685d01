// Package store persists consensus variant records, amplicon coverage and
// the run log in a DuckDB database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// ErrUnavailable marks failures of the database itself, as opposed to bad
// input. Callers retry the whole unit of work on it.
var ErrUnavailable = errors.New("variant store unavailable")

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// Options configures the database. Zero values leave DuckDB defaults.
type Options struct {
	Path        string `envconfig:"STORE_PATH"`
	Threads     int    `envconfig:"STORE_THREADS"`
	MemoryLimit string `envconfig:"STORE_MEMORY_LIMIT"`
}

// FromEnv overrides o from VIBE_TIER_STORE_PATH, VIBE_TIER_STORE_THREADS and
// VIBE_TIER_STORE_MEMORY_LIMIT where set.
func (o *Options) FromEnv() error {
	if err := envconfig.Process("vibe_tier", o); err != nil {
		return fmt.Errorf("store options from environment: %w", err)
	}
	return nil
}

// DSN returns the DuckDB connection string.
func (o Options) DSN() string {
	q := url.Values{}
	if o.Threads > 0 {
		q.Set("threads", strconv.Itoa(o.Threads))
	}
	if o.MemoryLimit != "" {
		q.Set("memory_limit", o.MemoryLimit)
	}
	if len(q) == 0 {
		return o.Path
	}
	return o.Path + "?" + q.Encode()
}

// Store manages the DuckDB database. Use Session for per-worker access.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a store at path. Use an empty string for an
// in-memory database.
func Open(path string) (*Store, error) {
	return OpenWithOptions(Options{Path: path})
}

// OpenWithOptions opens or creates a store configured by opts.
func OpenWithOptions(opts Options) (*Store, error) {
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", opts.DSN())
	if err != nil {
		return nil, unavailable("open duckdb", err)
	}

	s := &Store{db: db, path: opts.Path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, unavailable("ensure schema", err)
	}
	return s, nil
}

// SetLogger sets the logger for store operations.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Path returns the database path, "" for in-memory.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Session is a dedicated connection for one worker. It is not safe for
// concurrent use.
type Session struct {
	conn   *sql.Conn
	logger *zap.Logger
}

// Session acquires a dedicated connection.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, unavailable("acquire connection", err)
	}
	return &Session{conn: conn, logger: s.logger}, nil
}

// Close returns the connection to the pool.
func (ss *Session) Close() error {
	return ss.conn.Close()
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS variants (
			chrom VARCHAR,
			pos BIGINT,
			start_pos BIGINT,
			end_pos BIGINT,
			ref VARCHAR,
			alt VARCHAR,
			sample VARCHAR,
			library_name VARCHAR,
			run_id VARCHAR,
			reference_genome VARCHAR,
			callers VARCHAR,
			max_som_aaf DOUBLE,
			min_depth BIGINT,
			max_depth BIGINT,
			gene VARCHAR,
			aa_change VARCHAR,
			severity VARCHAR,
			cosmic_ids VARCHAR,
			clinvar_pathogenic VARCHAR,
			max_aaf_all DOUBLE,
			amplicons VARCHAR,
			tier VARCHAR,
			outcome VARCHAR,
			payload VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS coverage (
			sample VARCHAR,
			library_name VARCHAR,
			run_id VARCHAR,
			amplicon VARCHAR,
			program VARCHAR,
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			num_reads BIGINT,
			mean_coverage DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR,
			started TIMESTAMP,
			finished TIMESTAMP,
			succeeded BIGINT,
			failed BIGINT
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}
