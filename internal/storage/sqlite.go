package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS slots (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	writer     TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// DefaultPollInterval is how often a SQLite watch checks for changes.
const DefaultPollInterval = 500 * time.Millisecond

type sqliteConfig struct {
	quota       int
	interval    time.Duration
	busyTimeout int
	logger      *slog.Logger
}

// SQLiteOption configures OpenSQLite.
type SQLiteOption func(*sqliteConfig)

// WithQuota limits the total size of all entries in bytes. 0 means no limit.
func WithQuota(bytes int) SQLiteOption { return func(c *sqliteConfig) { c.quota = bytes } }

// WithPollInterval sets how often watches poll for changes.
func WithPollInterval(d time.Duration) SQLiteOption {
	return func(c *sqliteConfig) { c.interval = d }
}

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 5000.
func WithBusyTimeout(ms int) SQLiteOption { return func(c *sqliteConfig) { c.busyTimeout = ms } }

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) SQLiteOption { return func(c *sqliteConfig) { c.logger = l } }

// SQLiteSlot is a Slot stored in a SQLite database file. Every process that
// opens the same file is a slot of the same origin.
//
// Changes by other connections are detected by polling PRAGMA data_version,
// which only moves when a different connection commits. The slot keeps a
// single connection open so its own writes never look like foreign ones.
type SQLiteSlot struct {
	db     *sql.DB
	writer string
	cfg    sqliteConfig
	closed atomic.Bool

	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

var _ Slot = (*SQLiteSlot)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteSlot, error) {
	cfg := sqliteConfig{
		interval:    DefaultPollInterval,
		busyTimeout: 5000,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.interval <= 0 {
		cfg.interval = DefaultPollInterval
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: schema: %w", err)
	}

	s := &SQLiteSlot{db: db, writer: uuid.NewString(), cfg: cfg}
	cfg.logger.Debug("storage: sqlite slot opened", "path", path, "writer", s.writer)
	return s, nil
}

// Get implements Slot.
func (s *SQLiteSlot) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements Slot. The quota check and the write run in one IMMEDIATE
// transaction, so no other process can commit between them.
func (s *SQLiteSlot) Set(ctx context.Context, key, value string) (err error) {
	if s.closed.Load() {
		return ErrClosed
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("storage: set %q: %w", key, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("storage: set %q: begin: %w", key, err)
	}
	defer func() {
		if err != nil {
			conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if s.cfg.quota > 0 {
		var others int
		err = conn.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0) FROM slots WHERE key <> ?",
			key).Scan(&others)
		if err != nil {
			return fmt.Errorf("storage: usage: %w", err)
		}
		if others+entrySize(key, value) > s.cfg.quota {
			return quotaError(key, entrySize(key, value), s.cfg.quota)
		}
	}

	_, err = conn.ExecContext(ctx, `
		INSERT INTO slots (key, value, writer, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			writer = excluded.writer,
			updated_at = excluded.updated_at
		WHERE slots.value <> excluded.value`,
		key, value, s.writer, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("storage: set %q: %w", key, err)
	}

	if _, err = conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("storage: set %q: commit: %w", key, err)
	}
	return nil
}

// Watch implements Slot. fn runs on the watch goroutine. A foreign write to
// any key of the database triggers fn, so callers re-read and compare.
func (s *SQLiteSlot) Watch(ctx context.Context, key string, fn func()) (func(), error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	seed, err := s.dataVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: watch %q: %w", key, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()

	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		s.poll(ctx, key, seed, fn)
	}()

	stop := func() {
		cancel()
		<-done
	}
	return stop, nil
}

func (s *SQLiteSlot) poll(ctx context.Context, key string, version int64, fn func()) {
	log := s.cfg.logger.With("key", key)
	ticker := time.NewTicker(s.cfg.interval)
	defer ticker.Stop()

	log.Debug("storage: watch started", "interval", s.cfg.interval)
	for {
		select {
		case <-ctx.Done():
			log.Debug("storage: watch stopped")
			return
		case <-ticker.C:
			cur, err := s.dataVersion(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("storage: version check failed", "error", err)
				}
				continue
			}
			if cur == version {
				continue
			}
			log.Debug("storage: change detected", "old_version", version, "new_version", cur)
			version = cur
			fn()
		}
	}
}

func (s *SQLiteSlot) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
	return v, err
}

// Writer implements Slot.
func (s *SQLiteSlot) Writer() string { return s.writer }

// Close implements Slot.
func (s *SQLiteSlot) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	s.wg.Wait()
	return s.db.Close()
}
