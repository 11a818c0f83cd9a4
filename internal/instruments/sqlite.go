package instruments

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"TigerChart/internal/model"
)

// SQLiteStore persists the instrument list to a SQLite database so a restart
// does not force a refetch.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite instrument store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS instrument_list (
			position   INTEGER PRIMARY KEY,
			symbol     TEXT NOT NULL,
			name       TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS instrument_fetch (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			fetched_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT fetched_at FROM instrument_fetch WHERE id = 1`).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load fetch time: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT symbol, name FROM instrument_list ORDER BY position`)
	if err != nil {
		return Entry{}, false, fmt.Errorf("load instruments: %w", err)
	}
	defer rows.Close()

	entry := Entry{FetchedAt: time.Unix(fetchedAt, 0).UTC()}
	for rows.Next() {
		var inst model.Instrument
		if err := rows.Scan(&inst.Symbol, &inst.Name); err != nil {
			return Entry{}, false, fmt.Errorf("scan instrument: %w", err)
		}
		entry.Instruments = append(entry.Instruments, inst)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM instrument_list`); err != nil {
		return fmt.Errorf("clear instruments: %w", err)
	}
	for i, inst := range entry.Instruments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO instrument_list (position, symbol, name) VALUES (?,?,?)`,
			i, inst.Symbol, inst.Name,
		); err != nil {
			return fmt.Errorf("insert instrument %s: %w", inst.Symbol, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO instrument_fetch (id, fetched_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET fetched_at = excluded.fetched_at`,
		entry.FetchedAt.Unix(),
	); err != nil {
		return fmt.Errorf("save fetch time: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{`DELETE FROM instrument_list`, `DELETE FROM instrument_fetch`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("closing sqlite instrument store")
	return s.db.Close()
}
