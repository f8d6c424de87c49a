// Package storage persists the agent roster, quest board, and surfaced
// notices in a local SQLite database. The progression engine itself is
// memory-resident; storage only feeds it snapshots and records what the
// CLI surfaced.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultDBPath returns the default roster DB location.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".agentrpg.db"), nil
}

// Open opens (creating if missing) the SQLite database at path and
// applies migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// dbtx is the query surface shared by *sql.DB and *sql.Tx, so every repo
// works unchanged inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the repositories over one database handle.
type Store struct {
	DB      *sql.DB
	Agents  *AgentRepo
	Quests  *QuestRepo
	Notices *NoticeRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:      db,
		Agents:  NewAgentRepo(db),
		Quests:  NewQuestRepo(db),
		Notices: NewNoticeRepo(db),
	}
}

// WithTx runs fn against a transaction-scoped view of the store. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// multi-write operation lands entirely or not at all.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	sqltx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txs := &Store{
		DB:      s.DB,
		Agents:  &AgentRepo{db: sqltx},
		Quests:  &QuestRepo{db: sqltx},
		Notices: &NoticeRepo{db: sqltx},
	}

	if err := fn(txs); err != nil {
		_ = sqltx.Rollback()
		return err
	}
	if err := sqltx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
