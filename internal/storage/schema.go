package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			class TEXT NOT NULL,
			level INTEGER DEFAULT 1,
			xp INTEGER DEFAULT 0,
			xp_to_next INTEGER NOT NULL,

			stat_intelligence INTEGER DEFAULT 10,
			stat_creativity INTEGER DEFAULT 10,
			stat_reliability INTEGER DEFAULT 10,
			stat_speed INTEGER DEFAULT 10,
			stat_leadership INTEGER DEFAULT 10,

			skills TEXT,
			history TEXT,
			last_active DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS quests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT DEFAULT 'open',

			difficulty INTEGER NOT NULL,
			category TEXT NOT NULL,
			reward_xp INTEGER NOT NULL,
			reward_gold INTEGER DEFAULT 0,
			reward_items TEXT,
			bonus_xp INTEGER,

			assigned_agents TEXT,
			time_limit_minutes INTEGER DEFAULT 0,
			objectives TEXT,

			completed_at DATETIME
		);`,
		// Notices surfaced by past CLI runs, so dismissal survives the
		// in-memory manager's lifetime.
		`CREATE TABLE IF NOT EXISTS notices (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT,
			icon TEXT,
			priority TEXT NOT NULL,
			duration_ms INTEGER DEFAULT 0,
			created_at DATETIME NOT NULL,
			dismissed INTEGER DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quests_status ON quests(status);`,
		`CREATE INDEX IF NOT EXISTS idx_notices_dismissed ON notices(dismissed);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
