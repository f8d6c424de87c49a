package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"agentrpg/internal/engine"
)

type AgentRepo struct {
	db dbtx
}

func NewAgentRepo(db *sql.DB) *AgentRepo {
	return &AgentRepo{db: db}
}

const agentColumns = `id, name, class, level, xp, xp_to_next,
	stat_intelligence, stat_creativity, stat_reliability, stat_speed, stat_leadership,
	skills, history, last_active`

func scanAgent(row interface{ Scan(...any) error }) (*engine.Agent, error) {
	var a engine.Agent
	var class string
	var skillsJSON, historyJSON sql.NullString
	var lastActive sql.NullTime

	err := row.Scan(&a.ID, &a.Name, &class, &a.Level, &a.XP, &a.XPToNext,
		&a.Stats.Intelligence, &a.Stats.Creativity, &a.Stats.Reliability, &a.Stats.Speed, &a.Stats.Leadership,
		&skillsJSON, &historyJSON, &lastActive)
	if err != nil {
		return nil, err
	}

	a.Class = engine.Class(class)
	if skillsJSON.Valid && skillsJSON.String != "" {
		if err := json.Unmarshal([]byte(skillsJSON.String), &a.Skills); err != nil {
			return nil, fmt.Errorf("unmarshal skills: %w", err)
		}
	}
	if historyJSON.Valid && historyJSON.String != "" {
		if err := json.Unmarshal([]byte(historyJSON.String), &a.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	if lastActive.Valid {
		a.LastActive = lastActive.Time
	}
	return &a, nil
}

func (r *AgentRepo) Get(ctx context.Context, id int64) (*engine.Agent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id)
	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("agent get: %w", err)
	}
	return a, nil
}

// GetByName matches an agent name case-insensitively.
func (r *AgentRepo) GetByName(ctx context.Context, name string) (*engine.Agent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE name = ? COLLATE NOCASE`, name)
	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("agent get by name: %w", err)
	}
	return a, nil
}

func (r *AgentRepo) ListAll(ctx context.Context) ([]*engine.Agent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("agent list: %w", err)
	}
	defer rows.Close()

	var out []*engine.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("agent scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func marshalAgentBlobs(a *engine.Agent) (skills, history *string, err error) {
	if len(a.Skills) > 0 {
		data, err := json.Marshal(a.Skills)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal skills: %w", err)
		}
		s := string(data)
		skills = &s
	}
	if len(a.History) > 0 {
		data, err := json.Marshal(a.History)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal history: %w", err)
		}
		h := string(data)
		history = &h
	}
	return skills, history, nil
}

func (r *AgentRepo) Insert(ctx context.Context, a *engine.Agent) (int64, error) {
	skills, history, err := marshalAgentBlobs(a)
	if err != nil {
		return 0, err
	}

	var lastActive *time.Time
	if !a.LastActive.IsZero() {
		lastActive = &a.LastActive
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO agents (
			name, class, level, xp, xp_to_next,
			stat_intelligence, stat_creativity, stat_reliability, stat_speed, stat_leadership,
			skills, history, last_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Name, string(a.Class), a.Level, a.XP, a.XPToNext,
		a.Stats.Intelligence, a.Stats.Creativity, a.Stats.Reliability, a.Stats.Speed, a.Stats.Leadership,
		skills, history, lastActive)
	if err != nil {
		return 0, fmt.Errorf("agent insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("agent last insert id: %w", err)
	}
	return id, nil
}

// Save writes an agent snapshot back over its row.
func (r *AgentRepo) Save(ctx context.Context, a *engine.Agent) error {
	skills, history, err := marshalAgentBlobs(a)
	if err != nil {
		return err
	}

	var lastActive *time.Time
	if !a.LastActive.IsZero() {
		lastActive = &a.LastActive
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE agents
		SET name = ?, class = ?, level = ?, xp = ?, xp_to_next = ?,
			stat_intelligence = ?, stat_creativity = ?, stat_reliability = ?, stat_speed = ?, stat_leadership = ?,
			skills = ?, history = ?, last_active = ?
		WHERE id = ?
	`, a.Name, string(a.Class), a.Level, a.XP, a.XPToNext,
		a.Stats.Intelligence, a.Stats.Creativity, a.Stats.Reliability, a.Stats.Speed, a.Stats.Leadership,
		skills, history, lastActive, a.ID)
	if err != nil {
		return fmt.Errorf("agent save: %w", err)
	}
	return nil
}

func (r *AgentRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("agent count: %w", err)
	}
	return n, nil
}
