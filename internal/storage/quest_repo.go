package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"agentrpg/internal/engine"
)

type QuestRepo struct {
	db dbtx
}

func NewQuestRepo(db *sql.DB) *QuestRepo {
	return &QuestRepo{db: db}
}

const questColumns = `id, title, description, status, difficulty, category,
	reward_xp, reward_gold, reward_items, bonus_xp,
	assigned_agents, time_limit_minutes, objectives`

func scanQuest(row interface{ Scan(...any) error }) (*engine.Quest, error) {
	var q engine.Quest
	var description sql.NullString
	var category string
	var itemsJSON, assignedJSON, objectivesJSON sql.NullString
	var bonusXP sql.NullInt64

	err := row.Scan(&q.ID, &q.Title, &description, &q.Status, &q.Difficulty, &category,
		&q.Reward.XP, &q.Reward.Gold, &itemsJSON, &bonusXP,
		&assignedJSON, &q.TimeLimitMinutes, &objectivesJSON)
	if err != nil {
		return nil, err
	}

	q.Description = description.String
	q.Category = engine.QuestCategory(category)
	if itemsJSON.Valid && itemsJSON.String != "" {
		if err := json.Unmarshal([]byte(itemsJSON.String), &q.Reward.Items); err != nil {
			return nil, fmt.Errorf("unmarshal reward items: %w", err)
		}
	}
	if bonusXP.Valid {
		q.BonusReward = &engine.Reward{XP: int(bonusXP.Int64)}
	}
	if assignedJSON.Valid && assignedJSON.String != "" {
		if err := json.Unmarshal([]byte(assignedJSON.String), &q.AssignedAgents); err != nil {
			return nil, fmt.Errorf("unmarshal assigned agents: %w", err)
		}
	}
	if objectivesJSON.Valid && objectivesJSON.String != "" {
		if err := json.Unmarshal([]byte(objectivesJSON.String), &q.Objectives); err != nil {
			return nil, fmt.Errorf("unmarshal objectives: %w", err)
		}
	}
	return &q, nil
}

func (r *QuestRepo) Get(ctx context.Context, id int64) (*engine.Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("quest get: %w", err)
	}
	return q, nil
}

func (r *QuestRepo) ListAll(ctx context.Context) ([]*engine.Quest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+questColumns+` FROM quests ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []*engine.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("quest scan: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuestRepo) ListByStatus(ctx context.Context, status string) ([]*engine.Quest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+questColumns+` FROM quests WHERE status = ? ORDER BY id ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("quest list by status: %w", err)
	}
	defer rows.Close()

	var out []*engine.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("quest scan: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuestRepo) Insert(ctx context.Context, q *engine.Quest) (int64, error) {
	var itemsJSON, assignedJSON, objectivesJSON *string
	if len(q.Reward.Items) > 0 {
		data, err := json.Marshal(q.Reward.Items)
		if err != nil {
			return 0, fmt.Errorf("marshal reward items: %w", err)
		}
		s := string(data)
		itemsJSON = &s
	}
	if len(q.AssignedAgents) > 0 {
		data, err := json.Marshal(q.AssignedAgents)
		if err != nil {
			return 0, fmt.Errorf("marshal assigned agents: %w", err)
		}
		s := string(data)
		assignedJSON = &s
	}
	if len(q.Objectives) > 0 {
		data, err := json.Marshal(q.Objectives)
		if err != nil {
			return 0, fmt.Errorf("marshal objectives: %w", err)
		}
		s := string(data)
		objectivesJSON = &s
	}

	var bonusXP *int
	if q.BonusReward != nil {
		bonusXP = &q.BonusReward.XP
	}

	status := q.Status
	if status == "" {
		status = "open"
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quests (
			title, description, status, difficulty, category,
			reward_xp, reward_gold, reward_items, bonus_xp,
			assigned_agents, time_limit_minutes, objectives
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.Title, q.Description, status, int(q.Difficulty), string(q.Category),
		q.Reward.XP, q.Reward.Gold, itemsJSON, bonusXP,
		assignedJSON, q.TimeLimitMinutes, objectivesJSON)
	if err != nil {
		return 0, fmt.Errorf("quest insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("quest last insert id: %w", err)
	}
	return id, nil
}

// MarkDone flips a quest to done and stamps the completion time.
func (r *QuestRepo) MarkDone(ctx context.Context, id int64, completedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE quests SET status = 'done', completed_at = ? WHERE id = ?
	`, completedAt, id)
	if err != nil {
		return fmt.Errorf("quest mark done: %w", err)
	}
	return nil
}

func (r *QuestRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("quest count: %w", err)
	}
	return n, nil
}
