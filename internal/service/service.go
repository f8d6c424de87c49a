// Package service orchestrates the progression manager against the
// roster store: it loads agents and quests, runs the manager, and writes
// the resulting agents, quest transitions, and notices back.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agentrpg/internal/engine"
	"agentrpg/internal/progression"
	"agentrpg/internal/storage"
)

type Service struct {
	store *storage.Store
	mgr   *progression.Manager
}

func New(store *storage.Store, mgr *progression.Manager) *Service {
	return &Service{store: store, mgr: mgr}
}

func (s *Service) Store() *storage.Store         { return s.store }
func (s *Service) Manager() *progression.Manager { return s.mgr }
func (s *Service) Agents() *storage.AgentRepo    { return s.store.Agents }
func (s *Service) Quests() *storage.QuestRepo    { return s.store.Quests }
func (s *Service) Notices() *storage.NoticeRepo  { return s.store.Notices }

// Roster lists every agent.
func (s *Service) Roster(ctx context.Context) ([]*engine.Agent, error) {
	return s.store.Agents.ListAll(ctx)
}

// Agent resolves an agent by name, case-insensitively.
func (s *Service) Agent(ctx context.Context, name string) (*engine.Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("agent name is required")
	}
	a, err := s.store.Agents.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("no agent named %q", name)
	}
	return a, nil
}

// AwardXP grants XP to the named agent and persists the updated agent
// plus any notifications the grant produced.
func (s *Service) AwardXP(ctx context.Context, name string, amount int, source string) (*progression.GainResult, error) {
	a, err := s.Agent(ctx, name)
	if err != nil {
		return nil, err
	}
	if source == "" {
		source = "Manual award"
	}

	res, err := s.mgr.ProcessXPGain(a, amount, source)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx *storage.Store) error {
		if err := tx.Agents.Save(ctx, res.Agent); err != nil {
			return err
		}
		for _, n := range res.Notifications {
			if err := tx.Notices.Insert(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CompleteQuest runs a quest completion for its assigned team, marks the
// quest done, and persists every touched agent and notification.
func (s *Service) CompleteQuest(ctx context.Context, questID int64, outcome engine.QuestOutcome) (*progression.QuestResult, error) {
	q, err := s.store.Quests.Get(ctx, questID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("no quest with id %d", questID)
	}
	if q.Status == "done" {
		return nil, fmt.Errorf("quest %d is already done", questID)
	}

	var team []*engine.Agent
	for _, id := range q.AssignedAgents {
		a, err := s.store.Agents.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, fmt.Errorf("quest %d assigns unknown agent %d", questID, id)
		}
		team = append(team, a)
	}
	if len(team) == 0 {
		return nil, fmt.Errorf("quest %d has no assigned agents", questID)
	}

	res, err := s.mgr.ProcessQuestCompletion(q, team, outcome)
	if err != nil {
		return nil, err
	}

	// Agent saves, the status flip, and the notices land atomically; a
	// failure mid-write must not leave XP banked against an open quest.
	err = s.store.WithTx(ctx, func(tx *storage.Store) error {
		for _, a := range res.Agents {
			if err := tx.Agents.Save(ctx, a); err != nil {
				return err
			}
		}
		if err := tx.Quests.MarkDone(ctx, q.ID, s.mgr.Now()); err != nil {
			return err
		}
		for _, n := range res.Notifications {
			if err := tx.Notices.Insert(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DismissNotice dismisses the persisted notice and, when it is still in
// the manager's active list, dismisses it there too.
func (s *Service) DismissNotice(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Notices.Dismiss(ctx, id)
	if err != nil {
		return false, err
	}
	s.mgr.DismissNotification(id)
	return ok, nil
}

// ClearDismissedNotices removes dismissed notices from the store and the
// manager's active list and returns how many rows went away.
func (s *Service) ClearDismissedNotices(ctx context.Context) (int64, error) {
	n, err := s.store.Notices.ClearDismissed(ctx)
	if err != nil {
		return 0, err
	}
	s.mgr.ClearDismissed()
	return n, nil
}
