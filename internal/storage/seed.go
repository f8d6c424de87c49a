package storage

import (
	"context"
	"fmt"

	"agentrpg/internal/engine"
)

// Seed inserts the starter roster and quest board when the database is
// empty. Running it against a populated database is a no-op.
func Seed(ctx context.Context, s *Store) error {
	n, err := s.Agents.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	baseStats := engine.Stats{Intelligence: 10, Creativity: 10, Reliability: 10, Speed: 10, Leadership: 10}
	roster := []*engine.Agent{
		{Name: "Nova", Class: engine.ClassCoder, Level: 1, XPToNext: engine.XPRequiredForLevel(1), Stats: baseStats},
		{Name: "Sage", Class: engine.ClassResearcher, Level: 1, XPToNext: engine.XPRequiredForLevel(1), Stats: baseStats},
		{Name: "Iris", Class: engine.ClassDesigner, Level: 1, XPToNext: engine.XPRequiredForLevel(1), Stats: baseStats},
		{Name: "Atlas", Class: engine.ClassStrategist, Level: 1, XPToNext: engine.XPRequiredForLevel(1), Stats: baseStats},
		{Name: "Echo", Class: engine.ClassSupport, Level: 1, XPToNext: engine.XPRequiredForLevel(1), Stats: baseStats},
	}

	ids := make([]int64, 0, len(roster))
	for _, a := range roster {
		id, err := s.Agents.Insert(ctx, a)
		if err != nil {
			return fmt.Errorf("seed agent %s: %w", a.Name, err)
		}
		ids = append(ids, id)
	}

	quests := []*engine.Quest{
		{
			Title:          "Onboarding Run",
			Description:    "Walk the new roster through the tooling.",
			Difficulty:     engine.DifficultyTutorial,
			Category:       engine.CategoryOperations,
			Reward:         engine.Reward{XP: 60, Gold: 10},
			AssignedAgents: []int64{ids[0], ids[4]},
		},
		{
			Title:            "Ship the Search Index",
			Description:      "Build and deploy the new search pipeline.",
			Difficulty:       engine.DifficultyMedium,
			Category:         engine.CategoryDevelopment,
			Reward:           engine.Reward{XP: 150, Gold: 40},
			BonusReward:      &engine.Reward{XP: 60},
			AssignedAgents:   []int64{ids[0], ids[1]},
			TimeLimitMinutes: 240,
			Objectives: []engine.Objective{
				{Description: "Design the schema", MaxProgress: 1},
				{Description: "Index the corpus", MaxProgress: 1},
				{Description: "Add fuzzy matching", MaxProgress: 1, Optional: true},
				{Description: "Write the runbook", MaxProgress: 1, Optional: true},
			},
		},
		{
			Title:          "Rebrand the Dashboard",
			Description:    "New identity across every surface.",
			Difficulty:     engine.DifficultyHard,
			Category:       engine.CategoryCreative,
			Reward:         engine.Reward{XP: 250, Gold: 80},
			AssignedAgents: []int64{ids[2], ids[3]},
		},
	}
	for _, q := range quests {
		if _, err := s.Quests.Insert(ctx, q); err != nil {
			return fmt.Errorf("seed quest %q: %w", q.Title, err)
		}
	}
	return nil
}
