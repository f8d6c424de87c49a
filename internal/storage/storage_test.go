package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"agentrpg/internal/engine"
	"agentrpg/internal/progression"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	db, err := Open(ctx, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(db)
}

func TestAgentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := &engine.Agent{
		Name:     "Nova",
		Class:    engine.ClassCoder,
		Level:    3,
		XP:       42,
		XPToNext: engine.XPRequiredForLevel(3),
		Stats:    engine.Stats{Intelligence: 12, Creativity: 11, Reliability: 10, Speed: 13, Leadership: 10},
		Skills:   []string{"Quick Learner", "Multitasker"},
		History: []engine.ActivityEntry{
			{Action: "Quest: Onboarding", Timestamp: time.Now().UTC().Truncate(time.Second), XPDelta: 60},
		},
		LastActive: time.Now().UTC().Truncate(time.Second),
	}

	id, err := s.Agents.Insert(ctx, in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Agents.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("agent %d not found", id)
	}
	if got.Name != in.Name || got.Class != in.Class || got.Level != in.Level || got.XP != in.XP {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "Quick Learner" {
		t.Fatalf("skills mismatch: %v", got.Skills)
	}
	if len(got.History) != 1 || got.History[0].XPDelta != 60 {
		t.Fatalf("history mismatch: %+v", got.History)
	}
	if got.Stats != in.Stats {
		t.Fatalf("stats mismatch: %+v vs %+v", got.Stats, in.Stats)
	}
}

func TestAgentSaveUpdatesRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Agents.Insert(ctx, &engine.Agent{
		Name: "Sage", Class: engine.ClassResearcher, Level: 1, XPToNext: engine.XPRequiredForLevel(1),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	a, err := s.Agents.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	res, err := engine.ApplyXP(a, 150, "promotion")
	if err != nil {
		t.Fatalf("ApplyXP: %v", err)
	}
	if err := s.Agents.Save(ctx, res.Agent); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := s.Agents.Get(ctx, id)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Level != 2 {
		t.Fatalf("level=%d, want 2 after save", again.Level)
	}
	if len(again.History) != 1 {
		t.Fatalf("history not persisted: %+v", again.History)
	}
}

func TestAgentGetByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Agents.Insert(ctx, &engine.Agent{Name: "Iris", Class: engine.ClassDesigner, Level: 1, XPToNext: 100}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Agents.GetByName(ctx, "iris")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got == nil || got.Name != "Iris" {
		t.Fatalf("case-insensitive lookup failed: %+v", got)
	}

	missing, err := s.Agents.GetByName(ctx, "nobody")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown name, got %+v", missing)
	}
}

func TestQuestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := &engine.Quest{
		Title:            "Ship it",
		Description:      "End to end",
		Difficulty:       engine.DifficultyHard,
		Category:         engine.CategoryDevelopment,
		Reward:           engine.Reward{XP: 200, Gold: 50, Items: []string{"gpu-hours"}},
		BonusReward:      &engine.Reward{XP: 80},
		AssignedAgents:   []int64{1, 2},
		TimeLimitMinutes: 120,
		Objectives: []engine.Objective{
			{Description: "main", MaxProgress: 3},
			{Description: "extra", MaxProgress: 1, Optional: true},
		},
	}

	id, err := s.Quests.Insert(ctx, in)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Quests.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("quest %d not found", id)
	}
	if got.Title != in.Title || got.Difficulty != in.Difficulty || got.Category != in.Category {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.BonusReward == nil || got.BonusReward.XP != 80 {
		t.Fatalf("bonus reward mismatch: %+v", got.BonusReward)
	}
	if !got.Assigned(2) || got.Assigned(3) {
		t.Fatalf("assignment mismatch: %v", got.AssignedAgents)
	}
	if got.OptionalObjectiveCount() != 1 {
		t.Fatalf("objectives mismatch: %+v", got.Objectives)
	}
	if got.Status != "open" {
		t.Fatalf("status=%q, want open default", got.Status)
	}

	if err := s.Quests.MarkDone(ctx, id, time.Now().UTC()); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	done, err := s.Quests.Get(ctx, id)
	if err != nil {
		t.Fatalf("get done: %v", err)
	}
	if done.Status != "done" {
		t.Fatalf("status=%q, want done", done.Status)
	}
}

func TestNoticeLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := progression.Notification{
		ID:        "level_up-1234-1",
		Category:  progression.NoticeLevelUp,
		Title:     "LEVEL UP!",
		Message:   "Nova reached level 2",
		Priority:  progression.PriorityHigh,
		Duration:  8 * time.Second,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Notices.Insert(ctx, n); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Re-inserting the same id is ignored, not an error.
	if err := s.Notices.Insert(ctx, n); err != nil {
		t.Fatalf("re-insert: %v", err)
	}

	active, err := s.Notices.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].ID != n.ID {
		t.Fatalf("active list mismatch: %+v", active)
	}
	if active[0].Duration != n.Duration {
		t.Fatalf("duration mismatch: %v", active[0].Duration)
	}

	ok, err := s.Notices.Dismiss(ctx, n.ID)
	if err != nil || !ok {
		t.Fatalf("dismiss: ok=%v err=%v", ok, err)
	}
	ok, err = s.Notices.Dismiss(ctx, "unknown")
	if err != nil || ok {
		t.Fatalf("dismiss unknown: ok=%v err=%v", ok, err)
	}

	active, err = s.Notices.ListActive(ctx)
	if err != nil {
		t.Fatalf("list after dismiss: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("dismissed notice still active: %+v", active)
	}

	removed, err := s.Notices.ClearDismissed(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed=%d, want 1", removed)
	}
}

func TestSeedIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := Seed(ctx, s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Seed(ctx, s); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	agents, err := s.Agents.ListAll(ctx)
	if err != nil {
		t.Fatalf("list agents: %v", err)
	}
	if len(agents) != 5 {
		t.Fatalf("agents=%d, want 5 (seed must not duplicate)", len(agents))
	}

	quests, err := s.Quests.Count(ctx)
	if err != nil {
		t.Fatalf("count quests: %v", err)
	}
	if quests != 3 {
		t.Fatalf("quests=%d, want 3", quests)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sentinel := errors.New("mid-write failure")
	err := s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.Agents.Insert(ctx, &engine.Agent{
			Name:     "Ghost",
			Class:    engine.ClassCoder,
			Level:    1,
			XPToNext: engine.XPRequiredForLevel(1),
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithTx error = %v, want the callback's", err)
	}

	n, err := s.Agents.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("agents=%d after rollback, want 0", n)
	}
}

func TestWithTxCommitsMultipleWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := Seed(ctx, s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	quests, err := s.Quests.ListByStatus(ctx, "open")
	if err != nil || len(quests) == 0 {
		t.Fatalf("open quests: %v (%d)", err, len(quests))
	}
	q := quests[0]

	done := time.Now().UTC().Truncate(time.Second)
	err = s.WithTx(ctx, func(tx *Store) error {
		a, err := tx.Agents.Get(ctx, q.AssignedAgents[0])
		if err != nil {
			return err
		}
		a.XP = 42
		if err := tx.Agents.Save(ctx, a); err != nil {
			return err
		}
		return tx.Quests.MarkDone(ctx, q.ID, done)
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	a, err := s.Agents.Get(ctx, q.AssignedAgents[0])
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if a.XP != 42 {
		t.Fatalf("agent xp = %d, want 42", a.XP)
	}
	reloaded, err := s.Quests.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get quest: %v", err)
	}
	if reloaded.Status != "done" {
		t.Fatalf("quest status = %q, want done", reloaded.Status)
	}
}
