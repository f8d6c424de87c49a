package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrpg/internal/engine"
)

func testAgent(id int64, level int) *engine.Agent {
	return &engine.Agent{
		ID:       id,
		Name:     "Agent-" + string(rune('A'+id-1)),
		Class:    engine.ClassCoder,
		Level:    level,
		XP:       0,
		XPToNext: engine.XPRequiredForLevel(level),
		Stats:    engine.Stats{Intelligence: 10, Creativity: 10, Reliability: 10, Speed: 10, Leadership: 10},
	}
}

func TestProcessXPGainNoLevelUp(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	res, err := m.ProcessXPGain(testAgent(1, 1), 10, "small win")
	require.NoError(t, err)
	assert.Nil(t, res.LevelUp)
	assert.Empty(t, res.Notifications)
	assert.Equal(t, 10, res.Agent.XP)

	st := m.State()
	require.Len(t, st.RecentEvents, 1)
	assert.Equal(t, EventXPGained, st.RecentEvents[0].Type)
	assert.Empty(t, st.LevelUpQueue)
}

func TestProcessXPGainLevelUpEmitsOrderedEvents(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	var order []EventType
	for _, et := range []EventType{EventXPGained, EventLevelUp, EventSkillUnlocked} {
		et := et
		m.On(et, func(ev Event) { order = append(order, et) })
	}

	a := testAgent(1, 1)
	res, err := m.ProcessXPGain(a, 120, "big win")
	require.NoError(t, err)
	require.NotNil(t, res.LevelUp)
	assert.Equal(t, 1, res.LevelUp.OldLevel)
	assert.Equal(t, 2, res.LevelUp.NewLevel)

	// xp_gained strictly before level_up, skills after.
	require.NotEmpty(t, order)
	assert.Equal(t, EventXPGained, order[0])
	assert.Equal(t, EventLevelUp, order[1])
	for _, et := range order[2:] {
		assert.Equal(t, EventSkillUnlocked, et)
	}
}

func TestProcessXPGainNotifications(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	a := testAgent(1, 1)
	res, err := m.ProcessXPGain(a, 120, "promotion")
	require.NoError(t, err)
	require.NotNil(t, res.LevelUp)

	// One high-priority level-up notice plus one per unlocked skill.
	require.Len(t, res.Notifications, 1+len(res.LevelUp.UnlockedSkills))
	assert.Equal(t, NoticeLevelUp, res.Notifications[0].Category)
	assert.Equal(t, PriorityHigh, res.Notifications[0].Priority)
	for _, n := range res.Notifications[1:] {
		assert.Equal(t, NoticeSkillUnlock, n.Category)
	}

	// Unique ids.
	seen := map[string]bool{}
	for _, n := range res.Notifications {
		assert.False(t, seen[n.ID], "duplicate notification id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestProcessXPGainRejectsNegativeAndClearsFlag(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	_, err := m.ProcessXPGain(testAgent(1, 1), -1, "bad")
	require.Error(t, err)
	assert.False(t, m.State().Processing, "processing flag must clear on error paths")
	assert.Empty(t, m.State().RecentEvents)
}

func TestMilestoneStatIncreasesOnLevelUpEvent(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	a := testAgent(1, 4)
	a.XP = 0
	a.XPToNext = 10 // about to cross into the level-5 milestone

	res, err := m.ProcessXPGain(a, 10, "threshold")
	require.NoError(t, err)
	require.NotNil(t, res.LevelUp)
	require.Len(t, res.LevelUp.StatIncreases, 1)
	assert.Equal(t, engine.StatIntelligence, res.LevelUp.StatIncreases[0].Stat)
	assert.Equal(t, "Novice Milestone", res.LevelUp.StatIncreases[0].Reason)

	// Milestone bump lands on the snapshot on top of the flat bonus.
	flat := 2 // floor(5/5)+1
	assert.Equal(t, 10+flat+2, res.Agent.Stats.Intelligence)
	assert.Equal(t, 10+flat, res.Agent.Stats.Creativity)
}

func TestLevelUpQueueFIFO(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	first, err := m.ProcessXPGain(testAgent(1, 1), 150, "one")
	require.NoError(t, err)
	second, err := m.ProcessXPGain(testAgent(2, 1), 150, "two")
	require.NoError(t, err)
	require.NotNil(t, first.LevelUp)
	require.NotNil(t, second.LevelUp)

	ev, ok := m.NextLevelUpEvent()
	require.True(t, ok)
	assert.Equal(t, int64(1), ev.AgentID)

	ev, ok = m.NextLevelUpEvent()
	require.True(t, ok)
	assert.Equal(t, int64(2), ev.AgentID)

	_, ok = m.NextLevelUpEvent()
	assert.False(t, ok)
}

func TestQuestCompletionSkipsUnassigned(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	q := &engine.Quest{
		ID:             7,
		Title:          "Patrol the backlog",
		Difficulty:     engine.DifficultyMedium,
		Category:       engine.CategoryOperations,
		Reward:         engine.Reward{XP: 100},
		AssignedAgents: []int64{1},
	}
	assigned := testAgent(1, 1)
	bystander := testAgent(2, 1)

	res, err := m.ProcessQuestCompletion(q, []*engine.Agent{assigned, bystander}, engine.QuestOutcome{})
	require.NoError(t, err)
	require.Len(t, res.Agents, 2)

	// The bystander passes through untouched, same pointer and all.
	assert.Same(t, bystander, res.Agents[1])
	assert.Zero(t, res.Agents[1].XP)
	assert.NotSame(t, assigned, res.Agents[0])
	assert.Contains(t, res.Awards, int64(1))
	assert.NotContains(t, res.Awards, int64(2))
	require.Len(t, res.Agents[0].History, 1)
	assert.Equal(t, "Quest: Patrol the backlog", res.Agents[0].History[0].Action)
}

func TestQuestCompletionEmitsSystemEventAfterAgents(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	var types []EventType
	m.On(EventXPGained, func(ev Event) { types = append(types, ev.Type) })
	m.On(EventQuestCompleted, func(ev Event) {
		types = append(types, ev.Type)
		assert.Equal(t, SystemAgentID, ev.AgentID)
	})

	q := &engine.Quest{
		ID:             3,
		Title:          "Team retro",
		Difficulty:     engine.DifficultyEasy,
		Category:       engine.CategoryLeadership,
		Reward:         engine.Reward{XP: 40},
		AssignedAgents: []int64{1, 2},
	}
	res, err := m.ProcessQuestCompletion(q, []*engine.Agent{testAgent(1, 1), testAgent(2, 1)}, engine.QuestOutcome{})
	require.NoError(t, err)
	require.Len(t, res.Awards, 2)

	require.Len(t, types, 3)
	assert.Equal(t, []EventType{EventXPGained, EventXPGained, EventQuestCompleted}, types)
}

func TestQuestCompletionTeamPerformanceMultiplier(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	q := &engine.Quest{
		ID:             4,
		Title:          "Crunch sprint",
		Difficulty:     engine.DifficultyMedium,
		Category:       engine.CategoryResearch,
		Reward:         engine.Reward{XP: 100},
		AssignedAgents: []int64{1},
	}
	res, err := m.ProcessQuestCompletion(q, []*engine.Agent{testAgent(1, 1)}, engine.QuestOutcome{TeamPerformance: 1.2})
	require.NoError(t, err)
	// floor(floor(100*1.5) * 1.2) = 180
	assert.Equal(t, 180, res.Awards[1])
}

func TestDismissAndClearNotifications(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	res, err := m.ProcessXPGain(testAgent(1, 1), 150, "ding")
	require.NoError(t, err)
	require.NotEmpty(t, res.Notifications)
	id := res.Notifications[0].ID

	assert.True(t, m.DismissNotification(id))
	assert.False(t, m.DismissNotification("nope"), "unknown id must be a no-op")

	// Dismissed but still in the active list until cleared.
	var dismissed bool
	for _, n := range m.State().Notifications {
		if n.ID == id {
			dismissed = n.Dismissed
		}
	}
	assert.True(t, dismissed)

	m.ClearDismissed()
	for _, n := range m.State().Notifications {
		assert.NotEqual(t, id, n.ID, "dismissed notification must not survive clearing")
	}
}

func TestSweepExpiresAndEvicts(t *testing.T) {
	m := NewManager(Options{EventTTL: 24 * time.Hour})
	defer m.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	res, err := m.ProcessXPGain(testAgent(1, 1), 150, "ding")
	require.NoError(t, err)
	require.NotEmpty(t, res.Notifications)

	// Before any duration elapses nothing is swept.
	m.sweepOnce(base.Add(time.Second))
	assert.NotEmpty(t, m.State().Notifications)
	assert.NotEmpty(t, m.State().RecentEvents)

	// Past the longest auto-dismiss duration the notices expire and drop.
	m.sweepOnce(base.Add(LevelUpNotificationDuration + time.Second))
	assert.Empty(t, m.State().Notifications)
	assert.NotEmpty(t, m.State().RecentEvents)

	// Past the TTL the event buffer drains too.
	m.sweepOnce(base.Add(25 * time.Hour))
	assert.Empty(t, m.State().RecentEvents)
}

func TestRecentEventsBounded(t *testing.T) {
	m := NewManager(Options{MaxRecentEvents: 5})
	defer m.Close()

	a := testAgent(1, 1)
	for i := 0; i < 10; i++ {
		res, err := m.ProcessXPGain(a, 1, "tick")
		require.NoError(t, err)
		a = res.Agent
	}

	st := m.State()
	assert.Len(t, st.RecentEvents, 5)
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	_, err := m.ProcessXPGain(testAgent(1, 1), 150, "ding")
	require.NoError(t, err)

	st := m.State()
	require.NotEmpty(t, st.Notifications)
	st.Notifications[0].Dismissed = true
	st.LevelUpQueue = nil

	fresh := m.State()
	assert.False(t, fresh.Notifications[0].Dismissed, "snapshot mutation leaked into manager")
	assert.NotEmpty(t, fresh.LevelUpQueue)
}
