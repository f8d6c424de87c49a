package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrpg/internal/engine"
	"agentrpg/internal/progression"
)

func freshAgent(id int64) *engine.Agent {
	return &engine.Agent{
		ID:       id,
		Name:     "Tester",
		Class:    engine.ClassResearcher,
		Level:    1,
		XPToNext: engine.XPRequiredForLevel(1),
	}
}

func TestPreviewXPMatchesApply(t *testing.T) {
	a := freshAgent(1)
	a.Level = 5
	a.XP = 450
	a.XPToNext = 550

	pv, err := PreviewXP(a, 100)
	require.NoError(t, err)
	assert.Equal(t, 6, pv.NewLevel)
	assert.True(t, pv.LevelUp)
	assert.Equal(t, 0, pv.XPProgress)
	assert.Equal(t, engine.XPRequiredForLevel(6), pv.XPToNext)

	// The real application lands in the same place.
	res, err := engine.ApplyXP(a, 100, "check")
	require.NoError(t, err)
	assert.Equal(t, pv.NewLevel, res.Agent.Level)
	assert.Equal(t, pv.XPProgress, res.Agent.XP)

	// And the input agent is untouched by the preview.
	assert.Equal(t, 5, a.Level)
	assert.Equal(t, 450, a.XP)
}

func TestPreviewXPNoLevelUp(t *testing.T) {
	pv, err := PreviewXP(freshAgent(1), 40)
	require.NoError(t, err)
	assert.False(t, pv.LevelUp)
	assert.Equal(t, 1, pv.NewLevel)
	assert.Equal(t, 40, pv.XPProgress)
}

func TestPreviewXPRejectsNegative(t *testing.T) {
	_, err := PreviewXP(freshAgent(1), -10)
	assert.Error(t, err)
}

func TestPreviewXPRejectsNegativeLevel(t *testing.T) {
	a := freshAgent(1)
	a.Level = -2

	_, err := PreviewXP(a, 10)
	var invalid engine.InvalidLevelError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, -2, invalid.Level)
}

func TestAwardXPMirrorsState(t *testing.T) {
	mgr := progression.NewManager(progression.Options{})
	defer mgr.Close()
	p := New(mgr, nil, Options{})
	defer p.Stop()

	updated, err := p.AwardXP(freshAgent(1), 150, "bonus")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Level)

	st := p.State()
	assert.NotEmpty(t, st.Notifications)
	assert.NotEmpty(t, st.LevelUpQueue)
	assert.False(t, p.Processing())
}

func TestAwardXPResetsProcessingOnError(t *testing.T) {
	mgr := progression.NewManager(progression.Options{})
	defer mgr.Close()
	p := New(mgr, nil, Options{})
	defer p.Stop()

	_, err := p.AwardXP(freshAgent(1), -5, "oops")
	require.Error(t, err)
	assert.False(t, p.Processing(), "busy flag must reset when the call rejects")
}

func TestCompleteQuestWrapper(t *testing.T) {
	mgr := progression.NewManager(progression.Options{})
	defer mgr.Close()
	p := New(mgr, nil, Options{})
	defer p.Stop()

	q := &engine.Quest{
		ID:             1,
		Title:          "Index the archive",
		Difficulty:     engine.DifficultyMedium,
		Category:       engine.CategoryResearch,
		Reward:         engine.Reward{XP: 100},
		AssignedAgents: []int64{1},
	}
	res, err := p.CompleteQuest(q, []*engine.Agent{freshAgent(1)}, engine.QuestOutcome{})
	require.NoError(t, err)
	// Researcher bonus on research: floor(100*1.5*1.2) = 180.
	assert.Equal(t, 180, res.Awards[1])
	assert.False(t, p.Processing())
}

func TestEffectSupersedesInFlightTimer(t *testing.T) {
	mgr := progression.NewManager(progression.Options{})
	defer mgr.Close()

	var fired int
	p := New(mgr, func(agentID int64) { fired++ }, Options{EffectDuration: 50 * time.Millisecond})
	defer p.Stop()

	p.playEffect(7)
	require.True(t, p.Animating(7))
	p.playEffect(7) // supersedes, does not stack

	p.mu.Lock()
	timerCount := len(p.timers)
	p.mu.Unlock()
	assert.Equal(t, 1, timerCount, "second effect for same agent must replace the first timer")
	assert.Equal(t, 2, fired, "the effect intent itself still fires each time")

	// After the window the handle is released.
	deadline := time.Now().Add(time.Second)
	for p.Animating(7) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.False(t, p.Animating(7))
}

func TestStaleExpiryLeavesReplacementWindow(t *testing.T) {
	mgr := progression.NewManager(progression.Options{})
	defer mgr.Close()
	p := New(mgr, nil, Options{})
	defer p.Stop()

	// Arm twice for the same agent, then deliver the first arming's
	// expiry by hand, as if its timer had already been firing while
	// being replaced. The replacement's window must survive it.
	p.playEffect(3)
	p.mu.Lock()
	staleGen := p.timers[3].gen
	p.mu.Unlock()

	p.playEffect(3)
	p.expireEffect(3, staleGen)
	assert.True(t, p.Animating(3), "stale expiry must not clear the replacement's window")

	p.mu.Lock()
	liveGen := p.timers[3].gen
	p.mu.Unlock()
	p.expireEffect(3, liveGen)
	assert.False(t, p.Animating(3))
}

func TestNextLevelUpEventReArmsEffect(t *testing.T) {
	mgr := progression.NewManager(progression.Options{})
	defer mgr.Close()
	p := New(mgr, nil, Options{})
	defer p.Stop()

	_, err := p.AwardXP(freshAgent(4), 150, "ding")
	require.NoError(t, err)

	ev, ok := p.NextLevelUpEvent()
	require.True(t, ok)
	assert.Equal(t, int64(4), ev.AgentID)
	assert.True(t, p.Animating(4), "popping an event opens its playback window")

	_, ok = p.NextLevelUpEvent()
	assert.False(t, ok, "queue drains FIFO")
}

func TestLevelUpTriggersEffect(t *testing.T) {
	mgr := progression.NewManager(progression.Options{})
	defer mgr.Close()

	effects := make(chan int64, 1)
	p := New(mgr, func(agentID int64) { effects <- agentID }, Options{})
	defer p.Stop()

	_, err := p.AwardXP(freshAgent(9), 150, "ding")
	require.NoError(t, err)

	select {
	case id := <-effects:
		assert.Equal(t, int64(9), id)
	default:
		t.Fatal("level_up did not trigger the visual effect callback")
	}
}
