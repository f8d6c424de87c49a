package progression

import (
	"math"
	"sync"
	"time"

	"agentrpg/internal/engine"
)

// LevelUpEvent is the immutable record of one level-up transition. It may
// cover several levels when a single XP application crosses more than one
// boundary. Queued FIFO for sequential animation playback.
type LevelUpEvent struct {
	AgentID        int64
	AgentName      string
	OldLevel       int
	NewLevel       int
	XPGained       int
	Source         string
	UnlockedSkills []string
	StatIncreases  []engine.StatIncrease
	Timestamp      time.Time
}

// GainResult is what one ProcessXPGain call produced.
type GainResult struct {
	Agent         *engine.Agent
	LevelUp       *LevelUpEvent // nil when no boundary was crossed
	Notifications []Notification
}

// QuestResult aggregates a quest completion across its team.
type QuestResult struct {
	Agents        []*engine.Agent
	LevelUps      []LevelUpEvent
	Notifications []Notification
	Awards        map[int64]int
}

const (
	defaultSweepInterval   = 60 * time.Second
	defaultEventTTL        = 24 * time.Hour
	defaultMaxRecentEvents = 100
)

// Options tune a Manager. Zero values fall back to defaults.
type Options struct {
	SweepInterval   time.Duration
	EventTTL        time.Duration
	MaxRecentEvents int
	Logf            func(format string, args ...any)
}

// Manager is the stateful progression coordinator: it applies XP, keeps
// the level-up queue and active notifications, and emits typed events.
// One instance is constructed and owned by the composition root; tests
// create their own.
type Manager struct {
	mu            sync.Mutex
	recent        []Event
	notifications []Notification
	queue         []LevelUpEvent
	procDepth     int
	noteSeq       uint64

	bus  *bus
	logf func(format string, args ...any)
	now  func() time.Time

	sweepInterval time.Duration
	eventTTL      time.Duration
	maxRecent     int

	stopSweep chan struct{}
	sweepOnly sync.Once
}

// NewManager builds a Manager. The background sweep does not run until
// StartSweep is called.
func NewManager(opts Options) *Manager {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.EventTTL <= 0 {
		opts.EventTTL = defaultEventTTL
	}
	if opts.MaxRecentEvents <= 0 {
		opts.MaxRecentEvents = defaultMaxRecentEvents
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Manager{
		bus:           newBus(logf),
		logf:          logf,
		now:           func() time.Time { return time.Now().UTC() },
		sweepInterval: opts.SweepInterval,
		eventTTL:      opts.EventTTL,
		maxRecent:     opts.MaxRecentEvents,
		stopSweep:     make(chan struct{}),
	}
}

// Now returns the manager's clock reading. Tests inject a fixed clock.
func (m *Manager) Now() time.Time {
	return m.now()
}

// On subscribes a handler for one event type and returns an unsubscribe
// function. Handlers run synchronously in registration order.
func (m *Manager) On(t EventType, fn Handler) func() {
	return m.bus.subscribe(t, fn)
}

// beginProcessing/endProcessing track in-flight operations as a depth so
// quest completions (which process XP per agent) stay flagged end to end.
func (m *Manager) beginProcessing() {
	m.mu.Lock()
	m.procDepth++
	m.mu.Unlock()
}

func (m *Manager) endProcessing() {
	m.mu.Lock()
	if m.procDepth > 0 {
		m.procDepth--
	}
	m.mu.Unlock()
}

// record appends the event to the bounded recent ring and publishes it.
func (m *Manager) record(ev Event) {
	m.mu.Lock()
	m.recent = append(m.recent, ev)
	if len(m.recent) > m.maxRecent {
		m.recent = m.recent[len(m.recent)-m.maxRecent:]
	}
	m.mu.Unlock()

	m.bus.publish(ev)
}

// push stamps and appends a notification to the active list, returning
// the stored copy.
func (m *Manager) push(n Notification) Notification {
	m.mu.Lock()
	m.noteSeq++
	n.Timestamp = m.now()
	n.ID = notificationID(n.Category, n.Timestamp, m.noteSeq)
	m.notifications = append(m.notifications, n)
	m.mu.Unlock()
	return n
}

// ProcessXPGain applies an XP delta to one agent and materializes the
// resulting level-up event and notifications. Emits xp_gained, then
// level_up (when one happened), then one skill_unlocked per new skill.
// The processing flag is cleared on every path.
func (m *Manager) ProcessXPGain(a *engine.Agent, amount int, source string) (*GainResult, error) {
	m.beginProcessing()
	defer m.endProcessing()

	res, err := engine.ApplyXP(a, amount, source)
	if err != nil {
		return nil, err
	}

	now := m.now()
	out := &GainResult{Agent: res.Agent}

	if res.LeveledUp {
		increases := engine.MilestoneIncreases(res.OldLevel, res.NewLevel)
		for _, inc := range increases {
			engine.AddStat(&res.Agent.Stats, inc)
		}

		ev := LevelUpEvent{
			AgentID:        res.Agent.ID,
			AgentName:      res.Agent.Name,
			OldLevel:       res.OldLevel,
			NewLevel:       res.NewLevel,
			XPGained:       amount,
			Source:         source,
			UnlockedSkills: append([]string(nil), res.UnlockedSkills...),
			StatIncreases:  increases,
			Timestamp:      now,
		}

		m.mu.Lock()
		m.queue = append(m.queue, ev)
		m.mu.Unlock()

		out.LevelUp = &ev
		out.Notifications = append(out.Notifications, m.push(levelUpNotification(&ev)))
		for _, skill := range res.UnlockedSkills {
			out.Notifications = append(out.Notifications, m.push(skillUnlockNotification(res.Agent, skill)))
		}
	}

	m.record(Event{
		Type:      EventXPGained,
		AgentID:   res.Agent.ID,
		Payload:   XPGainedPayload{Agent: res.Agent, Amount: amount, Source: source},
		Timestamp: now,
	})
	if out.LevelUp != nil {
		m.record(Event{
			Type:      EventLevelUp,
			AgentID:   res.Agent.ID,
			Payload:   out.LevelUp,
			Timestamp: now,
		})
		for _, skill := range res.UnlockedSkills {
			m.record(Event{
				Type:      EventSkillUnlocked,
				AgentID:   res.Agent.ID,
				Payload:   SkillUnlockedPayload{Agent: res.Agent, Skill: skill},
				Timestamp: now,
			})
		}
	}

	return out, nil
}

// ProcessQuestCompletion awards quest XP to every assigned agent, in the
// order the caller passed them. Agents not on the quest roster pass
// through unchanged. One system-level quest_completed event is recorded
// after the whole team is processed.
func (m *Manager) ProcessQuestCompletion(q *engine.Quest, agents []*engine.Agent, outcome engine.QuestOutcome) (*QuestResult, error) {
	m.beginProcessing()
	defer m.endProcessing()

	out := &QuestResult{Awards: make(map[int64]int)}
	totalXP := 0

	for _, a := range agents {
		if !q.Assigned(a.ID) {
			out.Agents = append(out.Agents, a)
			continue
		}

		xp, err := engine.QuestXPReward(q, a, outcome)
		if err != nil {
			return nil, err
		}
		if outcome.TeamPerformance > 0 {
			xp = int(math.Floor(float64(xp) * outcome.TeamPerformance))
		}

		gain, err := m.ProcessXPGain(a, xp, "Quest: "+q.Title)
		if err != nil {
			return nil, err
		}

		out.Agents = append(out.Agents, gain.Agent)
		out.Awards[a.ID] = xp
		totalXP += xp
		if gain.LevelUp != nil {
			out.LevelUps = append(out.LevelUps, *gain.LevelUp)
		}
		out.Notifications = append(out.Notifications, gain.Notifications...)
	}

	out.Notifications = append(out.Notifications, m.push(questCompleteNotification(q, totalXP)))

	m.record(Event{
		Type:      EventQuestCompleted,
		AgentID:   SystemAgentID,
		Payload:   QuestCompletedPayload{Quest: q, Awards: out.Awards},
		Timestamp: m.now(),
	})

	return out, nil
}

// DismissNotification marks the matching active notification dismissed.
// Unknown ids are a no-op; returns whether a notification matched.
func (m *Manager) DismissNotification(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].Dismissed = true
			return true
		}
	}
	return false
}

// ClearDismissed removes every dismissed notification from the active list.
func (m *Manager) ClearDismissed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if !n.Dismissed {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
}

// NextLevelUpEvent pops the oldest pending level-up for playback.
func (m *Manager) NextLevelUpEvent() (LevelUpEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return LevelUpEvent{}, false
	}
	ev := m.queue[0]
	m.queue = append([]LevelUpEvent(nil), m.queue[1:]...)
	return ev, true
}

// Snapshot is a read-only copy of manager state for UI synchronization.
type Snapshot struct {
	Notifications []Notification
	LevelUpQueue  []LevelUpEvent
	RecentEvents  []Event
	Processing    bool
}

// State returns a defensive copy; callers can hold or mutate it freely.
func (m *Manager) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Notifications: append([]Notification(nil), m.notifications...),
		LevelUpQueue:  append([]LevelUpEvent(nil), m.queue...),
		RecentEvents:  append([]Event(nil), m.recent...),
		Processing:    m.procDepth > 0,
	}
}

// StartSweep launches the periodic garbage collection of old events and
// dismissed/expired notifications. Stop with Close.
func (m *Manager) StartSweep() {
	go func() {
		ticker := time.NewTicker(m.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweepOnce(m.now())
			case <-m.stopSweep:
				return
			}
		}
	}()
}

// Close stops the background sweep. Safe to call more than once.
func (m *Manager) Close() {
	m.sweepOnly.Do(func() { close(m.stopSweep) })
}

// sweepOnce expires and drops notifications and evicts events older than
// the TTL. It filters fresh slices rather than mutating in place, so an
// operation appending concurrently never sees a half-rewritten list.
func (m *Manager) sweepOnce(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keptNotes []Notification
	for _, n := range m.notifications {
		if n.Expired(now) {
			n.Dismissed = true
		}
		if !n.Dismissed {
			keptNotes = append(keptNotes, n)
		}
	}
	m.notifications = keptNotes

	var keptEvents []Event
	for _, ev := range m.recent {
		if now.Sub(ev.Timestamp) <= m.eventTTL {
			keptEvents = append(keptEvents, ev)
		}
	}
	m.recent = keptEvents
}
