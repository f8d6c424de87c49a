package progression

import (
	"sync"
	"time"

	"agentrpg/internal/engine"
)

// EventType identifies a progression event.
type EventType string

const (
	EventXPGained       EventType = "xp_gained"
	EventLevelUp        EventType = "level_up"
	EventSkillUnlocked  EventType = "skill_unlocked"
	EventQuestCompleted EventType = "quest_completed"
)

// SystemAgentID marks events that are not about one particular agent.
const SystemAgentID int64 = 0

// Event is the pub/sub envelope. Payload is one of the *Payload types
// below, matching the event type.
type Event struct {
	Type      EventType
	AgentID   int64
	Payload   any
	Timestamp time.Time
}

// XPGainedPayload accompanies EventXPGained.
type XPGainedPayload struct {
	Agent  *engine.Agent
	Amount int
	Source string
}

// SkillUnlockedPayload accompanies EventSkillUnlocked.
type SkillUnlockedPayload struct {
	Agent *engine.Agent
	Skill string
}

// QuestCompletedPayload accompanies EventQuestCompleted.
type QuestCompletedPayload struct {
	Quest  *engine.Quest
	Awards map[int64]int // agent id -> xp granted
}

// Handler receives events. Handlers run synchronously, in registration
// order, on the goroutine that triggered the event.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// bus is a synchronous typed publish/subscribe hub. A panicking handler
// is recovered and logged so it cannot break the event pipeline or
// starve later handlers.
type bus struct {
	mu       sync.Mutex
	handlers map[EventType][]subscription
	nextID   int
	logf     func(format string, args ...any)
}

func newBus(logf func(format string, args ...any)) *bus {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &bus{
		handlers: make(map[EventType][]subscription),
		logf:     logf,
	}
}

// subscribe registers fn for one event type and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *bus) subscribe(t EventType, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[t]
		for i, s := range subs {
			if s.id == id {
				b.handlers[t] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// publish delivers ev to every handler of its type, isolating panics.
func (b *bus) publish(ev Event) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.handlers[ev.Type]...)
	b.mu.Unlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logf("progression: %s handler panicked: %v", ev.Type, r)
				}
			}()
			s.fn(ev)
		}()
	}
}
