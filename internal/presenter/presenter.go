// Package presenter bridges the progression manager to a presentation
// layer: it mirrors manager state, relays level-up effects with
// de-duplicated timers, paces level-up playback, and wraps the mutating
// operations with a local busy flag for spinners.
package presenter

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"agentrpg/internal/engine"
	"agentrpg/internal/progression"
)

// EffectFunc is the "play level-up effect for agent X" intent. Rendering
// is entirely the caller's business; the presenter only guarantees that
// effects for the same agent supersede rather than stack.
type EffectFunc func(agentID int64)

const (
	// DefaultPollInterval is the reconciliation fallback cadence. Event
	// subscriptions keep the mirror current; polling only catches drift.
	DefaultPollInterval = time.Second

	// DefaultEffectDuration is how long a level-up effect is considered
	// in flight for de-duplication and playback pacing.
	DefaultEffectDuration = 3 * time.Second
)

// Options tune a Presenter. Zero values fall back to defaults.
type Options struct {
	PollInterval   time.Duration
	EffectDuration time.Duration
}

// effectHandle pairs a timer with the generation that armed it, so a
// stale expiry can tell it has been superseded.
type effectHandle struct {
	timer *time.Timer
	gen   uint64
}

type Presenter struct {
	mgr *progression.Manager

	mu         sync.Mutex
	state      progression.Snapshot
	processing bool
	effect     EffectFunc
	effectDur  time.Duration
	effectSeq  uint64
	timers     map[int64]effectHandle

	group    singleflight.Group
	unsubs   []func()
	stopPoll chan struct{}
	stopOnce sync.Once
	poll     time.Duration
}

// New wires a presenter to a manager. effect may be nil when the host has
// no visual effects. Call Start to begin the reconciliation poll and
// Stop to release subscriptions and timers.
func New(mgr *progression.Manager, effect EffectFunc, opts Options) *Presenter {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.EffectDuration <= 0 {
		opts.EffectDuration = DefaultEffectDuration
	}

	p := &Presenter{
		mgr:       mgr,
		state:     mgr.State(),
		effect:    effect,
		effectDur: opts.EffectDuration,
		timers:    make(map[int64]effectHandle),
		stopPoll:  make(chan struct{}),
		poll:      opts.PollInterval,
	}

	p.unsubs = append(p.unsubs,
		mgr.On(progression.EventLevelUp, func(ev progression.Event) {
			p.playEffect(ev.AgentID)
			p.Refresh()
		}),
		mgr.On(progression.EventXPGained, func(progression.Event) { p.Refresh() }),
		mgr.On(progression.EventSkillUnlocked, func(progression.Event) { p.Refresh() }),
	)

	return p
}

// Start launches the fallback reconciliation poll.
func (p *Presenter) Start() {
	go func() {
		ticker := time.NewTicker(p.poll)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Refresh()
			case <-p.stopPoll:
				return
			}
		}
	}()
}

// Stop ends the poll, drops subscriptions, and cancels in-flight effect
// timers. Safe to call more than once.
func (p *Presenter) Stop() {
	p.stopOnce.Do(func() { close(p.stopPoll) })
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, h := range p.timers {
		h.timer.Stop()
		delete(p.timers, id)
	}
}

// Refresh re-reads manager state. Concurrent refreshes collapse into one
// underlying State call.
func (p *Presenter) Refresh() {
	v, _, _ := p.group.Do("state", func() (any, error) {
		return p.mgr.State(), nil
	})
	snap := v.(progression.Snapshot)

	p.mu.Lock()
	p.state = snap
	p.mu.Unlock()
}

// State returns the most recent mirror of manager state.
func (p *Presenter) State() progression.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Processing reports whether an AwardXP/CompleteQuest call is in flight.
func (p *Presenter) Processing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processing
}

func (p *Presenter) setProcessing(v bool) {
	p.mu.Lock()
	p.processing = v
	p.mu.Unlock()
}

// NextLevelUpEvent pops the oldest pending level-up and re-arms the
// agent's effect window, so playback pacing follows the effect duration
// even when the queue drains long after the original event fired.
func (p *Presenter) NextLevelUpEvent() (progression.LevelUpEvent, bool) {
	ev, ok := p.mgr.NextLevelUpEvent()
	if ok {
		p.playEffect(ev.AgentID)
	}
	return ev, ok
}

// playEffect records an in-flight effect for the agent with
// cancel-and-replace semantics: a new effect for an id already animating
// stops the prior timer before arming a new one, so rapid repeated
// level-ups never leak timers or stack effects. Each arming carries a
// generation; a timer that was already firing while being replaced finds
// its generation stale and leaves the replacement's window alone.
func (p *Presenter) playEffect(agentID int64) {
	p.mu.Lock()
	if h, ok := p.timers[agentID]; ok {
		h.timer.Stop()
	}
	p.effectSeq++
	gen := p.effectSeq
	p.timers[agentID] = effectHandle{
		gen: gen,
		timer: time.AfterFunc(p.effectDur, func() {
			p.expireEffect(agentID, gen)
		}),
	}
	fn := p.effect
	p.mu.Unlock()

	if fn != nil {
		fn(agentID)
	}
}

// expireEffect releases the agent's effect handle, but only when it still
// belongs to the generation that armed it.
func (p *Presenter) expireEffect(agentID int64, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.timers[agentID]; ok && h.gen == gen {
		delete(p.timers, agentID)
	}
}

// Animating reports whether an effect for the agent is still in flight.
func (p *Presenter) Animating(agentID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.timers[agentID]
	return ok
}

// AwardXP runs one XP grant through the manager, holding the local busy
// flag for the duration. The flag resets even when the call errors.
func (p *Presenter) AwardXP(a *engine.Agent, amount int, source string) (*engine.Agent, error) {
	p.setProcessing(true)
	defer p.setProcessing(false)

	res, err := p.mgr.ProcessXPGain(a, amount, source)
	if err != nil {
		return nil, err
	}
	p.Refresh()
	return res.Agent, nil
}

// CompleteQuest runs a quest completion through the manager with the same
// busy-flag discipline as AwardXP.
func (p *Presenter) CompleteQuest(q *engine.Quest, agents []*engine.Agent, outcome engine.QuestOutcome) (*progression.QuestResult, error) {
	p.setProcessing(true)
	defer p.setProcessing(false)

	res, err := p.mgr.ProcessQuestCompletion(q, agents, outcome)
	if err != nil {
		return nil, err
	}
	p.Refresh()
	return res, nil
}

// Preview is a what-if projection of an XP gain.
type Preview struct {
	NewLevel   int
	LevelUp    bool
	XPProgress int
	XPToNext   int
}

// PreviewXP computes where a hypothetical gain would land the agent,
// without touching the agent or the manager. Same boundary rules as the
// real application path.
func PreviewXP(a *engine.Agent, amount int) (Preview, error) {
	if amount < 0 {
		return Preview{}, engine.InvalidXPError{Amount: amount}
	}
	if a.Level < 0 {
		return Preview{}, engine.InvalidLevelError{Level: a.Level}
	}

	level := a.Level
	if level < 1 {
		level = 1
	}
	toNext := a.XPToNext
	if toNext <= 0 {
		toNext = engine.XPRequiredForLevel(level)
	}

	xp := a.XP + amount
	for xp >= toNext {
		xp -= toNext
		level++
		toNext = engine.XPRequiredForLevel(level)
	}

	return Preview{
		NewLevel:   level,
		LevelUp:    level > a.Level,
		XPProgress: xp,
		XPToNext:   toNext,
	}, nil
}
