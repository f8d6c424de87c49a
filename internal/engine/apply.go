package engine

import (
	"math"
	"time"
)

// ApplyResult reports what one XP application did to an agent.
type ApplyResult struct {
	Agent          *Agent
	LeveledUp      bool
	OldLevel       int
	NewLevel       int
	UnlockedSkills []string
}

// ApplyXP adds xpGained to the agent and resolves any level-ups. The
// input agent is never mutated; the result carries a fresh snapshot.
//
// The agent's recorded XPToNext is honored for the first boundary, then
// the canonical curve takes over, so a snapshot loaded mid-level levels
// up exactly where its own progress bar says it will. Excess XP rolls
// into further levels; the returned snapshot always satisfies
// XP < XPToNext.
func ApplyXP(a *Agent, xpGained int, source string) (*ApplyResult, error) {
	if xpGained < 0 {
		return nil, InvalidXPError{Amount: xpGained}
	}
	if a.Level < 0 {
		return nil, InvalidLevelError{Level: a.Level}
	}

	out := a.Clone()
	now := time.Now().UTC()

	// A zero level is a fresh zero-value agent; anything negative was
	// rejected above.
	if out.Level < 1 {
		out.Level = 1
	}
	if out.XPToNext <= 0 {
		out.XPToNext = XPRequiredForLevel(out.Level)
	}

	oldLevel := out.Level
	out.XP += xpGained
	for out.XP >= out.XPToNext {
		out.XP -= out.XPToNext
		out.Level++
		out.XPToNext = XPRequiredForLevel(out.Level)
	}

	res := &ApplyResult{
		Agent:    out,
		OldLevel: oldLevel,
		NewLevel: out.Level,
	}

	if out.Level > oldLevel {
		res.LeveledUp = true

		// Flat per-stat bonus, scaled by tier.
		bonus := int(math.Floor(float64(out.Level)/5)) + 1
		out.Stats.Intelligence += bonus
		out.Stats.Creativity += bonus
		out.Stats.Reliability += bonus
		out.Stats.Speed += bonus
		out.Stats.Leadership += bonus

		for _, skill := range SkillsForLevelRange(out.Class, oldLevel, out.Level) {
			if !out.HasSkill(skill) {
				out.Skills = append(out.Skills, skill)
				res.UnlockedSkills = append(res.UnlockedSkills, skill)
			}
		}
	}

	entry := ActivityEntry{Action: source, Timestamp: now, XPDelta: xpGained}
	out.History = append([]ActivityEntry{entry}, out.History...)
	if len(out.History) > MaxHistoryEntries {
		out.History = out.History[:MaxHistoryEntries]
	}
	out.LastActive = now

	return res, nil
}
