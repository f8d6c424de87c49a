package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	// BaseXPThreshold is the XP needed to clear level 1.
	BaseXPThreshold = 100.0

	// XPGrowthRate compounds the per-level threshold: each level costs
	// 1.5x the previous one.
	XPGrowthRate = 1.5

	// TeamSynergyPerAgent is the bonus per assigned agent beyond the first.
	TeamSynergyPerAgent = 0.05

	// TeamSynergyCap bounds the synergy multiplier regardless of team size.
	TeamSynergyCap = 1.25
)

// XPRequiredForLevel returns the XP needed to advance from the given level
// to the next one: floor(base * growth^(level-1)). Deterministic and
// monotonically increasing in level.
func XPRequiredForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(BaseXPThreshold * math.Pow(XPGrowthRate, float64(level-1))))
}

// TotalXPForLevel returns the cumulative XP needed to reach the target
// level from level 1. Diagnostics only; not on the hot path.
func TotalXPForLevel(targetLevel int) int {
	total := 0
	for l := 1; l < targetLevel; l++ {
		total += XPRequiredForLevel(l)
	}
	return total
}

// Progress locates a total-XP amount on the level curve.
type Progress struct {
	Level    int
	XP       int // XP within the current level
	XPToNext int
}

// LevelFromTotalXP converts a cumulative XP total into a level plus
// within-level progress. Handles totals large enough to cross many
// levels in one call.
func LevelFromTotalXP(totalXP int) (Progress, error) {
	if totalXP < 0 {
		return Progress{}, InvalidXPError{Amount: totalXP}
	}

	level := 1
	remaining := totalXP
	threshold := XPRequiredForLevel(level)
	for remaining >= threshold {
		remaining -= threshold
		level++
		threshold = XPRequiredForLevel(level)
	}
	return Progress{Level: level, XP: remaining, XPToNext: threshold}, nil
}

// Standing summarizes where an agent sits on the level curve.
type Standing struct {
	TotalXP int
	Percent float64 // within-level progress, 0..100
}

// AgentProgress computes the agent's cumulative XP and within-level
// percentage from its recorded level and XP fields.
func AgentProgress(a *Agent) Standing {
	toNext := a.XPToNext
	if toNext <= 0 {
		toNext = XPRequiredForLevel(a.Level)
	}
	return Standing{
		TotalXP: TotalXPForLevel(a.Level) + a.XP,
		Percent: float64(a.XP) / float64(toNext) * 100,
	}
}

func difficultyMultiplier(d Difficulty) (float64, error) {
	switch d {
	case DifficultyTutorial:
		return 0.5, nil
	case DifficultyEasy:
		return 1.0, nil
	case DifficultyMedium:
		return 1.5, nil
	case DifficultyHard:
		return 2.0, nil
	case DifficultyExpert:
		return 3.0, nil
	case DifficultyLegendary:
		return 5.0, nil
	default:
		return 0, fmt.Errorf("invalid difficulty: %d", d)
	}
}

// classCategoryBonus maps each class to the quest categories it excels at.
// Unlisted class/category pairs get no bonus (1.0).
var classCategoryBonus = map[Class]map[QuestCategory]float64{
	ClassCoder:      {CategoryDevelopment: 1.20, CategoryOperations: 1.10},
	ClassResearcher: {CategoryResearch: 1.20, CategoryDevelopment: 1.10},
	ClassDesigner:   {CategoryCreative: 1.20, CategoryResearch: 1.05},
	ClassStrategist: {CategoryLeadership: 1.20, CategoryOperations: 1.10},
	ClassSupport:    {CategoryOperations: 1.20, CategoryLeadership: 1.05},
}

// ClassBonus returns the reward multiplier for an agent class working a
// quest category.
func ClassBonus(c Class, cat QuestCategory) float64 {
	if bonuses, ok := classCategoryBonus[c]; ok {
		if b, ok := bonuses[cat]; ok {
			return b
		}
	}
	return 1.0
}

// TimeBonus rewards finishing under the quest time limit. Either value
// being zero (no limit, or completion time not tracked) means no bonus.
func TimeBonus(limitMinutes, completionMinutes int) float64 {
	if limitMinutes <= 0 || completionMinutes <= 0 {
		return 1.0
	}
	ratio := float64(completionMinutes) / float64(limitMinutes)
	switch {
	case ratio < 0.5:
		return 1.5
	case ratio < 0.75:
		return 1.25
	case ratio < 1.0:
		return 1.1
	default:
		return 1.0
	}
}

// TeamSynergy returns the multiplier for a quest with the given number of
// assigned agents: +5% per agent beyond the first, capped.
func TeamSynergy(assigned int) float64 {
	if assigned <= 1 {
		return 1.0
	}
	m := 1.0 + float64(assigned-1)*TeamSynergyPerAgent
	if m > TeamSynergyCap {
		m = TeamSynergyCap
	}
	return m
}

// StreakPolicy maps recent-activity streaks to reward multipliers.
// The thresholds count history entries with a positive XP delta.
// Tunable policy, not a hard law.
type StreakPolicy struct {
	Short  float64 // >= 3 entries
	Medium float64 // >= 5 entries
	Long   float64 // >= 10 entries
}

// DefaultStreakPolicy is the stock streak curve.
var DefaultStreakPolicy = StreakPolicy{Short: 1.05, Medium: 1.15, Long: 1.30}

// Multiplier inspects the agent's recent history for positive XP gains.
func (p StreakPolicy) Multiplier(a *Agent) float64 {
	gains := 0
	for _, e := range a.History {
		if e.XPDelta > 0 {
			gains++
		}
	}
	switch {
	case gains >= 10:
		return p.Long
	case gains >= 5:
		return p.Medium
	case gains >= 3:
		return p.Short
	default:
		return 1.0
	}
}

// StreakMultiplier applies the default streak policy.
func StreakMultiplier(a *Agent) float64 {
	return DefaultStreakPolicy.Multiplier(a)
}

// QuestOutcome carries completion details that modify the base reward.
// Zero values mean "not tracked".
type QuestOutcome struct {
	CompletionMinutes int
	OptionalCompleted int

	// TeamPerformance is an extra multiplier applied by the caller
	// (e.g. a post-quest review score). Zero means none.
	TeamPerformance float64

	// Streak overrides the default streak policy when non-zero.
	Streak StreakPolicy
}

func (o QuestOutcome) streakPolicy() StreakPolicy {
	if o.Streak == (StreakPolicy{}) {
		return DefaultStreakPolicy
	}
	return o.Streak
}

// QuestXPReward computes the XP one agent earns for a completed quest.
//
// The factors are applied in a fixed order so repeated calls with the same
// inputs produce the same integer:
//
//	base x difficulty x class bonus x time bonus
//	+ optional-objective bonus share
//	x team synergy x streak
//
// floored at the end.
func QuestXPReward(q *Quest, a *Agent, outcome QuestOutcome) (int, error) {
	mult, err := difficultyMultiplier(q.Difficulty)
	if err != nil {
		return 0, err
	}
	if q.Reward.XP < 0 {
		return 0, InvalidXPError{Amount: q.Reward.XP}
	}

	xp := float64(q.Reward.XP) * mult
	xp *= ClassBonus(a.Class, q.Category)
	xp *= TimeBonus(q.TimeLimitMinutes, outcome.CompletionMinutes)

	if q.BonusReward != nil && outcome.OptionalCompleted > 0 {
		if total := q.OptionalObjectiveCount(); total > 0 {
			done := outcome.OptionalCompleted
			if done > total {
				done = total
			}
			xp += float64(q.BonusReward.XP) * float64(done) / float64(total)
		}
	}

	xp *= TeamSynergy(len(q.AssignedAgents))
	xp *= outcome.streakPolicy().Multiplier(a)

	return int(math.Floor(xp)), nil
}

// XPDecay returns the idle-penalty fraction for an agent whose last
// activity was at the given time. Staircase by days idle.
//
// Present for parity with the reward model; nothing applies it to the XP
// path yet, pending a product decision on idle penalties.
func XPDecay(lastActivity, now time.Time) float64 {
	days := now.Sub(lastActivity).Hours() / 24
	switch {
	case days <= 7:
		return 0
	case days <= 14:
		return 0.05
	case days <= 30:
		return 0.10
	case days <= 60:
		return 0.20
	default:
		return 0.30
	}
}
