package engine

// StatIncrease records one milestone-driven stat bump. Always attached to
// a level-up, never standalone.
type StatIncrease struct {
	Stat   string
	Amount int
	Reason string
}

// Stat names used by StatIncrease records.
const (
	StatIntelligence = "intelligence"
	StatCreativity   = "creativity"
	StatReliability  = "reliability"
	StatSpeed        = "speed"
	StatLeadership   = "leadership"
)

type statMilestone struct {
	Level     int
	Increases []StatIncrease
}

// statMilestones are fixed level thresholds. Each fires at most once:
// only when the new level reaches the threshold and the old level was
// still below it.
var statMilestones = []statMilestone{
	{Level: 5, Increases: []StatIncrease{
		{Stat: StatIntelligence, Amount: 2, Reason: "Novice Milestone"},
	}},
	{Level: 10, Increases: []StatIncrease{
		{Stat: StatCreativity, Amount: 3, Reason: "Adept Milestone"},
		{Stat: StatLeadership, Amount: 2, Reason: "Adept Milestone"},
	}},
	{Level: 15, Increases: []StatIncrease{
		{Stat: StatReliability, Amount: 3, Reason: "Veteran Milestone"},
	}},
	{Level: 20, Increases: []StatIncrease{
		{Stat: StatSpeed, Amount: 4, Reason: "Master Milestone"},
		{Stat: StatIntelligence, Amount: 3, Reason: "Master Milestone"},
	}},
}

// MilestoneIncreases returns the stat bumps earned by crossing from
// oldLevel to newLevel, covering every threshold passed on the way.
func MilestoneIncreases(oldLevel, newLevel int) []StatIncrease {
	var out []StatIncrease
	for _, m := range statMilestones {
		if newLevel >= m.Level && oldLevel < m.Level {
			out = append(out, m.Increases...)
		}
	}
	return out
}

// AddStat applies one increase to a stats block.
func AddStat(s *Stats, inc StatIncrease) {
	switch inc.Stat {
	case StatIntelligence:
		s.Intelligence += inc.Amount
	case StatCreativity:
		s.Creativity += inc.Amount
	case StatReliability:
		s.Reliability += inc.Amount
	case StatSpeed:
		s.Speed += inc.Amount
	case StatLeadership:
		s.Leadership += inc.Amount
	}
}
