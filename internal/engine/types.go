package engine

import (
	"strings"
	"time"
)

// Class is an agent's specialization. It drives the class skill tree and
// the category bonus applied to quest rewards.
type Class string

const (
	ClassCoder      Class = "coder"
	ClassResearcher Class = "researcher"
	ClassDesigner   Class = "designer"
	ClassStrategist Class = "strategist"
	ClassSupport    Class = "support"
)

func (c Class) IsValid() bool {
	switch c {
	case ClassCoder, ClassResearcher, ClassDesigner, ClassStrategist, ClassSupport:
		return true
	default:
		return false
	}
}

// DefaultClass is used when user input is missing/invalid.
const DefaultClass Class = ClassSupport

// ParseClass parses user input to a Class.
// If input is empty or unrecognized, returns DefaultClass.
func ParseClass(input string) Class {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "coder", "dev", "developer":
		return ClassCoder
	case "researcher", "research", "analyst":
		return ClassResearcher
	case "designer", "design", "creative":
		return ClassDesigner
	case "strategist", "strategy", "lead":
		return ClassStrategist
	case "support", "ops":
		return ClassSupport
	default:
		return DefaultClass
	}
}

type Difficulty int

const (
	DifficultyTutorial  Difficulty = 1
	DifficultyEasy      Difficulty = 2
	DifficultyMedium    Difficulty = 3
	DifficultyHard      Difficulty = 4
	DifficultyExpert    Difficulty = 5
	DifficultyLegendary Difficulty = 6
)

func (d Difficulty) IsValid() bool {
	return d >= DifficultyTutorial && d <= DifficultyLegendary
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyTutorial:
		return "tutorial"
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	case DifficultyExpert:
		return "expert"
	case DifficultyLegendary:
		return "legendary"
	default:
		return "unknown"
	}
}

func ParseDifficulty(input string) Difficulty {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "tutorial":
		return DifficultyTutorial
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	case "expert":
		return DifficultyExpert
	case "legendary":
		return DifficultyLegendary
	default:
		return DifficultyTutorial
	}
}

// QuestCategory groups quests for class bonus purposes.
type QuestCategory string

const (
	CategoryDevelopment QuestCategory = "development"
	CategoryResearch    QuestCategory = "research"
	CategoryCreative    QuestCategory = "creative"
	CategoryOperations  QuestCategory = "operations"
	CategoryLeadership  QuestCategory = "leadership"
)

// Stats are the five progression attributes of an agent.
// They only ever grow: level-up bonuses and milestones add, nothing subtracts.
type Stats struct {
	Intelligence int
	Creativity   int
	Reliability  int
	Speed        int
	Leadership   int
}

// ActivityEntry is one line of an agent's recent history, newest first.
type ActivityEntry struct {
	Action    string
	Timestamp time.Time
	XPDelta   int
}

// MaxHistoryEntries caps the agent activity log; older entries are dropped.
const MaxHistoryEntries = 50

// Agent is a progression subject. Mutated only through ApplyXP, which
// returns a fresh snapshot and never touches its input.
type Agent struct {
	ID         int64
	Name       string
	Class      Class
	Level      int
	XP         int
	XPToNext   int
	Stats      Stats
	Skills     []string
	History    []ActivityEntry
	LastActive time.Time
}

// Clone returns a deep copy of the agent.
func (a *Agent) Clone() *Agent {
	out := *a
	out.Skills = append([]string(nil), a.Skills...)
	out.History = append([]ActivityEntry(nil), a.History...)
	return &out
}

// HasSkill reports whether the agent already knows the named skill.
func (a *Agent) HasSkill(name string) bool {
	for _, s := range a.Skills {
		if s == name {
			return true
		}
	}
	return false
}

// Reward is a quest payout.
type Reward struct {
	XP    int
	Gold  int
	Items []string
}

// Objective is a single quest step.
type Objective struct {
	Description string
	Completed   bool
	Progress    int
	MaxProgress int
	Optional    bool
}

// Quest is a task definition. The engine only reads reward and assignment
// fields; status transitions belong to the caller.
type Quest struct {
	ID               int64
	Title            string
	Description      string
	Difficulty       Difficulty
	Category         QuestCategory
	Reward           Reward
	BonusReward      *Reward
	AssignedAgents   []int64
	TimeLimitMinutes int
	Objectives       []Objective
	Status           string
}

// Assigned reports whether the agent id is on the quest roster.
func (q *Quest) Assigned(agentID int64) bool {
	for _, id := range q.AssignedAgents {
		if id == agentID {
			return true
		}
	}
	return false
}

// OptionalObjectiveCount returns how many objectives are marked optional.
func (q *Quest) OptionalObjectiveCount() int {
	n := 0
	for _, o := range q.Objectives {
		if o.Optional {
			n++
		}
	}
	return n
}
