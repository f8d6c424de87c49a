package progression

import (
	"fmt"
	"time"

	"agentrpg/internal/engine"
)

// NotificationCategory drives the icon and styling a renderer picks.
type NotificationCategory string

const (
	NoticeLevelUp     NotificationCategory = "level_up"
	NoticeSkillUnlock NotificationCategory = "skill_unlock"
	NoticeAchievement NotificationCategory = "achievement"
	NoticeStatBoost   NotificationCategory = "stat_boost"
)

// Priority drives visual urgency and persistence downstream.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NotificationAction is a user affordance a renderer may attach to a
// notification (e.g. "View agent").
type NotificationAction struct {
	Label   string
	Command string
}

// Notification is a short-lived user-facing message. Once dismissed it is
// never re-shown; the sweep removes dismissed entries from the active list.
type Notification struct {
	ID        string
	Category  NotificationCategory
	Title     string
	Message   string
	Icon      string
	Priority  Priority
	Duration  time.Duration // 0 = sticky until dismissed
	Actions   []NotificationAction
	Timestamp time.Time
	Dismissed bool
}

// Expired reports whether an auto-dismiss duration has elapsed.
func (n *Notification) Expired(now time.Time) bool {
	return n.Duration > 0 && now.Sub(n.Timestamp) >= n.Duration
}

// notificationID derives a globally unique id from time and category; the
// sequence breaks ties within one millisecond.
func notificationID(cat NotificationCategory, ts time.Time, seq uint64) string {
	return fmt.Sprintf("%s-%d-%d", cat, ts.UnixMilli(), seq)
}

// LevelUpNotificationDuration is the default auto-dismiss window the
// presentation layer is expected to honor.
const LevelUpNotificationDuration = 8 * time.Second

// SkillNotificationDuration is the auto-dismiss window for skill unlocks.
const SkillNotificationDuration = 5 * time.Second

func levelUpNotification(ev *LevelUpEvent) Notification {
	return Notification{
		Category: NoticeLevelUp,
		Title:    "LEVEL UP!",
		Message:  fmt.Sprintf("%s reached level %d", ev.AgentName, ev.NewLevel),
		Icon:     "⬆️",
		Priority: PriorityHigh,
		Duration: LevelUpNotificationDuration,
		Actions: []NotificationAction{
			{Label: "View agent", Command: fmt.Sprintf("status %d", ev.AgentID)},
		},
	}
}

func skillUnlockNotification(a *engine.Agent, skill string) Notification {
	return Notification{
		Category: NoticeSkillUnlock,
		Title:    "New skill unlocked",
		Message:  fmt.Sprintf("%s learned %s", a.Name, skill),
		Icon:     "🔓",
		Priority: PriorityMedium,
		Duration: SkillNotificationDuration,
	}
}

func questCompleteNotification(q *engine.Quest, totalXP int) Notification {
	return Notification{
		Category: NoticeAchievement,
		Title:    "Quest complete",
		Message:  fmt.Sprintf("%s (+%d XP to the team)", q.Title, totalXP),
		Icon:     "🏆",
		Priority: PriorityMedium,
		Duration: LevelUpNotificationDuration,
	}
}
