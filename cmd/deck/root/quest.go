package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"agentrpg/internal/engine"
	"agentrpg/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "quests",
		Short: "List quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var quests []*engine.Quest
			if status == "" {
				quests, err = svc.Quests().ListAll(ctx)
			} else {
				quests, err = svc.Quests().ListByStatus(ctx, status)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconQuest, "Quests"))
			if len(quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
				return nil
			}
			for _, q := range quests {
				st := ui.Warn.Render(q.Status)
				if q.Status == "done" {
					st = ui.Good.Render("done")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-3d %-28s %s/%s  %s  +%d XP  %s\n",
					q.ID, q.Title, q.Difficulty, q.Category, st, q.Reward.XP,
					ui.Muted.Render(fmt.Sprintf("%d agents", len(q.AssignedAgents))))
				if q.BonusReward != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n",
						ui.Muted.Render(fmt.Sprintf("bonus: +%d XP per optional objective", q.BonusReward.XP)))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (open|done)")

	return cmd
}

func newCompleteCmd() *cobra.Command {
	var minutes int
	var optional int
	var performance float64

	cmd := &cobra.Command{
		Use:   "complete <quest_id>",
		Short: "Complete a quest and award XP to its team",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("quest_id is required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("quest_id must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, _ := strconv.ParseInt(args[0], 10, 64)

			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			outcome := engine.QuestOutcome{
				CompletionMinutes: minutes,
				OptionalCompleted: optional,
				TeamPerformance:   performance,
				Streak: engine.StreakPolicy{
					Short:  cfg.Streak.Short,
					Medium: cfg.Streak.Medium,
					Long:   cfg.Streak.Long,
				},
			}

			res, err := svc.CompleteQuest(ctx, id, outcome)
			if err != nil {
				return err
			}

			total := 0
			for _, xp := range res.Awards {
				total += xp
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s quest #%d — %s total across the team\n",
				ui.Good.Render(ui.IconDone+" Completed"), id, ui.Key.Render(fmt.Sprintf("+%d XP", total)))

			for _, a := range res.Agents {
				xp, ok := res.Awards[a.ID]
				if !ok {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s: +%d XP, now L%d %s\n",
					ui.ClassIcon(string(a.Class)), a.Name, xp, a.Level, ui.XPBar(a.XP, a.XPToNext, 14))
			}
			for _, ev := range res.LevelUps {
				line := fmt.Sprintf("%s %s: %d → %d", ui.BadgeLevelUp, ev.AgentName, ev.OldLevel, ev.NewLevel)
				if len(ev.UnlockedSkills) > 0 {
					line += "  " + ui.Gold.Render(ui.IconSkill+" "+strings.Join(ev.UnlockedSkills, ", "))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&minutes, "minutes", 0, "how long the quest took (time bonus)")
	cmd.Flags().IntVar(&optional, "optional", 0, "optional objectives completed (bonus reward share)")
	cmd.Flags().Float64Var(&performance, "performance", 1.0, "team performance multiplier")

	return cmd
}
