package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"agentrpg/internal/ui"
)

func newAwardCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "award <agent> <xp>",
		Short: "Grant XP to an agent",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("agent name and xp amount are required")
			}
			if _, err := strconv.Atoi(args[1]); err != nil {
				return errors.New("xp must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			amount, _ := strconv.Atoi(args[1])

			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.AwardXP(ctx, args[0], amount, source)
			if err != nil {
				return err
			}
			a := res.Agent

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s gained %s\n",
				ui.Good.Render(ui.IconBolt+" Awarded"), a.Name, ui.Key.Render(fmt.Sprintf("%d XP", amount)))
			fmt.Fprintf(cmd.OutOrStdout(), "Level %d  %s\n", a.Level, ui.XPBar(a.XP, a.XPToNext, 20))

			if ev := res.LevelUp; ev != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d → %d\n",
					ui.BadgeLevelUp, a.Name, ev.OldLevel, ev.NewLevel)
				for _, inc := range ev.StatIncreases {
					fmt.Fprintf(cmd.OutOrStdout(), "- %s +%d %s\n",
						ui.Key.Render(inc.Stat), inc.Amount, ui.Muted.Render("("+inc.Reason+")"))
				}
				if len(ev.UnlockedSkills) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
						ui.Gold.Render(ui.IconSkill+" Unlocked:"), strings.Join(ev.UnlockedSkills, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "where the XP came from (shown in history)")

	return cmd
}
