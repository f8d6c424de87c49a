package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"agentrpg/internal/engine"
	"agentrpg/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <agent>",
		Short: "Show one agent's stats, skills, and recent activity",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("agent name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := svc.Agent(ctx, args[0])
			if err != nil {
				return err
			}

			prog := engine.AgentProgress(a)

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.ClassIcon(string(a.Class)), a.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Class", a.Class))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", a.Level))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP", fmt.Sprintf("%d / %d (%.0f%%)", a.XP, a.XPToNext, prog.Percent)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Total XP", prog.TotalXP))
			fmt.Fprintln(cmd.OutOrStdout(), "")

			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("📊 Stats"))
			fmt.Fprintf(cmd.OutOrStdout(), "- 🧠 INT: %d\n", a.Stats.Intelligence)
			fmt.Fprintf(cmd.OutOrStdout(), "- 🎨 CRE: %d\n", a.Stats.Creativity)
			fmt.Fprintf(cmd.OutOrStdout(), "- 🛡️ REL: %d\n", a.Stats.Reliability)
			fmt.Fprintf(cmd.OutOrStdout(), "- ⚡ SPD: %d\n", a.Stats.Speed)
			fmt.Fprintf(cmd.OutOrStdout(), "- 👑 LEA: %d\n", a.Stats.Leadership)
			fmt.Fprintln(cmd.OutOrStdout(), "")

			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(ui.IconSkill+" Skills"))
			if len(a.Skills) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none yet)"))
			}
			for _, s := range a.Skills {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", s)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "")

			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("🕘 Recent activity"))
			if len(a.History) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(quiet so far)"))
			}
			shown := a.History
			if len(shown) > 10 {
				shown = shown[:10]
			}
			for _, e := range shown {
				delta := fmt.Sprintf("+%d", e.XPDelta)
				if e.XPDelta < 0 {
					delta = fmt.Sprintf("%d", e.XPDelta)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s\n",
					ui.Muted.Render(e.Timestamp.Local().Format("Jan 02 15:04")),
					ui.Good.Render(delta+" XP"),
					strings.TrimSpace(e.Action))
			}
			return nil
		},
	}

	return cmd
}
